// Package engine wires discovery output into the progress store, feeds the
// bounded worker pool and drives the run lifecycle: start, drain, archive,
// summarize.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/khushveer007/courseget/internal/archive"
	"github.com/khushveer007/courseget/internal/catalog"
	"github.com/khushveer007/courseget/internal/discovery"
	"github.com/khushveer007/courseget/internal/fetch"
	"github.com/khushveer007/courseget/internal/logger"
	"github.com/khushveer007/courseget/internal/repository"
	"github.com/khushveer007/courseget/internal/status"
)

var (
	// ErrNoManifest is returned when discovery fails so badly that no
	// manifest could be built. This is the only discovery failure that
	// aborts a run.
	ErrNoManifest = errors.New("no manifest could be built")

	// ErrRootUnwritable is returned when the destination root cannot be
	// created or written.
	ErrRootUnwritable = errors.New("download root not writable")
)

type queuedAsset struct {
	asset catalog.Asset
	entry repository.Entry
}

type archiveItem struct {
	asset catalog.Asset
	entry repository.Entry
}

// Engine runs one end-to-end invocation. Each asset is processed end to end
// by exactly one worker; the progress store is the single shared mutation
// point and serializes its own writes.
type Engine struct {
	cfg      *Config
	session  discovery.Session
	store    repository.ProgressStore
	fetcher  *fetch.Fetcher
	archiver *archive.Coordinator // nil when archival is disabled

	manifest *catalog.Manifest

	mu       sync.Mutex
	summary  Summary
	archiveQ []archiveItem
}

// New creates an engine. archiver may be nil to disable the archival stage.
func New(cfg *Config, session discovery.Session, store repository.ProgressStore, fetcher *fetch.Fetcher, archiver *archive.Coordinator) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	cfg.normalize()

	return &Engine{
		cfg:      cfg,
		session:  session,
		store:    store,
		fetcher:  fetcher,
		archiver: archiver,
		manifest: catalog.NewManifest(),
	}
}

// Manifest returns the catalog discovered by the last Run.
func (e *Engine) Manifest() *catalog.Manifest {
	return e.manifest
}

// Run executes the full pipeline. On user interrupt it stops dequeuing,
// lets in-flight transfers complete or fail naturally, flushes final
// progress records and returns the partial summary.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	if err := os.MkdirAll(e.cfg.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootUnwritable, err)
	}

	if e.cfg.Reset {
		if err := e.store.Reset(); err != nil {
			return nil, fmt.Errorf("failed to reset progress: %w", err)
		}

		logger.Info("Progress reset.")
	}

	entries, err := e.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	if err := e.session.Init(ctx); err != nil {
		return nil, fmt.Errorf("session initialization failed: %w", err)
	}

	queue := make(chan queuedAsset, 64)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(queue)
		return e.discover(gctx, entries, queue)
	})

	for i := 0; i < e.cfg.Workers; i++ {
		g.Go(func() error {
			for item := range queue {
				if gctx.Err() != nil {
					// Interrupted: drain without processing. Undispatched
					// assets stay Pending for the next run.
					continue
				}

				e.processAsset(gctx, item)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	if e.archiver != nil && ctx.Err() == nil {
		e.runArchival(ctx)
	}

	if ctx.Err() != nil {
		logger.Warn("Interrupted. Progress saved; re-run to resume.")
	}

	e.mu.Lock()
	summary := e.summary
	e.mu.Unlock()

	return &summary, nil
}

// discover walks the catalog course by course and enqueues each lesson's
// assets only after the lesson is fully enumerated. Individual course or
// lesson failures are logged and skipped; only producing no assets at all is
// fatal.
func (e *Engine) discover(ctx context.Context, entries map[string]repository.Entry, queue chan<- queuedAsset) error {
	courses, err := withRetry(ctx, e.cfg.MaxRetries, e.cfg.RetryDelay, "course discovery", e.session.ListCourses)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}

		return fmt.Errorf("%w: %w", ErrNoManifest, err)
	}

	if len(courses) == 0 {
		return fmt.Errorf("%w: no courses found", ErrNoManifest)
	}

	logger.Success("Found %d course(s).", len(courses))

	seen := make(map[string]struct{})
	total := 0

	for ci, course := range courses {
		if ctx.Err() != nil {
			return nil
		}

		courseNode := catalog.NewCourseNode(course.Title)
		e.manifest.AddNode(courseNode)

		logger.Header(fmt.Sprintf("[%d/%d] %s", ci+1, len(courses), course.Title))

		lessons, err := withRetry(ctx, e.cfg.MaxRetries, e.cfg.RetryDelay, "lesson discovery", func(ctx context.Context) ([]discovery.Lesson, error) {
			return e.session.ListLessons(ctx, course.ID)
		})
		if err != nil {
			logger.Error("Failed to list lessons for %s: %v", course.Title, err)
			continue
		}

		if len(lessons) == 0 {
			logger.Warn("No lessons found for %s.", course.Title)
			continue
		}

		for li, lesson := range lessons {
			if ctx.Err() != nil {
				return nil
			}

			lessonNode := catalog.NewLessonNode(courseNode, lesson.Title)
			e.manifest.AddNode(lessonNode)

			logger.Info("[%d/%d] %s", li+1, len(lessons), lesson.Title)

			sources, err := withRetry(ctx, e.cfg.MaxRetries, e.cfg.RetryDelay, "asset discovery", func(ctx context.Context) ([]catalog.AssetSource, error) {
				return e.session.ListAssets(ctx, lesson.ID)
			})
			if err != nil {
				logger.Error("Failed to list assets for %s: %v", lesson.Title, err)
				continue
			}

			assets, err := catalog.BuildLessonAssets(e.cfg.DownloadDir, courseNode, lessonNode, sources, e.cfg.VariantOrder)
			if err != nil {
				logger.Error("%v", err)
				continue
			}

			e.manifest.AddAssets(assets)

			for _, asset := range assets {
				seen[asset.ID] = struct{}{}
				total++
				e.enqueue(ctx, entries, asset, queue)
			}
		}
	}

	if ctx.Err() != nil {
		return nil
	}

	if total == 0 {
		return fmt.Errorf("%w: discovery produced no assets", ErrNoManifest)
	}

	orphans := 0

	for id := range entries {
		if _, ok := seen[id]; !ok {
			orphans++
		}
	}

	if orphans > 0 {
		// Likely an identity scheme change or a retitled course. The
		// entries are retained rather than pruned so history is not lost.
		logger.Warn("%d stored progress entries matched no discovered asset; retained.", orphans)
	}

	return nil
}

// enqueue merges one discovered asset with stored progress and hands it to
// the worker pool. Uploaded assets are fully done and never re-enter the
// queue; everything else gets a worker pass, which at minimum double-checks
// the destination file.
func (e *Engine) enqueue(ctx context.Context, entries map[string]repository.Entry, asset catalog.Asset, queue chan<- queuedAsset) {
	entry, known := entries[asset.ID]

	if known && entry.State == status.Uploaded {
		e.mu.Lock()
		e.summary.Skipped++
		e.mu.Unlock()

		return
	}

	if !known {
		e.record(asset.ID, status.Pending, 0, nil)

		entry = repository.Entry{AssetID: asset.ID, State: status.Pending}
	}

	select {
	case queue <- queuedAsset{asset: asset, entry: entry}:
	case <-ctx.Done():
	}
}

// processAsset runs one asset end to end: defensive skip check, transfer
// with retry and backoff, terminal state transition. A single asset's
// failure never aborts the run.
func (e *Engine) processAsset(ctx context.Context, item queuedAsset) {
	asset := item.asset
	entry := item.entry
	name := filepath.Base(asset.DestinationPath)

	if fileLooksComplete(asset.DestinationPath, asset.SizeHint) {
		if entry.State != status.Downloaded {
			e.record(asset.ID, status.Downloaded, entry.Attempts, nil)
		}

		e.markSkipped(asset, entry.Attempts)

		return
	}

	if entry.State == status.Downloaded {
		logger.Warn("Destination missing for %s, downloading again.", name)
	}

	if asset.Content != "" {
		e.record(asset.ID, status.Downloading, 1, nil)

		if _, err := e.fetcher.WriteLocal(asset.DestinationPath, []byte(asset.Content)); err != nil {
			e.record(asset.ID, status.Failed, 1, err)
			e.markFailed(asset, err)

			return
		}

		e.record(asset.ID, status.Downloaded, 1, nil)
		e.markSucceeded(asset, 1)

		return
	}

	e.record(asset.ID, status.Downloading, entry.Attempts, nil)

	var lastErr error

	attempts := 0

	for attempts < e.cfg.MaxRetries {
		attempts++

		_, err := e.fetcher.Fetch(ctx, asset.SourceURL, asset.DestinationPath, asset.Referer)
		if err == nil {
			e.record(asset.ID, status.Downloaded, attempts, nil)
			logger.Success("Downloaded %s", name)
			e.markSucceeded(asset, attempts)

			return
		}

		lastErr = err

		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			// Clean shutdown: flush a Pending record so nothing is ever
			// left Downloading after exit.
			e.record(asset.ID, status.Pending, attempts, nil)
			return
		}

		if !fetch.IsRetryable(err) {
			break
		}

		if attempts < e.cfg.MaxRetries {
			backoff := calculateBackoff(attempts-1, e.cfg.RetryDelay)
			logger.Warn("Attempt %d/%d failed for %s: %v (retrying in %s)", attempts, e.cfg.MaxRetries, name, err, backoff.Round(time.Millisecond))

			select {
			case <-ctx.Done():
				e.record(asset.ID, status.Pending, attempts, nil)
				return
			case <-time.After(backoff):
			}
		}
	}

	e.record(asset.ID, status.Failed, attempts, lastErr)
	logger.Error("Giving up on %s after %d attempt(s): %v", name, attempts, lastErr)
	e.markFailed(asset, lastErr)
}

// runArchival is the optional post-download stage: upload, verify,
// conditionally delete. Runs after the pool has drained so every candidate
// is in a settled state.
func (e *Engine) runArchival(ctx context.Context) {
	e.mu.Lock()
	items := make([]archiveItem, len(e.archiveQ))
	copy(items, e.archiveQ)
	e.mu.Unlock()

	if len(items) == 0 {
		return
	}

	logger.Info("Archiving %d asset(s)...", len(items))

	for _, item := range items {
		if ctx.Err() != nil {
			return
		}

		err := e.archiver.Process(ctx, item.asset, item.entry)

		e.mu.Lock()
		if err != nil {
			e.summary.UploadFailed++
		} else {
			e.summary.Uploaded++
		}
		e.mu.Unlock()
	}
}

func (e *Engine) markSucceeded(asset catalog.Asset, attempts int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.summary.Succeeded++
	e.archiveQ = append(e.archiveQ, archiveItem{
		asset: asset,
		entry: repository.Entry{AssetID: asset.ID, State: status.Downloaded, Attempts: attempts},
	})
}

func (e *Engine) markSkipped(asset catalog.Asset, attempts int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.summary.Skipped++
	e.archiveQ = append(e.archiveQ, archiveItem{
		asset: asset,
		entry: repository.Entry{AssetID: asset.ID, State: status.Downloaded, Attempts: attempts},
	})
}

func (e *Engine) markFailed(asset catalog.Asset, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.summary.Failed++
	e.summary.Failures = append(e.summary.Failures, Failure{
		Path:  asset.DestinationPath,
		Error: err.Error(),
	})
}

// record persists a state transition. Store failures are logged rather than
// propagated: a transient persistence hiccup should not abort the transfer
// it describes.
func (e *Engine) record(assetID string, st status.State, attempts int, lastErr error) {
	if err := e.store.Record(assetID, st, attempts, lastErr); err != nil {
		logger.Error("Failed to persist progress for %s: %v", assetID, err)
	}
}

// fileLooksComplete reports whether the destination already holds a
// plausible copy of the asset. Partial files never land at the final path,
// so any non-empty file of reasonable size is trusted.
func fileLooksComplete(path string, sizeHint int64) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() <= 0 {
		return false
	}

	if sizeHint > 0 && info.Size() < sizeHint/2 {
		return false
	}

	return true
}
