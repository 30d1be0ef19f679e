package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/khushveer007/courseget/internal/logger"
)

// Bodies smaller than this for a document or video are almost always an
// auth-redirect page served in place of the real file.
const suspiciousSizeBytes = 1024

// Fetcher streams remote assets to disk. Every transfer goes through a
// uniquely named temporary file in the destination directory and is renamed
// into place only after the full body arrived, so no partial file is ever
// visible at the final path.
type Fetcher struct {
	client  *Client
	timeout time.Duration
}

// NewFetcher creates a fetcher. timeout bounds each whole transfer; zero
// means no per-operation timeout.
func NewFetcher(client *Client, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:  client,
		timeout: timeout,
	}
}

// Fetch downloads url into dest atomically and returns the byte count.
// Errors are classified: retryable transport problems satisfy IsRetryable,
// local filesystem failures wrap ErrStorage.
func (f *Fetcher) Fetch(ctx context.Context, url, dest, referer string) (int64, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	resp, err := f.client.Get(ctx, url, referer)
	if err != nil {
		return 0, err
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warnf("Failed to close response body for %s: %v", url, err)
		}
	}()

	if resp.ContentLength > 0 && resp.ContentLength < suspiciousSizeBytes {
		logger.Warn("Suspiciously small content (%d bytes) for %s", resp.ContentLength, filepath.Base(dest))
	}

	return f.writeTemp(dest, resp.Body, resp.ContentLength)
}

// WriteLocal materializes an asset whose content is already in memory, such
// as a lesson topic summary, with the same atomic rename discipline.
func (f *Fetcher) WriteLocal(dest string, content []byte) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	tmp := tempPath(dest)

	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return int64(len(content)), nil
}

// writeTemp streams body into a staging file and renames it into place only
// after the transfer is complete and, when the length is known, verified.
func (f *Fetcher) writeTemp(dest string, body io.Reader, expected int64) (written int64, err error) {
	tmp := tempPath(dest)

	file, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	defer func() {
		if err != nil {
			file.Close()
			os.Remove(tmp)
		}
	}()

	written, err = io.Copy(file, body)
	if err != nil {
		return 0, ClassifyError(err)
	}

	if expected > 0 && written != expected {
		err = fmt.Errorf("%w: got %d of %d bytes", ErrTruncatedBody, written, expected)
		return 0, err
	}

	if err = file.Sync(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err = file.Close(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err = os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return written, nil
}

// tempPath builds a per-attempt staging path next to dest. The uuid keeps
// concurrent attempts for different assets in one directory from colliding.
func tempPath(dest string) string {
	return dest + ".part-" + uuid.NewString()[:8]
}
