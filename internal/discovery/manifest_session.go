package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/khushveer007/courseget/internal/catalog"
	"github.com/khushveer007/courseget/internal/logger"
)

// manifestFile is the on-disk export format a scraping front-end produces.
type manifestFile struct {
	Courses []manifestCourse `json:"courses"`
}

type manifestCourse struct {
	Title   string           `json:"title"`
	Lessons []manifestLesson `json:"lessons"`
}

type manifestLesson struct {
	Title    string          `json:"title"`
	Subtitle string          `json:"subtitle,omitempty"`
	URL      string          `json:"url,omitempty"`
	Assets   []manifestAsset `json:"assets"`
}

type manifestAsset struct {
	Kind     string            `json:"kind"`
	Name     string            `json:"name"`
	URL      string            `json:"url,omitempty"`
	Variants map[string]string `json:"variants,omitempty"`
	Size     int64             `json:"size,omitempty"`
}

// ManifestSession is a Session backed by a JSON manifest export. It lets the
// pipeline run and be tested without a browser; the scraping layer that
// produces the manifest lives outside this repository.
type ManifestSession struct {
	path string

	mu      sync.Mutex
	loaded  bool
	closed  bool
	courses []Course
	lessons map[string][]Lesson
	assets  map[string][]catalog.AssetSource
}

// NewManifestSession creates a session that will read the manifest at path
// on Init.
func NewManifestSession(path string) *ManifestSession {
	return &ManifestSession{
		path:    path,
		lessons: make(map[string][]Lesson),
		assets:  make(map[string][]catalog.AssetSource),
	}
}

// Init loads and indexes the manifest file. No interactive login is needed
// for a pre-exported manifest, so this never blocks.
func (s *ManifestSession) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read manifest %s: %w", s.path, err)
	}

	var file manifestFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse manifest %s: %w", s.path, err)
	}

	for ci, course := range file.Courses {
		courseID := fmt.Sprintf("course-%d", ci+1)
		s.courses = append(s.courses, Course{ID: courseID, Title: course.Title})

		for li, lesson := range course.Lessons {
			lessonID := fmt.Sprintf("%s/lesson-%d", courseID, li+1)
			s.lessons[courseID] = append(s.lessons[courseID], Lesson{
				ID:       lessonID,
				Title:    lesson.Title,
				Subtitle: lesson.Subtitle,
			})

			s.assets[lessonID] = lessonSources(lesson)
		}
	}

	s.loaded = true
	logger.Infof("Loaded manifest %s: %d course(s)", s.path, len(s.courses))

	return nil
}

// lessonSources converts one lesson's manifest records into asset sources,
// appending the subtitle as an inline topic summary when present.
func lessonSources(lesson manifestLesson) []catalog.AssetSource {
	var sources []catalog.AssetSource

	if lesson.Subtitle != "" {
		sources = append(sources, catalog.AssetSource{
			Kind:    catalog.TopicSummary,
			Name:    "Topics",
			Content: lesson.Subtitle,
		})
	}

	for _, a := range lesson.Assets {
		kind, err := catalog.ParseAssetKind(a.Kind)
		if err != nil {
			logger.Warn("Skipping asset %q in lesson %q: %v", a.Name, lesson.Title, err)
			continue
		}

		sources = append(sources, catalog.AssetSource{
			Kind:     kind,
			Name:     a.Name,
			URL:      a.URL,
			Variants: a.Variants,
			Referer:  lesson.URL,
			SizeHint: a.Size,
		})
	}

	return sources
}

func (s *ManifestSession) ListCourses(_ context.Context) ([]Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}

	return s.courses, nil
}

func (s *ManifestSession) ListLessons(_ context.Context, courseID string) ([]Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}

	return s.lessons[courseID], nil
}

func (s *ManifestSession) ListAssets(_ context.Context, lessonID string) ([]catalog.AssetSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}

	return s.assets[lessonID], nil
}

func (s *ManifestSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	return nil
}
