// Package discovery defines the narrow interface the orchestration core
// expects from whatever supplies the catalog. The core never sees markup,
// selectors or browser automation; a session yields titles and asset
// descriptors and nothing more.
package discovery

import (
	"context"
	"errors"

	"github.com/khushveer007/courseget/internal/catalog"
)

var (
	// ErrSessionClosed is returned by calls made after Close.
	ErrSessionClosed = errors.New("discovery session closed")

	// ErrLoginRequired is returned by Init when the session needs an
	// interactive login but was started headless.
	ErrLoginRequired = errors.New("manual login required, cannot run headless")
)

// Course is a raw course descriptor as reported by the session.
type Course struct {
	ID    string
	Title string
}

// Lesson is a raw lesson descriptor. Subtitle carries the lesson's topic
// list when the remote service exposes one.
type Lesson struct {
	ID       string
	Title    string
	Subtitle string
}

// Session supplies the catalog for one run. Init is the one-time session
// establishment, which may block for a manual login; all listing calls may
// fail transiently and are retried by the orchestrator under the same
// backoff policy as downloads.
type Session interface {
	Init(ctx context.Context) error
	ListCourses(ctx context.Context) ([]Course, error)
	ListLessons(ctx context.Context, courseID string) ([]Lesson, error)
	ListAssets(ctx context.Context, lessonID string) ([]catalog.AssetSource, error)
	Close() error
}
