package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/khushveer007/courseget/internal/sanitize"
)

// NodeKind distinguishes the two levels of the catalog tree.
type NodeKind int

const (
	Course NodeKind = iota
	Lesson
)

func (k NodeKind) String() string {
	if k == Course {
		return "Course"
	}

	return "Lesson"
}

// CatalogNode is a course or a lesson discovered in one run. Nodes are
// immutable once built; only progress entries persist across runs.
type CatalogNode struct {
	ID       string
	Title    string
	ParentID string
	Kind     NodeKind
}

// NewCourseNode builds a root-level course node.
func NewCourseNode(title string) CatalogNode {
	return CatalogNode{
		ID:    pathID(title),
		Title: title,
		Kind:  Course,
	}
}

// NewLessonNode builds a lesson node under the given course.
func NewLessonNode(course CatalogNode, title string) CatalogNode {
	return CatalogNode{
		ID:       pathID(course.Title, title),
		Title:    title,
		ParentID: course.ID,
		Kind:     Lesson,
	}
}

// pathID derives a stable identifier from sanitized title path segments.
// Identity is keyed on the logical title path rather than remote URLs, so
// entries survive the remote service reshuffling its links.
func pathID(parts ...string) string {
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		segments = append(segments, sanitize.Segment(p))
	}

	return shortDigest(strings.Join(segments, "/"))
}

func shortDigest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
