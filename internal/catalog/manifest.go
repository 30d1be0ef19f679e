package catalog

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/khushveer007/courseget/internal/sanitize"
)

// ErrDiscoveryIncomplete is returned when a lesson reports neither assets
// nor children. An empty lesson almost always means the scraping layer
// regressed, so it is surfaced instead of silently skipped.
var ErrDiscoveryIncomplete = errors.New("discovery incomplete: lesson has no assets")

// Manifest is the discovered catalog tree for one run, flattened into an
// ordered asset sequence. It is rebuilt from scratch on every invocation.
type Manifest struct {
	Nodes  []CatalogNode
	Assets []Asset

	nodesByID map[string]CatalogNode
}

func NewManifest() *Manifest {
	return &Manifest{nodesByID: make(map[string]CatalogNode)}
}

// AddNode records a course or lesson node.
func (m *Manifest) AddNode(node CatalogNode) {
	if _, ok := m.nodesByID[node.ID]; ok {
		return
	}

	m.Nodes = append(m.Nodes, node)
	m.nodesByID[node.ID] = node
}

// Node looks up a node by ID.
func (m *Manifest) Node(id string) (CatalogNode, bool) {
	n, ok := m.nodesByID[id]
	return n, ok
}

// AddAssets appends a lesson's flattened assets in order.
func (m *Manifest) AddAssets(assets []Asset) {
	m.Assets = append(m.Assets, assets...)
}

// BuildLessonAssets flattens one lesson's raw descriptors into assets with
// derived identity and destination paths. Within a lesson the order is
// deterministic: documents, support material and summaries first in reported
// order, then videos in playlist order. For videos only the best available
// quality variant from variantOrder is selected; lower variants being
// missing is not an error, but a video with no servable variant at all is
// dropped from the manifest.
func BuildLessonAssets(root string, course, lesson CatalogNode, sources []AssetSource, variantOrder []string) ([]Asset, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: %s / %s", ErrDiscoveryIncomplete, course.Title, lesson.Title)
	}

	if len(variantOrder) == 0 {
		variantOrder = DefaultVariantOrder
	}

	courseSeg := sanitize.Segment(course.Title)
	lessonSeg := sanitize.Segment(lesson.Title)

	var documents, videos []Asset

	usedNames := make(map[string]struct{})

	for _, src := range sources {
		asset, ok := buildAsset(root, courseSeg, lessonSeg, lesson.ID, src, variantOrder, usedNames)
		if !ok {
			continue
		}

		if src.Kind == Video {
			videos = append(videos, asset)
		} else {
			documents = append(documents, asset)
		}
	}

	return append(documents, videos...), nil
}

func buildAsset(root, courseSeg, lessonSeg, lessonID string, src AssetSource, variantOrder []string, usedNames map[string]struct{}) (Asset, bool) {
	url := src.URL
	variant := ""

	if src.Kind == Video && len(src.Variants) > 0 {
		url = ""
		for _, q := range variantOrder {
			if u, ok := src.Variants[q]; ok && u != "" {
				url = u
				variant = q

				break
			}
		}

		if url == "" {
			return Asset{}, false
		}
	}

	if url == "" && src.Content == "" {
		return Asset{}, false
	}

	filename := assetFilename(src, variant, usedNames)
	usedNames[filename] = struct{}{}

	return Asset{
		ID:              assetID(courseSeg, lessonSeg, src.Kind, src.Name, variant),
		LessonID:        lessonID,
		Kind:            src.Kind,
		SourceURL:       url,
		QualityVariant:  variant,
		DestinationPath: filepath.Join(root, courseSeg, lessonSeg, filename),
		RemotePath:      path.Join(courseSeg, lessonSeg, filename),
		SizeHint:        src.SizeHint,
		Referer:         src.Referer,
		Content:         src.Content,
	}, true
}

// assetFilename derives the final filename from the suggested name, keeping
// a sanitized extension and appending the quality variant for videos.
func assetFilename(src AssetSource, variant string, usedNames map[string]struct{}) string {
	ext := sanitizeExt(filepath.Ext(src.Name))
	stem := sanitize.Segment(strings.TrimSuffix(src.Name, filepath.Ext(src.Name)))

	if ext == "" {
		switch src.Kind {
		case Video:
			ext = ".mp4"
		case TopicSummary:
			ext = ".txt"
		default:
			ext = ".pdf"
		}
	}

	if variant != "" {
		stem = stem + "_" + variant
	}

	name := stem + ext
	if _, taken := usedNames[name]; taken {
		name = stem + "_" + shortDigest(src.Name+variant) + ext
	}

	return name
}

func sanitizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))

	var b strings.Builder

	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return ""
	}

	return "." + b.String()
}

// assetID derives the stable asset identity from the sanitized title path,
// the kind and the chosen variant. Remote IDs never participate, so the
// scheme survives the remote service renumbering its resources.
func assetID(courseSeg, lessonSeg string, kind AssetKind, name, variant string) string {
	key := strings.Join([]string{courseSeg, lessonSeg, kind.String(), name, variant}, "/")
	return shortDigest(key)
}
