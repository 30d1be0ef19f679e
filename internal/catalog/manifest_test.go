package catalog_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khushveer007/courseget/internal/catalog"
)

func testLesson() (catalog.CatalogNode, catalog.CatalogNode) {
	course := catalog.NewCourseNode("Go Fundamentals")
	lesson := catalog.NewLessonNode(course, "Aula 1: Introdução / Revisão?")

	return course, lesson
}

func TestBuildLessonAssets_Ordering(t *testing.T) {
	course, lesson := testLesson()

	sources := []catalog.AssetSource{
		{Kind: catalog.Video, Name: "lecture", Variants: map[string]string{"720p": "http://v/720"}},
		{Kind: catalog.Document, Name: "slides.pdf", URL: "http://d/slides"},
		{Kind: catalog.TopicSummary, Name: "Topics", Content: "covered material"},
		{Kind: catalog.SupportMaterial, Name: "exercises.zip", URL: "http://d/ex"},
	}

	assets, err := catalog.BuildLessonAssets(t.TempDir(), course, lesson, sources, nil)
	require.NoError(t, err)
	require.Len(t, assets, 4)

	// Everything else before videos; non-video order is the reported order.
	assert.Equal(t, catalog.Document, assets[0].Kind)
	assert.Equal(t, catalog.TopicSummary, assets[1].Kind)
	assert.Equal(t, catalog.SupportMaterial, assets[2].Kind)
	assert.Equal(t, catalog.Video, assets[3].Kind)
}

func TestBuildLessonAssets_VariantSelection(t *testing.T) {
	course, lesson := testLesson()

	tests := []struct {
		name        string
		variants    map[string]string
		wantVariant string
		wantURL     string
		wantDropped bool
	}{
		{
			name:        "best variant wins",
			variants:    map[string]string{"720p": "http://v/720", "480p": "http://v/480"},
			wantVariant: "720p",
			wantURL:     "http://v/720",
		},
		{
			name:        "falls back when best is missing",
			variants:    map[string]string{"480p": "http://v/480", "360p": "http://v/360"},
			wantVariant: "480p",
			wantURL:     "http://v/480",
		},
		{
			name:        "empty variant URL is not servable",
			variants:    map[string]string{"720p": "", "360p": "http://v/360"},
			wantVariant: "360p",
			wantURL:     "http://v/360",
		},
		{
			name:        "no servable variant drops the video",
			variants:    map[string]string{"1080p": "http://v/1080"},
			wantDropped: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources := []catalog.AssetSource{
				{Kind: catalog.Video, Name: "lecture", Variants: tt.variants},
			}

			assets, err := catalog.BuildLessonAssets(t.TempDir(), course, lesson, sources, nil)
			require.NoError(t, err)

			if tt.wantDropped {
				assert.Empty(t, assets)
				return
			}

			require.Len(t, assets, 1)
			assert.Equal(t, tt.wantVariant, assets[0].QualityVariant)
			assert.Equal(t, tt.wantURL, assets[0].SourceURL)
			assert.True(t, strings.HasSuffix(assets[0].DestinationPath, "_"+tt.wantVariant+".mp4"),
				"destination %q should carry the variant suffix", assets[0].DestinationPath)
		})
	}
}

func TestBuildLessonAssets_DeterministicIdentity(t *testing.T) {
	course, lesson := testLesson()

	sources := []catalog.AssetSource{
		{Kind: catalog.Document, Name: "slides.pdf", URL: "http://d/slides"},
		{Kind: catalog.Video, Name: "lecture", Variants: map[string]string{"480p": "http://v/480"}},
	}

	first, err := catalog.BuildLessonAssets("/root-a", course, lesson, sources, nil)
	require.NoError(t, err)

	second, err := catalog.BuildLessonAssets("/root-a", course, lesson, sources, nil)
	require.NoError(t, err)

	require.Len(t, second, len(first))

	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].DestinationPath, second[i].DestinationPath)
		assert.Equal(t, first[i].RemotePath, second[i].RemotePath)
	}

	// The identity survives the local root moving.
	moved, err := catalog.BuildLessonAssets("/root-b", course, lesson, sources, nil)
	require.NoError(t, err)

	for i := range first {
		assert.Equal(t, first[i].ID, moved[i].ID)
		assert.NotEqual(t, first[i].DestinationPath, moved[i].DestinationPath)
	}
}

func TestBuildLessonAssets_SanitizedPaths(t *testing.T) {
	course, lesson := testLesson()

	sources := []catalog.AssetSource{
		{Kind: catalog.Document, Name: "Módulo 1: Notas?.pdf", URL: "http://d/notes"},
	}

	root := t.TempDir()

	assets, err := catalog.BuildLessonAssets(root, course, lesson, sources, nil)
	require.NoError(t, err)
	require.Len(t, assets, 1)

	rel, err := filepath.Rel(root, assets[0].DestinationPath)
	require.NoError(t, err)

	for _, seg := range strings.Split(rel, string(filepath.Separator)) {
		assert.NotContainsf(t, seg, ":", "segment %q", seg)
		assert.NotContainsf(t, seg, "?", "segment %q", seg)
	}

	assert.Equal(t, filepath.ToSlash(rel), assets[0].RemotePath)
}

func TestBuildLessonAssets_EmptyLesson(t *testing.T) {
	course, lesson := testLesson()

	_, err := catalog.BuildLessonAssets(t.TempDir(), course, lesson, nil, nil)
	assert.ErrorIs(t, err, catalog.ErrDiscoveryIncomplete)
}

func TestBuildLessonAssets_DuplicateNames(t *testing.T) {
	course, lesson := testLesson()

	sources := []catalog.AssetSource{
		{Kind: catalog.Document, Name: "handout.pdf", URL: "http://d/1"},
		{Kind: catalog.Document, Name: "handout.pdf", URL: "http://d/2"},
	}

	assets, err := catalog.BuildLessonAssets(t.TempDir(), course, lesson, sources, nil)
	require.NoError(t, err)
	require.Len(t, assets, 2)

	assert.NotEqual(t, assets[0].DestinationPath, assets[1].DestinationPath)
}

func TestBuildLessonAssets_DefaultExtensions(t *testing.T) {
	course, lesson := testLesson()

	sources := []catalog.AssetSource{
		{Kind: catalog.Document, Name: "notes", URL: "http://d/n"},
		{Kind: catalog.TopicSummary, Name: "Topics", Content: "text"},
		{Kind: catalog.Video, Name: "lecture", Variants: map[string]string{"720p": "http://v/720"}},
	}

	assets, err := catalog.BuildLessonAssets(t.TempDir(), course, lesson, sources, nil)
	require.NoError(t, err)
	require.Len(t, assets, 3)

	assert.True(t, strings.HasSuffix(assets[0].DestinationPath, ".pdf"))
	assert.True(t, strings.HasSuffix(assets[1].DestinationPath, ".txt"))
	assert.True(t, strings.HasSuffix(assets[2].DestinationPath, ".mp4"))
}

func TestManifestNodes(t *testing.T) {
	m := catalog.NewManifest()

	course, lesson := testLesson()
	m.AddNode(course)
	m.AddNode(lesson)
	m.AddNode(course) // duplicate is ignored

	assert.Len(t, m.Nodes, 2)

	got, ok := m.Node(lesson.ID)
	require.True(t, ok)
	assert.Equal(t, lesson.Title, got.Title)

	_, ok = m.Node("missing")
	assert.False(t, ok)
}

func TestParseAssetKind(t *testing.T) {
	for s, want := range map[string]catalog.AssetKind{
		"document": catalog.Document,
		"video":    catalog.Video,
		"support":  catalog.SupportMaterial,
		"summary":  catalog.TopicSummary,
	} {
		got, err := catalog.ParseAssetKind(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := catalog.ParseAssetKind("podcast")
	assert.Error(t, err)
}
