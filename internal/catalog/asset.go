package catalog

import "fmt"

// AssetKind classifies a downloadable unit.
type AssetKind int

const (
	Document AssetKind = iota
	Video
	SupportMaterial
	TopicSummary
)

func (k AssetKind) String() string {
	switch k {
	case Document:
		return "Document"
	case Video:
		return "Video"
	case SupportMaterial:
		return "SupportMaterial"
	case TopicSummary:
		return "TopicSummary"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// ParseAssetKind maps manifest-file kind strings to an AssetKind.
func ParseAssetKind(s string) (AssetKind, error) {
	switch s {
	case "document":
		return Document, nil
	case "video":
		return Video, nil
	case "support":
		return SupportMaterial, nil
	case "summary":
		return TopicSummary, nil
	default:
		return Document, fmt.Errorf("unknown asset kind %q", s)
	}
}

// DefaultVariantOrder is the video quality preference, best first.
var DefaultVariantOrder = []string{"720p", "480p", "360p"}

// Asset is a single downloadable unit with a fully derived destination.
// DestinationPath and RemotePath are pure functions of the node ancestry and
// the asset descriptor, which is what makes resume work across runs.
type Asset struct {
	ID              string
	LessonID        string
	Kind            AssetKind
	SourceURL       string
	QualityVariant  string
	DestinationPath string
	RemotePath      string
	SizeHint        int64
	Referer         string

	// Content holds the body of assets materialized without a network
	// fetch, such as a lesson's topic summary text.
	Content string
}

// AssetSource is the raw descriptor the discovery collaborator reports for
// one downloadable unit, before paths and identity are derived.
type AssetSource struct {
	Kind     AssetKind
	Name     string // suggested filename, extension optional
	URL      string
	Variants map[string]string // quality -> URL, videos only
	Content  string
	Referer  string
	SizeHint int64
}
