package status

import "fmt"

// State is the lifecycle state of a single asset in the progress store.
type State int32

const (
	Pending State = iota
	Downloading
	Downloaded
	Uploaded
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Downloading:
		return "Downloading"
	case Downloaded:
		return "Downloaded"
	case Uploaded:
		return "Uploaded"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// Terminal reports whether no further download work is needed for an asset
// in this state. Failed is not terminal: a failed asset is retried from
// scratch on the next run.
func (s State) Terminal() bool {
	return s == Downloaded || s == Uploaded
}
