package repository

import (
	"time"

	"github.com/khushveer007/courseget/internal/status"
)

// Entry is the durable per-asset progress record. It is owned exclusively by
// the store: workers request state transitions through Record and never
// mutate entries directly.
type Entry struct {
	AssetID   string       `json:"asset_id"`
	State     status.State `json:"state"`
	Attempts  int          `json:"attempts"`
	LastError string       `json:"last_error,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ProgressStore is the single source of truth for which assets have already
// been handled.
type ProgressStore interface {
	Load() (map[string]Entry, error)
	Record(assetID string, state status.State, attempts int, lastErr error) error
	Reset() error
	Close() error
}
