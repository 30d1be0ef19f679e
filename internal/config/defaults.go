package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/khushveer007/courseget/internal/catalog"
)

const (
	workers           = 3
	maxRetries        = 3
	retryDelay        = 2 * time.Second
	requestTimeout    = 2 * time.Minute
	requestsPerSecond = 0 // unlimited
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DownloadDir:       filepath.Join(xdg.UserDirs.Download, "courses"),
		Workers:           workers,
		MaxRetries:        maxRetries,
		RetryDelay:        retryDelay,
		RequestTimeout:    requestTimeout,
		RequestsPerSecond: requestsPerSecond,
		VariantOrder:      catalog.DefaultVariantOrder,
	}
}
