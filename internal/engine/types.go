package engine

import "time"

// Config contains orchestration configuration for one run.
type Config struct {
	DownloadDir  string
	Workers      int // 1 means fully sequential
	MaxRetries   int // total attempts per asset
	RetryDelay   time.Duration
	VariantOrder []string // video quality preference, best first
	Reset        bool
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Workers:    3,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
	}
}

func (c *Config) normalize() {
	if c.Workers <= 0 {
		c.Workers = 1
	}

	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}

	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
}
