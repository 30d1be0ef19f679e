package config

import (
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const configFileName = "courseget.yaml"

// Config holds the file-backed configuration options. CLI flags override
// anything set here.
type Config struct {
	DownloadDir       string        `yaml:"dir,omitempty"`
	ArchiveDir        string        `yaml:"archiveDir,omitempty"`
	Workers           int           `yaml:"workers,omitempty"`
	MaxRetries        int           `yaml:"maxRetries,omitempty"`
	RetryDelay        time.Duration `yaml:"retryDelay,omitempty"`
	RequestTimeout    time.Duration `yaml:"requestTimeout,omitempty"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond,omitempty"`
	VariantOrder      []string      `yaml:"variantOrder,omitempty"`
}

// GetConfig reads the configuration file and returns a Config struct.
// If the configuration file does not exist, it returns the defaults.
func GetConfig() (*Config, error) {
	configFilePath := filepath.Join(xdg.ConfigHome, configFileName)
	defaults := DefaultConfig()

	b, err := os.ReadFile(configFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &defaults, nil
		}

		return nil, err
	}

	if len(b) == 0 {
		return &defaults, nil
	}

	var cfg Config

	err = yaml.Unmarshal(b, &cfg)
	if err != nil {
		return nil, err
	}

	return &Config{
		DownloadDir:       zeroOr(cfg.DownloadDir, defaults.DownloadDir),
		ArchiveDir:        zeroOr(cfg.ArchiveDir, defaults.ArchiveDir),
		Workers:           zeroOr(cfg.Workers, defaults.Workers),
		MaxRetries:        zeroOr(cfg.MaxRetries, defaults.MaxRetries),
		RetryDelay:        zeroOr(cfg.RetryDelay, defaults.RetryDelay),
		RequestTimeout:    zeroOr(cfg.RequestTimeout, defaults.RequestTimeout),
		RequestsPerSecond: zeroOr(cfg.RequestsPerSecond, defaults.RequestsPerSecond),
		VariantOrder:      orList(cfg.VariantOrder, defaults.VariantOrder),
	}, nil
}

// zeroOr returns def if v is the zero value for its type.
func zeroOr[T any](v, def T) T {
	if reflect.ValueOf(v).IsZero() {
		return def
	}

	return v
}

func orList[T any](v, def []T) []T {
	if len(v) == 0 {
		return def
	}

	return v
}
