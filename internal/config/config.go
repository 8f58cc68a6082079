// Package config loads and validates the docsearch configuration.
//
// Configuration is resolved in three layers, later layers winning:
//  1. Built-in defaults
//  2. A YAML config file (docsearch.yaml)
//  3. Environment variables (DOCSEARCH_*)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config file name looked up in the working directory.
const DefaultConfigFile = "docsearch.yaml"

// Config is the complete docsearch configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" json:"store"`
	Index      IndexConfig      `yaml:"index" json:"index"`
	Processing ProcessingConfig `yaml:"processing" json:"processing"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" json:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// StoreConfig configures the blob store the documents are ingested from.
type StoreConfig struct {
	// Bucket is the blob store bucket name. Required for GCS-backed runs.
	Bucket string `yaml:"bucket" json:"bucket"`

	// Prefix restricts listings to keys under this prefix.
	Prefix string `yaml:"prefix" json:"prefix"`

	// AllowedExtensions is the allow list of file-type suffixes included
	// in store listings. Each entry starts with a dot.
	AllowedExtensions []string `yaml:"allowed_extensions" json:"allowed_extensions"`

	// MaxFileSizeMB is the largest document the processor will fetch.
	MaxFileSizeMB int `yaml:"max_file_size_mb" json:"max_file_size_mb"`

	// URLTTL is the lifetime of generated access URLs.
	URLTTL time.Duration `yaml:"url_ttl" json:"url_ttl"`

	// URLCacheSize caps the signed-URL cache (entries).
	URLCacheSize int `yaml:"url_cache_size" json:"url_cache_size"`
}

// IndexConfig configures the search index.
type IndexConfig struct {
	// Path is the on-disk index location. Empty means in-memory (tests).
	Path string `yaml:"path" json:"path"`
}

// ProcessingConfig configures batch and sync concurrency.
type ProcessingConfig struct {
	// Workers is the default batch concurrency.
	Workers int `yaml:"workers" json:"workers"`

	// MaxWorkers is the hard cap enforced at the caller boundary.
	MaxWorkers int `yaml:"max_workers" json:"max_workers"`

	// SyncWorkers is the lower concurrency used by background sync.
	SyncWorkers int `yaml:"sync_workers" json:"sync_workers"`
}

// TelemetryConfig configures the run-history store.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			AllowedExtensions: []string{
				".txt", ".csv", ".pdf", ".png", ".jpg", ".jpeg", ".docx", ".xlsx",
			},
			MaxFileSizeMB: 100,
			URLTTL:        time.Hour,
			URLCacheSize:  1024,
		},
		Index: IndexConfig{
			Path: filepath.Join(".docsearch", "index.bleve"),
		},
		Processing: ProcessingConfig{
			Workers:     5,
			MaxWorkers:  20,
			SyncWorkers: 3,
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
			Path:    filepath.Join(".docsearch", "telemetry.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the given path, falling back to defaults
// when the file does not exist, then applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus env overrides only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies DOCSEARCH_* environment variables over the
// file-provided values. Invalid numeric values are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DOCSEARCH_BUCKET"); v != "" {
		c.Store.Bucket = v
	}
	if v := os.Getenv("DOCSEARCH_PREFIX"); v != "" {
		c.Store.Prefix = v
	}
	if v := os.Getenv("DOCSEARCH_ALLOWED_EXTENSIONS"); v != "" {
		c.Store.AllowedExtensions = splitExtensions(v)
	}
	if v := os.Getenv("DOCSEARCH_MAX_FILE_SIZE_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Store.MaxFileSizeMB = n
		}
	}
	if v := os.Getenv("DOCSEARCH_INDEX_PATH"); v != "" {
		c.Index.Path = v
	}
	if v := os.Getenv("DOCSEARCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Processing.Workers = n
		}
	}
	if v := os.Getenv("DOCSEARCH_SYNC_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Processing.SyncWorkers = n
		}
	}
	if v := os.Getenv("DOCSEARCH_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for values that would misbehave at
// runtime. It normalizes extension casing.
func (c *Config) Validate() error {
	if c.Store.MaxFileSizeMB <= 0 {
		return fmt.Errorf("store.max_file_size_mb must be positive, got %d", c.Store.MaxFileSizeMB)
	}
	if len(c.Store.AllowedExtensions) == 0 {
		return fmt.Errorf("store.allowed_extensions must not be empty")
	}
	for i, ext := range c.Store.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("store.allowed_extensions[%d] %q must start with a dot", i, ext)
		}
		c.Store.AllowedExtensions[i] = ext
	}
	if c.Store.URLTTL <= 0 {
		c.Store.URLTTL = time.Hour
	}
	if c.Store.URLCacheSize <= 0 {
		c.Store.URLCacheSize = 1024
	}
	if c.Processing.MaxWorkers <= 0 {
		c.Processing.MaxWorkers = 20
	}
	if c.Processing.Workers <= 0 {
		return fmt.Errorf("processing.workers must be positive, got %d", c.Processing.Workers)
	}
	if c.Processing.Workers > c.Processing.MaxWorkers {
		return fmt.Errorf("processing.workers %d exceeds max_workers %d",
			c.Processing.Workers, c.Processing.MaxWorkers)
	}
	if c.Processing.SyncWorkers <= 0 {
		return fmt.Errorf("processing.sync_workers must be positive, got %d", c.Processing.SyncWorkers)
	}
	return nil
}

// MaxFileSizeBytes returns the configured size gate in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.Store.MaxFileSizeMB) * 1024 * 1024
}

// Render serializes the effective configuration as YAML.
func (c *Config) Render() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to render config: %w", err)
	}
	return data, nil
}

// splitExtensions parses a comma-separated extension list.
func splitExtensions(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
