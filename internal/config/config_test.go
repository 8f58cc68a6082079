package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.Processing.Workers)
	assert.Equal(t, 20, cfg.Processing.MaxWorkers)
	assert.Equal(t, 3, cfg.Processing.SyncWorkers)
	assert.Equal(t, 100, cfg.Store.MaxFileSizeMB)
	assert.Contains(t, cfg.Store.AllowedExtensions, ".pdf")
	assert.Contains(t, cfg.Store.AllowedExtensions, ".txt")
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Processing.Workers, cfg.Processing.Workers)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docsearch.yaml")
	content := `
store:
  bucket: corp-documents
  prefix: reports/
  max_file_size_mb: 25
  url_ttl: 30m
processing:
  workers: 8
  sync_workers: 2
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "corp-documents", cfg.Store.Bucket)
	assert.Equal(t, "reports/", cfg.Store.Prefix)
	assert.Equal(t, 25, cfg.Store.MaxFileSizeMB)
	assert.Equal(t, 30*time.Minute, cfg.Store.URLTTL)
	assert.Equal(t, 8, cfg.Processing.Workers)
	assert.Equal(t, 2, cfg.Processing.SyncWorkers)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep defaults.
	assert.Equal(t, 20, cfg.Processing.MaxWorkers)
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docsearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DOCSEARCH_BUCKET", "env-bucket")
	t.Setenv("DOCSEARCH_WORKERS", "7")
	t.Setenv("DOCSEARCH_ALLOWED_EXTENSIONS", ".md, .txt")
	t.Setenv("DOCSEARCH_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "env-bucket", cfg.Store.Bucket)
	assert.Equal(t, 7, cfg.Processing.Workers)
	assert.Equal(t, []string{".md", ".txt"}, cfg.Store.AllowedExtensions)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults ok", func(c *Config) {}, false},
		{"zero max size", func(c *Config) { c.Store.MaxFileSizeMB = 0 }, true},
		{"no extensions", func(c *Config) { c.Store.AllowedExtensions = nil }, true},
		{"extension without dot", func(c *Config) { c.Store.AllowedExtensions = []string{"txt"} }, true},
		{"zero workers", func(c *Config) { c.Processing.Workers = 0 }, true},
		{"workers above cap", func(c *Config) { c.Processing.Workers = 21 }, true},
		{"zero sync workers", func(c *Config) { c.Processing.SyncWorkers = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_NormalizesExtensionCase(t *testing.T) {
	cfg := Default()
	cfg.Store.AllowedExtensions = []string{".TXT", ".Pdf"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{".txt", ".pdf"}, cfg.Store.AllowedExtensions)
}

func TestMaxFileSizeBytes(t *testing.T) {
	cfg := Default()
	cfg.Store.MaxFileSizeMB = 2
	assert.Equal(t, int64(2*1024*1024), cfg.MaxFileSizeBytes())
}
