package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "file", cfg.StoreBackend)
	assert.Equal(t, 50, cfg.MaxHistoryDepth)
	assert.Equal(t, 0.1, cfg.MinZoom)
	assert.Equal(t, 2.0, cfg.MaxZoom)
	assert.Equal(t, 200*time.Millisecond, cfg.ConnectorClickThreshold)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("DATABASE_PATH", "/tmp/twitcanva.db")
	t.Setenv("MAX_HISTORY_DEPTH", "25")
	t.Setenv("MAX_ZOOM", "4.0")
	t.Setenv("CONNECTOR_CLICK_THRESHOLD", "350ms")
	t.Setenv("ENABLE_METRICS", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "sqlite", cfg.StoreBackend)
	assert.Equal(t, "/tmp/twitcanva.db", cfg.DatabasePath)
	assert.Equal(t, 25, cfg.MaxHistoryDepth)
	assert.Equal(t, 4.0, cfg.MaxZoom)
	assert.Equal(t, 350*time.Millisecond, cfg.ConnectorClickThreshold)
	assert.True(t, cfg.EnableMetrics)
}

func TestLoadConfigFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
environment: production
store_backend: file
max_history_depth: 10
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("TWITCANVA_CONFIG", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 10, cfg.MaxHistoryDepth)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_history_depth: 10\n"), 0o644))
	t.Setenv("TWITCANVA_CONFIG", path)
	t.Setenv("MAX_HISTORY_DEPTH", "99")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.MaxHistoryDepth)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("TWITCANVA_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.StoreBackend = "redis" }, true},
		{"sqlite without path", func(c *Config) { c.StoreBackend = "sqlite"; c.DatabasePath = "" }, true},
		{"sqlite with path", func(c *Config) { c.StoreBackend = "sqlite"; c.DatabasePath = "x.db" }, false},
		{"zero min zoom", func(c *Config) { c.MinZoom = 0 }, true},
		{"inverted zoom bounds", func(c *Config) { c.MinZoom = 3; c.MaxZoom = 2 }, true},
		{"zero history depth", func(c *Config) { c.MaxHistoryDepth = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
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

func TestDomainConfigDerivation(t *testing.T) {
	cfg := defaults()
	cfg.MaxHistoryDepth = 7
	cfg.MinZoom = 0.25
	cfg.MaxZoom = 3.0
	cfg.ConnectorClickThreshold = 150 * time.Millisecond

	dc := cfg.DomainConfig()
	assert.Equal(t, 7, dc.MaxHistoryDepth)
	assert.Equal(t, 0.25, dc.MinZoom)
	assert.Equal(t, 3.0, dc.MaxZoom)
	assert.Equal(t, 150*time.Millisecond, dc.ConnectorClickThreshold)
}
