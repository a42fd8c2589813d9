package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 0.15, cfg.Matching.ConfidenceThreshold)
	assert.Equal(t, 0.5, cfg.Matching.AIConfidenceThreshold)
	assert.Equal(t, 20, cfg.AI.MaxFAQs)
	assert.Equal(t, 100, cfg.AI.AnswerPreviewLen)
	assert.False(t, cfg.AI.Enabled)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
database:
  driver: postgres
  postgres:
    dsn: postgres://localhost/match_engine
matching:
  confidence_threshold: 0.25
  fallback_message: "Ask me something else."
cache:
  driver: redis
  settings_ttl: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres", cfg.DriverName())
	assert.Equal(t, "postgres://localhost/match_engine", cfg.DatabaseDSN())
	assert.Equal(t, 0.25, cfg.Matching.ConfidenceThreshold)
	assert.Equal(t, "Ask me something else.", cfg.Matching.FallbackMessage)
	assert.Equal(t, 30*time.Second, cfg.Cache.SettingsTTL)

	// Unset fields keep their defaults.
	assert.Equal(t, 0.5, cfg.Matching.AIConfidenceThreshold)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DATABASE_URL", "sqlite:/tmp/override.db")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("MATCH_CONFIDENCE_THRESHOLD", "0.3")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/override.db", cfg.Database.SQLite.Path)
	assert.True(t, cfg.AI.Enabled)
	assert.Equal(t, "test-key", cfg.AI.APIKey)
	assert.Equal(t, 0.3, cfg.Matching.ConfidenceThreshold)
	assert.Equal(t, "error", cfg.Observability.LogLevel)
}

func TestValidateFailsFast(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"unknown database driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"unknown cache driver", func(c *Config) { c.Cache.Driver = "memcached" }},
		{"ai enabled without key", func(c *Config) { c.AI.Enabled = true; c.AI.APIKey = "" }},
		{"max faqs out of range", func(c *Config) { c.AI.MaxFAQs = 0 }},
		{"threshold at zero", func(c *Config) { c.Matching.ConfidenceThreshold = 0 }},
		{"threshold at one", func(c *Config) { c.Matching.ConfidenceThreshold = 1 }},
		{"ai threshold out of range", func(c *Config) { c.Matching.AIConfidenceThreshold = 1.2 }},
		{"empty fallback message", func(c *Config) { c.Matching.FallbackMessage = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
