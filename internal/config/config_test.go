package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SKILLQUEST_API_URL", "SKILLQUEST_LANG", "SKILLQUEST_TIMEOUT",
		"SKILLQUEST_CACHE_TTL", "SKILLQUEST_METRICS_ADDR", "SKILLQUEST_DB",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SKILLQUEST_API_URL", "https://quest.example.com")
	t.Setenv("SKILLQUEST_LANG", "ru")
	t.Setenv("SKILLQUEST_TIMEOUT", "5s")
	t.Setenv("SKILLQUEST_METRICS_ADDR", "127.0.0.1:9464")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://quest.example.com", cfg.APIURL)
	assert.Equal(t, "ru", cfg.Language)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "127.0.0.1:9464", cfg.MetricsAddr)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
}

func TestConfigFromEnvBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("SKILLQUEST_TIMEOUT", "soon")

	_, err := ConfigFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SKILLQUEST_TIMEOUT")
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"api_url: https://file.example.com\nlanguage: ru\ncache_ttl: 10s\n"), 0o644))

	t.Setenv("SKILLQUEST_LANG", "en")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://file.example.com", cfg.APIURL, "file overrides default")
	assert.Equal(t, "en", cfg.Language, "env overrides file")
	assert.Equal(t, 10*time.Second, cfg.CacheTTL)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SKILLQUEST_LANG=ru\n"), 0o644))

	// Empty values still count as unset for godotenv, so drop the var first.
	os.Unsetenv("SKILLQUEST_LANG")
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "ru", os.Getenv("SKILLQUEST_LANG"))
	os.Unsetenv("SKILLQUEST_LANG")

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"https", func(c *Config) { c.APIURL = "https://api.example.com" }, false},
		{"no scheme", func(c *Config) { c.APIURL = "api.example.com" }, true},
		{"ftp", func(c *Config) { c.APIURL = "ftp://api.example.com" }, true},
		{"bad language", func(c *Config) { c.Language = "de" }, true},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
