package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config holds all client configuration.
type Config struct {
	// APIURL is the base URL of the remote game API.
	APIURL string

	// Language selects which tasks appear on the skill map ("en" or "ru").
	Language string

	// Timeout bounds a single HTTP request. Zero means no timeout.
	Timeout time.Duration

	// CacheTTL is how long public catalog responses (shop items,
	// leaderboard) are reused. Zero disables caching.
	CacheTTL time.Duration

	// MetricsAddr, when set, serves Prometheus metrics on this address
	// while the TUI runs (e.g. "127.0.0.1:9464").
	MetricsAddr string

	// DBPath overrides the local journal location.
	DBPath string
}

// SupportedLanguages lists the task languages the server publishes.
var SupportedLanguages = []string{"en", "ru"}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		APIURL:   "http://localhost:8080",
		Language: "en",
		Timeout:  30 * time.Second,
		CacheTTL: time.Minute,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load resolves configuration from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if u := os.Getenv("SKILLQUEST_API_URL"); u != "" {
		c.APIURL = u
	}
	if l := os.Getenv("SKILLQUEST_LANG"); l != "" {
		c.Language = l
	}
	if t := os.Getenv("SKILLQUEST_TIMEOUT"); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return fmt.Errorf("SKILLQUEST_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if t := os.Getenv("SKILLQUEST_CACHE_TTL"); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil {
			return fmt.Errorf("SKILLQUEST_CACHE_TTL: %w", err)
		}
		c.CacheTTL = d
	}
	if a := os.Getenv("SKILLQUEST_METRICS_ADDR"); a != "" {
		c.MetricsAddr = a
	}
	if p := os.Getenv("SKILLQUEST_DB"); p != "" {
		c.DBPath = p
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid API URL %q: %w", c.APIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API URL %q must use http or https", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("API URL %q has no host", c.APIURL)
	}

	supported := false
	for _, l := range SupportedLanguages {
		if c.Language == l {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported language %q (want one of %v)", c.Language, SupportedLanguages)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative, got %s", c.CacheTTL)
	}
	return nil
}
