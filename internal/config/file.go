package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config in the on-disk YAML layout. Unset keys keep
// whatever value was resolved before the file was applied.
type fileConfig struct {
	APIURL      string `yaml:"api_url"`
	Language    string `yaml:"language"`
	Timeout     string `yaml:"timeout"`
	CacheTTL    string `yaml:"cache_ttl"`
	MetricsAddr string `yaml:"metrics_addr"`
	DBPath      string `yaml:"db"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/skillquest/config.yaml,
// falling back to ~/.config/skillquest/config.yaml.
func DefaultConfigPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "skillquest", "config.yaml"), nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// applyFile overlays the YAML file at path. A missing file is ignored.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.APIURL != "" {
		c.APIURL = fc.APIURL
	}
	if fc.Language != "" {
		c.Language = fc.Language
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("config file timeout: %w", err)
		}
		c.Timeout = d
	}
	if fc.CacheTTL != "" {
		d, err := time.ParseDuration(fc.CacheTTL)
		if err != nil {
			return fmt.Errorf("config file cache_ttl: %w", err)
		}
		c.CacheTTL = d
	}
	if fc.MetricsAddr != "" {
		c.MetricsAddr = fc.MetricsAddr
	}
	if fc.DBPath != "" {
		c.DBPath = fc.DBPath
	}
	return nil
}
