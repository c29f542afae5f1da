// Package config loads the server-level configuration from YAML. Domain
// settings (the notice policy) live in the persistence boundary instead;
// this file only covers how the process runs.
package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is "file", "sqlite" or "memory".
	Backend string `yaml:"backend"`
	// Path is the data file location (ignored for the memory backend).
	Path string `yaml:"path"`
}

// Config is the top-level server configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`
	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Storage selects where planner data is kept.
	Storage StorageConfig `yaml:"storage"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:   "127.0.0.1:8080",
		LogLevel: "info",
		Storage: StorageConfig{
			Backend: "file",
			Path:    "dayoff_data.json",
		},
	}
}

// Normalize fills in missing values so partially-filled configs behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.Path == "" && c.Storage.Backend != "memory" {
		c.Storage.Path = "dayoff_data.json"
		if c.Storage.Backend == "sqlite" {
			c.Storage.Path = "dayoff_data.db"
		}
	}
}

// Load reads the YAML config at path. A missing file yields the defaults;
// an empty path skips the file entirely.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}
