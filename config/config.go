// Package config loads the editing service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the service configuration.
type Config struct {
	Addr      string      `yaml:"addr"`
	StaticDir string      `yaml:"staticDir"`
	SeedDemo  bool        `yaml:"seedDemo"`
	Store     StoreConfig `yaml:"store"`
	Log       LogConfig   `yaml:"log"`
}

// StoreConfig selects and tunes the document store.
type StoreConfig struct {
	// Backend is "memory" or "firestore".
	Backend          string        `yaml:"backend"`
	FirestoreProject string        `yaml:"firestoreProject"`
	FlushInterval    time.Duration `yaml:"flushInterval"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:      ":8080",
		StaticDir: "static",
		Store: StoreConfig{
			Backend:       "memory",
			FlushInterval: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field combinations.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case "memory":
	case "firestore":
		if c.Store.FirestoreProject == "" {
			return fmt.Errorf("config: store.firestoreProject is required for the firestore backend")
		}
		if c.Store.FlushInterval <= 0 {
			return fmt.Errorf("config: store.flushInterval must be positive")
		}
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}
