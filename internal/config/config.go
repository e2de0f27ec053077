// Package config loads convfs's runtime configuration: Navigator cache
// tuning, the SQLite store path, log level, and shell prompt/history
// settings. A YAML file supplies the base values and environment
// variables override it; the Load/LoadWithEnv split lets tests supply an
// isolated environment lookup function.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is convfs's top-level configuration.
type Config struct {
	Cache CacheConfig `yaml:"cache"`
	Store StoreConfig `yaml:"store"`
	Log   LogConfig   `yaml:"log"`
	Shell ShellConfig `yaml:"shell"`
}

// CacheConfig tunes the Navigator's listing cache. Only TTL reaches the
// Navigator; MaxEntries is loaded but not passed on, and the Navigator's
// cache has no entry cap.
type CacheConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

// StoreConfig points at the SQLite-backed Repository implementation.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds the log level. Level is loaded from the file and
// CONVFS_LOG_LEVEL, but nothing reads it: packages log through the stdlib
// log package with no level filtering.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ShellConfig controls the REPL loop (component H).
type ShellConfig struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"`
}

// DefaultConfig returns the configuration used when no file or environment
// override is present.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			TTL:        2 * time.Second,
			MaxEntries: 10000,
		},
		Store: StoreConfig{
			Path: "",
		},
		Log: LogConfig{
			Level: "info",
		},
		Shell: ShellConfig{
			Prompt:      "convfs> ",
			HistoryFile: "",
		},
	}
}

// Load loads configuration using the real process environment.
func Load() (*Config, error) {
	return LoadWithEnv(os.Getenv)
}

// LoadWithEnv loads configuration using getenv for environment lookups,
// so tests can supply isolated values instead of the real environment.
func LoadWithEnv(getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPathWithEnv(getenv)
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if dbPath := getenv("CONVFS_DB"); dbPath != "" {
		cfg.Store.Path = dbPath
	}
	if level := getenv("CONVFS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if ttl := getenv("CONVFS_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.Cache.TTL = d
		}
	}

	return cfg, nil
}

func getConfigPathWithEnv(getenv func(string) string) string {
	if xdgConfig := getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "convfs", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "convfs", "config.yaml")
}

// DefaultStorePath returns the store DB path to use when none is
// configured: ~/.config/convfs/convfs.db. Unlike the config file path, it
// does not follow XDG_CONFIG_HOME.
func DefaultStorePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "convfs", "convfs.db")
}
