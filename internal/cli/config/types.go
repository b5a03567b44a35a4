// Package config loads repost configuration from defaults, a YAML file,
// REPOST_* environment variables and command-line flags, in that order of
// increasing precedence.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all CLI configuration options.
type Config struct {
	DBPath      string           `koanf:"db_path"`
	HistoryFile string           `koanf:"history_file"`
	Workspace   string           `koanf:"workspace"`
	Environment string           `koanf:"environment"`
	LogLevel    string           `koanf:"log_level"`
	Verbose     bool             `koanf:"verbose"`
	Color       string           `koanf:"color"`
	HTTP        HTTPConfig       `koanf:"http"`
	Completion  CompletionConfig `koanf:"completion"`
}

// HTTPConfig configures outgoing requests.
type HTTPConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// CompletionConfig configures tab completion.
type CompletionConfig struct {
	// Timeout bounds each store lookup made while completing.
	Timeout time.Duration `koanf:"timeout"`
}

// Colour modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default configuration values.
const (
	DefaultDirName           = ".repost"
	DefaultDBFile            = "repost.db"
	DefaultHistoryFile       = "history"
	DefaultLogLevel          = "warn"
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultCompletionTimeout = 250 * time.Millisecond
)

// configNames are the file names searched for in the working directory.
var configNames = []string{"repost.yaml", "repost.yml"}

// DefaultDir returns $HOME/.repost, or .repost when there is no home.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	dir := DefaultDir()
	return &Config{
		DBPath:      filepath.Join(dir, DefaultDBFile),
		HistoryFile: filepath.Join(dir, DefaultHistoryFile),
		LogLevel:    DefaultLogLevel,
		Color:       ColorAuto,
		HTTP:        HTTPConfig{Timeout: DefaultHTTPTimeout},
		Completion:  CompletionConfig{Timeout: DefaultCompletionTimeout},
	}
}

// Display is the YAML form printed by `repost config`.
type Display struct {
	DBPath      string `yaml:"db_path"`
	HistoryFile string `yaml:"history_file"`
	Workspace   string `yaml:"workspace,omitempty"`
	Environment string `yaml:"environment,omitempty"`
	LogLevel    string `yaml:"log_level"`
	Verbose     bool   `yaml:"verbose"`
	Color       string `yaml:"color"`
	HTTP        struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"http"`
	Completion struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"completion"`
}

// Display renders durations as strings so the output can be fed back in.
func (c *Config) Display() Display {
	d := Display{
		DBPath:      c.DBPath,
		HistoryFile: c.HistoryFile,
		Workspace:   c.Workspace,
		Environment: c.Environment,
		LogLevel:    c.LogLevel,
		Verbose:     c.Verbose,
		Color:       c.Color,
	}
	d.HTTP.Timeout = c.HTTP.Timeout.String()
	d.Completion.Timeout = c.Completion.Timeout.String()
	return d
}
