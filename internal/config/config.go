// Package config provides configuration types for the sofisoft admin client.
//
// Configuration comes from an optional sofisoft.yaml file, SOFISOFT_*
// environment variables and CLI flags, in increasing order of precedence.
// Session state is not configuration; it lives in the client store.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SofiSoft/sofisoft-admin/internal/domain/api"
)

// Config is the top-level client configuration.
type Config struct {
	// API configures the backend connection.
	API APIConfig `yaml:"api" json:"api" mapstructure:"api"`

	// Store configures where the session and base URL are persisted.
	Store StoreConfig `yaml:"store" json:"store" mapstructure:"store"`

	// LogLevel is one of debug, info, warn, error. Default: warn.
	LogLevel string `yaml:"log_level" json:"log_level" mapstructure:"log_level" validate:"oneof=debug info warn error"`

	// Output is the format of command output: json or yaml. Default: json.
	Output string `yaml:"output" json:"output" mapstructure:"output" validate:"oneof=json yaml"`

	// Tracing configures OpenTelemetry spans for backend requests.
	Tracing TracingConfig `yaml:"tracing" json:"tracing" mapstructure:"tracing"`

	// Metrics configures the Prometheus textfile written on exit.
	Metrics MetricsConfig `yaml:"metrics" json:"metrics" mapstructure:"metrics"`
}

// APIConfig configures the backend connection.
type APIConfig struct {
	// BaseURL is used while no base URL has been stored with `config set-base-url`.
	// Default: "http://localhost:8080".
	BaseURL string `yaml:"base_url" json:"base_url" mapstructure:"base_url" validate:"required,url"`

	// HTTPTimeout bounds each request (e.g. "30s"). Empty means no timeout.
	HTTPTimeout string `yaml:"http_timeout" json:"http_timeout" mapstructure:"http_timeout" validate:"omitempty,duration"`
}

// Store drivers.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// StoreConfig configures the client store.
type StoreConfig struct {
	// Driver is file, sqlite or memory. Default: file.
	Driver string `yaml:"driver" json:"driver" mapstructure:"driver" validate:"oneof=file sqlite memory"`

	// Path is the store location. Default: ~/.sofisoft/state.json (state.db for sqlite).
	Path string `yaml:"path" json:"path" mapstructure:"path" validate:"required_unless=Driver memory"`
}

// TracingConfig configures request tracing.
type TracingConfig struct {
	// Enabled writes one JSON span per backend request to stderr.
	Enabled bool `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
}

// MetricsConfig configures request metrics.
type MetricsConfig struct {
	// Textfile, when set, receives the Prometheus metrics of the run on exit.
	Textfile string `yaml:"textfile" json:"textfile" mapstructure:"textfile"`
}

// Output formats.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// DefaultStateDir returns ~/.sofisoft, or .sofisoft when the home directory is unknown.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".sofisoft"
	}
	return filepath.Join(home, ".sofisoft")
}

// SetDefaults applies default values for optional fields.
func (c *Config) SetDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = api.DefaultBaseURL
	}
	c.API.BaseURL = strings.TrimSuffix(c.API.BaseURL, "/")
	if c.Store.Driver == "" {
		c.Store.Driver = StoreFile
	}
	if c.Store.Path == "" {
		switch c.Store.Driver {
		case StoreFile:
			c.Store.Path = filepath.Join(DefaultStateDir(), "state.json")
		case StoreSQLite:
			c.Store.Path = filepath.Join(DefaultStateDir(), "state.db")
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if c.Output == "" {
		c.Output = OutputJSON
	}
}

// HTTPTimeoutDuration returns the parsed request timeout, or 0 for none.
// Call after Validate.
func (c *Config) HTTPTimeoutDuration() time.Duration {
	if c.API.HTTPTimeout == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.API.HTTPTimeout)
	return d
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
