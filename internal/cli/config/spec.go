package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/NDP4/CompanyLock-Manager/internal/storage"
)

// CLIConfig is the configuration for companylock-cli.
type CLIConfig struct {
	// Server is the collaborator address, with or without scheme.
	Server string `koanf:"server" yaml:"server"`

	// APIBase is the path prefix of every endpoint.
	APIBase string `koanf:"api_base" yaml:"api_base"`

	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
	Output  string        `koanf:"output" yaml:"output"` // table, json, yaml

	// CAFile is a PEM file, or a directory of them, trusted in addition
	// to the system roots.
	CAFile string `koanf:"ca_file" yaml:"ca_file,omitempty"`

	Session   SessionSection   `koanf:"session" yaml:"session"`
	RateLimit RateLimitSection `koanf:"rate_limit" yaml:"rate_limit"`
	Log       LogSection       `koanf:"log" yaml:"log"`

	HistoryFile string `koanf:"history_file" yaml:"history_file"`
}

// SessionSection configures where the login session is kept.
type SessionSection struct {
	Backend string `koanf:"backend" yaml:"backend"` // file, badger, memory
	Path    string `koanf:"path" yaml:"path"`
	KeyFile string `koanf:"key_file" yaml:"key_file,omitempty"`
}

// RateLimitSection throttles outbound requests. RPS 0 disables it.
type RateLimitSection struct {
	RPS   float64 `koanf:"rps" yaml:"rps"`
	Burst int     `koanf:"burst" yaml:"burst"`
}

// LogSection configures diagnostic logging on stderr.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// Default values.
const (
	DefaultServer  = "http://localhost:8000"
	DefaultAPIBase = "/api"
	DefaultTimeout = 10 * time.Second
	DefaultOutput  = "table"
	DefaultBackend = storage.BackendFile

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Dir returns the per-user configuration directory.
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".companylock"
	}
	return filepath.Join(homeDir, ".companylock")
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "cli.yaml")
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  DefaultServer,
		APIBase: DefaultAPIBase,
		Timeout: DefaultTimeout,
		Output:  DefaultOutput,
		Session: SessionSection{
			Backend: DefaultBackend,
			Path:    filepath.Join(Dir(), "session.json"),
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		HistoryFile: filepath.Join(Dir(), "history"),
	}
}

// StorageConfig returns the session persistence settings.
func (c *CLIConfig) StorageConfig() storage.Config {
	return storage.Config{
		Backend: c.Session.Backend,
		Path:    c.Session.Path,
		KeyFile: c.Session.KeyFile,
	}
}
