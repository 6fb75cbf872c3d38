package shared

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	SessionModeHandoff  = "handoff"
	SessionModeFragment = "fragment"

	StorageBackendFile   = "file"
	StorageBackendSQLite = "sqlite"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Session  SessionConfig  `toml:"session"`
	Storage  StorageConfig  `toml:"storage"`
	Database DatabaseConfig `toml:"database"`
}

// APIConfig contains VibeSync service connection settings.
type APIConfig struct {
	BaseURL        string  `toml:"base_url"`
	RateLimit      float64 `toml:"rate_limit"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// SessionConfig controls how a login handoff is received.
type SessionConfig struct {
	Mode                string `toml:"mode"`
	EntryURL            string `toml:"entry_url"`
	CallbackHost        string `toml:"callback_host"`
	CallbackPort        int    `toml:"callback_port"`
	LoginTimeoutSeconds int    `toml:"login_timeout_seconds"`
}

// StorageConfig selects the credential slot backend.
type StorageConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	Slot    string `toml:"slot"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// Timeout returns the HTTP client timeout.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoginTimeout returns how long `auth login` waits for the browser to come back.
func (c SessionConfig) LoginTimeout() time.Duration {
	if c.LoginTimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.LoginTimeoutSeconds) * time.Second
}

// CallbackAddr returns the listen address of the loopback callback receiver.
func (c SessionConfig) CallbackAddr() string {
	return fmt.Sprintf("%s:%d", c.CallbackHost, c.CallbackPort)
}

// ExpandDir resolves a leading ~ in the storage directory against the user's home directory.
func (c StorageConfig) ExpandDir() (string, error) {
	if c.Dir == "~" || strings.HasPrefix(c.Dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(c.Dir, "~")), nil
	}
	return c.Dir, nil
}

// Validate checks enumerated settings and URLs.
func (c *Config) Validate() error {
	switch c.Session.Mode {
	case SessionModeHandoff, SessionModeFragment:
	default:
		return fmt.Errorf("%w: unknown session mode %q", ErrInvalidConfig, c.Session.Mode)
	}

	switch c.Storage.Backend {
	case StorageBackendFile, StorageBackendSQLite:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}

	if c.Storage.Slot == "" {
		return fmt.Errorf("%w: storage slot must be set", ErrInvalidConfig)
	}

	if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
		return fmt.Errorf("%w: api base_url: %v", ErrInvalidConfig, err)
	}

	if _, err := url.ParseRequestURI(c.Session.EntryURL); err != nil {
		return fmt.Errorf("%w: session entry_url: %v", ErrInvalidConfig, err)
	}

	if c.API.RateLimit < 0 {
		return fmt.Errorf("%w: api rate_limit must not be negative", ErrInvalidConfig)
	}

	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
