package app

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dori/quadro/internal/db"
)

//go:embed config.example.toml
var exampleConf []byte

// Backend kinds
const (
	BackendSQLite = "sqlite"
	BackendREST   = "rest"
)

// Config is the application configuration loaded from a TOML file
type Config struct {
	DataDir string        `toml:"data_dir"`
	Backend BackendConfig `toml:"backend"`
	SQLite  SQLiteConfig  `toml:"sqlite"`
	REST    RESTConfig    `toml:"rest"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
	Board   BoardConfig   `toml:"board"`
	Notify  NotifyConfig  `toml:"notify"`
}

// BackendConfig selects the backend
type BackendConfig struct {
	Kind string `toml:"kind"`
}

// SQLiteConfig configures the local backend
type SQLiteConfig struct {
	Path string `toml:"path"`
}

// RESTConfig configures the hosted backend
type RESTConfig struct {
	URL       string  `toml:"url"`
	AnonKey   string  `toml:"anon_key"`
	RateLimit float64 `toml:"rate_limit"`
}

// UIConfig configures the terminal UI
type UIConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `toml:"level"`
}

// BoardConfig configures the board view
type BoardConfig struct {
	ReloadOnFailure bool     `toml:"reload_on_failure"`
	RequestTimeout  Duration `toml:"request_timeout"`
}

// NotifyConfig configures desktop notifications
type NotifyConfig struct {
	Enabled bool `toml:"enabled"`
}

// Duration is a time.Duration written as "10s" in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText renders the duration string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfigPath returns ~/.config/quadro/config.toml
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "quadro", "config.toml")
}

// LoadConfig reads and parses a TOML configuration file. Missing keys keep
// their defaults.
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

// LoadConfigOrDefault loads path, falling back to defaults when it does not exist
func LoadConfigOrDefault(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return config, err
}

// DefaultConfig returns a Config with defaults loaded from the embedded example config
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile writes the embedded example config to path
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Backend.Kind {
	case BackendSQLite:
	case BackendREST:
		if c.REST.URL == "" || c.REST.AnonKey == "" {
			return fmt.Errorf("backend %q needs rest.url and rest.anon_key", BackendREST)
		}
	default:
		return fmt.Errorf("unknown backend kind %q", c.Backend.Kind)
	}
	if c.UI.Theme != "" && c.UI.Theme != "dark" && c.UI.Theme != "light" {
		return fmt.Errorf("unknown theme %q", c.UI.Theme)
	}
	return nil
}

// ResolvedDataDir returns the data directory, defaulting to db.DefaultDataDir()
func (c *Config) ResolvedDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return db.DefaultDataDir()
}

// ResolvedDBPath returns the SQLite path, defaulting to <data_dir>/quadro.db
func (c *Config) ResolvedDBPath() string {
	if c.SQLite.Path != "" {
		return c.SQLite.Path
	}
	return filepath.Join(c.ResolvedDataDir(), "quadro.db")
}
