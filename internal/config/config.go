// Package config handles the XDG configuration directory, file paths and
// the optional config.yaml settings file.
package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// SettingsFile is the optional settings filename inside the config dir.
	SettingsFile = "config.yaml"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// EnvPrefix prefixes environment overrides, e.g. TODO_STORAGE_BACKEND.
	EnvPrefix = "TODO"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings are read from config.yaml and the environment.
	Settings Settings

	// Log receives diagnostics. Nil discards them.
	Log *log.Logger
}

// Logger returns the diagnostics logger, never nil.
func (c *Config) Logger() *log.Logger {
	if c.Log == nil {
		return log.New(io.Discard, "", 0)
	}
	return c.Log
}

// Settings are the user-tunable options.
type Settings struct {
	Storage         Storage `mapstructure:"storage" yaml:"storage"`
	DefaultCategory string  `mapstructure:"default_category" yaml:"default_category"`
}

// Storage selects and configures the key-value slot holding the tasks.
type Storage struct {
	// Backend is one of file, memory, sqlite, postgres, mysql.
	Backend string `mapstructure:"backend" yaml:"backend"`

	// DSN is the backend target: a directory for file, a database path for
	// sqlite, a connection string for postgres and mysql.
	DSN string `mapstructure:"dsn" yaml:"dsn"`

	// Key is the slot key.
	Key string `mapstructure:"key" yaml:"key"`

	// WriteTimeout bounds one write.
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		Storage: Storage{
			Backend:      "file",
			Key:          "tasks",
			WriteTimeout: 10 * time.Second,
		},
		DefaultCategory: "General",
	}
}

// New creates a new Config with the default or specified config directory
// and loads settings from it.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir, Settings: DefaultSettings()}
	if err := cfg.loadSettings(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) loadSettings() error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := c.Settings
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.dsn", d.Storage.DSN)
	v.SetDefault("storage.key", d.Storage.Key)
	v.SetDefault("storage.write_timeout", d.Storage.WriteTimeout)
	v.SetDefault("default_category", d.DefaultCategory)

	if c.HasSettingsFile() {
		v.SetConfigFile(c.SettingsPath())
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
	}

	if err := v.Unmarshal(&c.Settings); err != nil {
		return fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}
	return nil
}

// StorageDSN returns the configured DSN, defaulting file and sqlite
// storage to locations inside the config directory.
func (c *Config) StorageDSN() string {
	if c.Settings.Storage.DSN != "" {
		return c.Settings.Storage.DSN
	}
	switch strings.ToLower(c.Settings.Storage.Backend) {
	case "sqlite", "sqlite3":
		return filepath.Join(c.Dir, "todo.db")
	default:
		return c.Dir
	}
}

// YAML renders the effective settings.
func (c *Config) YAML() ([]byte, error) {
	s := c.Settings
	s.Storage.DSN = c.StorageDSN()
	return yaml.Marshal(s)
}

// SettingsPath returns the path to config.yaml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// HasSettingsFile checks if config.yaml exists.
func (c *Config) HasSettingsFile() bool {
	_, err := os.Stat(c.SettingsPath())
	return err == nil
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
