// Package config loads and writes the tasklist configuration file.
//
// The file is TOML with a [trello] table holding the board credentials and an
// optional [defaults] table. TRELLO_API_KEY and TRELLO_API_TOKEN override the
// credentials from the file, and a .env file next to the config file can set
// either of them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tasklist/tasklist/internal/schema"
)

var (
	// ErrNotFound is returned when the config file does not exist.
	ErrNotFound = errors.New("configuration file not found")
	// ErrMissingKey is returned when a required [trello] key is empty.
	ErrMissingKey = errors.New("missing required key in the [trello] section")
)

// Config is the merged configuration.
type Config struct {
	Trello   TrelloConfig   `mapstructure:"trello" toml:"trello"`
	Defaults DefaultsConfig `mapstructure:"defaults" toml:"defaults"`
	// LogLevel overrides the console log level (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level" toml:"log_level,omitempty"`
}

// TrelloConfig holds the board credentials.
type TrelloConfig struct {
	APIKey  string `mapstructure:"api_key" toml:"api_key"`
	Token   string `mapstructure:"token" toml:"token"`
	BoardID string `mapstructure:"board_id" toml:"board_id"`
	ListID  string `mapstructure:"list_id" toml:"list_id"`
	// BaseURL points the client at another API root; empty means the public API.
	BaseURL string `mapstructure:"base_url" toml:"base_url,omitempty"`
}

// DefaultsConfig holds the values applied to tasks created without them.
type DefaultsConfig struct {
	Priority int    `mapstructure:"priority" toml:"priority"`
	Category string `mapstructure:"category" toml:"category"`
}

// Load reads the config file at path, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	// Optional; variables already in the environment win.
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("defaults.priority", schema.DefaultPriority)
	v.SetDefault("defaults.category", schema.DefaultCategory)
}

func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("trello.api_key", "TRELLO_API_KEY")
	_ = v.BindEnv("trello.token", "TRELLO_API_TOKEN")
	_ = v.BindEnv("log_level", "TASKLIST_LOG_LEVEL")
}

// Validate checks the required credentials and normalizes the defaults.
func (c *Config) Validate() error {
	required := []struct {
		key, value string
	}{
		{"api_key", c.Trello.APIKey},
		{"token", c.Trello.Token},
		{"board_id", c.Trello.BoardID},
		{"list_id", c.Trello.ListID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w (%s); please run 'tasklist configure' to update it", ErrMissingKey, r.key)
		}
	}

	if c.Defaults.Priority == 0 {
		c.Defaults.Priority = schema.DefaultPriority
	}
	if err := schema.ValidatePriority(c.Defaults.Priority); err != nil {
		return fmt.Errorf("invalid default priority: %w", err)
	}
	c.Defaults.Category = strings.TrimSpace(c.Defaults.Category)
	if c.Defaults.Category == "" {
		c.Defaults.Category = schema.DefaultCategory
	}
	return nil
}

// Save writes cfg to path as TOML, readable by the owner only.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return SecurePermissions(path)
}

// SecurePermissions restricts the file to owner read/write. It is a no-op on
// Windows.
func SecurePermissions(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	return nil
}
