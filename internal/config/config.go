// Package config loads and validates loom.json.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/loom-ui/loom/internal/errors"
)

// ConfigFileName is the name of the configuration file.
const ConfigFileName = "loom.json"

// DefaultAddress is the default dev server listen address.
const DefaultAddress = ":8080"

// Config represents the complete loom.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Server configures the dev server.
	Server ServerConfig `json:"server,omitempty"`

	// Styles configures stylesheet resolution.
	Styles StylesConfig `json:"styles,omitempty"`

	// Log configures logging.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores where the config was loaded from.
	configPath string
}

// ServerConfig configures the dev server.
type ServerConfig struct {
	// Address is the listen address.
	Address string `json:"address,omitempty"`

	// Title is the SSR page title.
	Title string `json:"title,omitempty"`

	// Scripts are client script URLs appended to the SSR page.
	Scripts []string `json:"scripts,omitempty"`
}

// StylesConfig configures stylesheet resolution.
type StylesConfig struct {
	// Sheets maps sheet names to references: a file path, an http(s)
	// URL, an s3://bucket/key object, or inline CSS.
	Sheets map[string]string `json:"sheets,omitempty"`

	// Watch enables hot reload for file-backed sheets.
	Watch bool `json:"watch,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `json:"level,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Address: DefaultAddress, Title: "loom"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads loom.json from dir, falling back to defaults when the
// file does not exist.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads the configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.New("L030", errors.CategoryConfig, "cannot read config").
			WithDetail(path).WithCause(err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("L031", errors.CategoryConfig, "malformed config").
			WithDetail(path).WithCause(err)
	}
	cfg.configPath = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns where the config was loaded from, empty for defaults.
func (c *Config) Path() string { return c.configPath }

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.New("L032", errors.CategoryConfig, "invalid log level").
			WithDetail(c.Log.Level)
	}
	for name, ref := range c.Styles.Sheets {
		if ref == "" {
			return errors.New("L033", errors.CategoryConfig, "empty sheet reference").
				WithDetail(fmt.Sprintf("sheet %q", name))
		}
	}
	return nil
}
