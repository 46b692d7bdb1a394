package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Config represents the main marque configuration
type Config struct {
	// DB holds the bookmark database settings
	DB DBConfig `json:"db" mapstructure:"db"`

	// Fetch controls page metadata scraping
	Fetch FetchConfig `json:"fetch" mapstructure:"fetch"`

	// Plugins controls the mutation plugin system
	Plugins PluginsConfig `json:"plugins" mapstructure:"plugins"`

	// Shell holds interactive prompt settings
	Shell ShellConfig `json:"shell" mapstructure:"shell"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory for the database, plugins and prompt history
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// DBConfig holds bookmark database configuration
type DBConfig struct {
	Path string `json:"path" mapstructure:"path"`
	// RetainOrder keeps id gaps after deletes instead of compacting.
	RetainOrder bool `json:"retain_order" mapstructure:"retain_order"`
}

// FetchConfig holds page metadata fetch configuration
type FetchConfig struct {
	// Enabled fills missing titles from the page when adding bookmarks.
	Enabled        bool   `json:"enabled" mapstructure:"enabled"`
	UserAgent      string `json:"user_agent" mapstructure:"user_agent"`
	TimeoutSeconds int    `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// PluginsConfig holds plugin system configuration
type PluginsConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// Dir is scanned for plugin.json manifests.
	Dir string `json:"dir" mapstructure:"dir"`
	// AutoTag enables the builtin plugin that tags new bookmarks with
	// their host name.
	AutoTag bool `json:"auto_tag" mapstructure:"auto_tag"`
}

// ShellConfig holds interactive prompt configuration
type ShellConfig struct {
	Prompt      string `json:"prompt" mapstructure:"prompt"`
	HistoryFile string `json:"history_file" mapstructure:"history_file"`
	// Browser is the command used to open bookmarks; empty picks the
	// platform opener.
	Browser string `json:"browser" mapstructure:"browser"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	MaxSize   int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge    int    `json:"max_age" mapstructure:"max_age"`   // days
	Compress  bool   `json:"compress" mapstructure:"compress"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		DB: DBConfig{
			RetainOrder: false,
		},
		Fetch: FetchConfig{
			Enabled:        true,
			TimeoutSeconds: 15,
		},
		Plugins: PluginsConfig{
			Enabled: false,
			AutoTag: false,
		},
		Shell: ShellConfig{
			Prompt: "marque (? for help) ",
		},
		Logging: LoggingConfig{
			Level:     "warn",
			MaxSize:   10,
			MaxAge:    30,
			Compress:  true,
			Redaction: true,
		},
		DataDir: "",
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DB.Path) == "" {
		return fmt.Errorf("db path is required")
	}

	if c.Fetch.TimeoutSeconds < 0 {
		return fmt.Errorf("fetch timeout_seconds must be >= 0")
	}

	if c.Plugins.Enabled && strings.TrimSpace(c.Plugins.Dir) == "" {
		return fmt.Errorf("plugins dir is required when plugins are enabled")
	}

	if c.Logging.Level != "" {
		if err := NewValidator().ValidateLogLevel(c.Logging.Level); err != nil {
			return err
		}
	}

	return nil
}
