package config

import (
	"fmt"
	"os"
	"strings"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"trace", "debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateDBPath validates the database file path
func (v *Validator) ValidateDBPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("db path cannot be empty")
	}

	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return fmt.Errorf("db path %s is a directory", path)
	}

	return nil
}

// ValidateTimeout validates a timeout in seconds
func (v *Validator) ValidateTimeout(seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("timeout must be >= 0, got %d", seconds)
	}
	return nil
}

// ValidatePluginDir validates the plugin directory when plugins are
// enabled. A missing directory is fine; discovery treats it as empty.
func (v *Validator) ValidatePluginDir(enabled bool, dir string) error {
	if !enabled {
		return nil
	}
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("plugins dir is required when plugins are enabled")
	}

	info, err := os.Stat(dir)
	if err == nil && !info.IsDir() {
		return fmt.Errorf("plugins dir %s is not a directory", dir)
	}

	return nil
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if err := v.ValidateDBPath(cfg.DB.Path); err != nil {
		errors = append(errors, err)
	}

	if err := v.ValidateTimeout(cfg.Fetch.TimeoutSeconds); err != nil {
		errors = append(errors, fmt.Errorf("fetch: %w", err))
	}

	if err := v.ValidatePluginDir(cfg.Plugins.Enabled, cfg.Plugins.Dir); err != nil {
		errors = append(errors, err)
	}

	if cfg.Logging.Level != "" {
		if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
			errors = append(errors, err)
		}
	}
	if cfg.Logging.MaxSize < 0 {
		errors = append(errors, fmt.Errorf("logging max_size must be >= 0"))
	}
	if cfg.Logging.MaxAge < 0 {
		errors = append(errors, fmt.Errorf("logging max_age must be >= 0"))
	}

	return errors
}
