package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Wizard provides an interactive first-run configuration dialog.
type Wizard struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewWizard creates a new configuration wizard reading from stdin.
func NewWizard() *Wizard {
	return &Wizard{
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// Run walks through the settings that matter on first run and returns
// the resulting config.
func (w *Wizard) Run() (*Config, error) {
	fmt.Fprintln(w.out, "=== marque setup ===")
	fmt.Fprintln(w.out)

	cfg := DefaultConfig()
	validator := NewValidator()

	// Database location
	fmt.Fprint(w.out, "Database path (press Enter for the default): ")
	path, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := validator.ValidateDBPath(path); err != nil {
			return nil, err
		}
		cfg.DB.Path = path
	}

	// Id compaction
	fmt.Fprint(w.out, "Keep id gaps after deletes? (y/n) [n]: ")
	retain, err := w.readLine()
	if err != nil {
		return nil, err
	}
	cfg.DB.RetainOrder = strings.EqualFold(retain, "y")

	fmt.Fprintln(w.out)

	// Title fetching
	fmt.Fprint(w.out, "Fetch page titles when adding bookmarks? (y/n) [y]: ")
	fetch, err := w.readLine()
	if err != nil {
		return nil, err
	}
	cfg.Fetch.Enabled = fetch == "" || strings.EqualFold(fetch, "y")

	// Plugins
	fmt.Fprint(w.out, "Enable plugins? (y/n) [n]: ")
	plugins, err := w.readLine()
	if err != nil {
		return nil, err
	}
	cfg.Plugins.Enabled = strings.EqualFold(plugins, "y")

	if cfg.Plugins.Enabled {
		fmt.Fprint(w.out, "Tag new bookmarks with their host name? (y/n) [y]: ")
		autotag, err := w.readLine()
		if err != nil {
			return nil, err
		}
		cfg.Plugins.AutoTag = autotag == "" || strings.EqualFold(autotag, "y")
	}

	fmt.Fprintln(w.out)

	// Log level
	fmt.Fprint(w.out, "Log level (debug/info/warn/error) [warn]: ")
	level, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if level != "" {
		if err := validator.ValidateLogLevel(level); err != nil {
			fmt.Fprintf(w.out, "Warning: %v, using default (warn)\n", err)
		} else {
			cfg.Logging.Level = level
		}
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "Configuration complete.")

	return cfg, nil
}

func (w *Wizard) readLine() (string, error) {
	line, err := w.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
