package plugin

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// manifestFileName is the file each plugin directory must contain.
const manifestFileName = "plugin.json"

// Discovered is one plugin found on disk, not yet loaded.
type Discovered struct {
	Name         string
	Path         string
	ManifestPath string
}

// Discovery scans a plugin directory for plugins.
type Discovery struct {
	logger zerolog.Logger
}

// NewDiscovery creates a plugin discovery instance.
func NewDiscovery(logger zerolog.Logger) *Discovery {
	return &Discovery{
		logger: logger.With().Str("component", "plugin-discovery").Logger(),
	}
}

// Discover scans dir for subdirectories containing a plugin manifest.
// A missing directory is not an error; it just yields nothing.
func (d *Discovery) Discover(dir string) ([]Discovered, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			d.logger.Debug().Str("dir", dir).Msg("Plugin directory does not exist, skipping")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var discovered []Discovered
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginDir := filepath.Join(dir, entry.Name())
		manifestPath := filepath.Join(pluginDir, manifestFileName)
		if _, err := os.Stat(manifestPath); err != nil {
			if os.IsNotExist(err) {
				d.logger.Debug().Str("dir", pluginDir).Msg("No manifest, skipping")
				continue
			}
			d.logger.Warn().Err(err).Str("dir", pluginDir).Msg("Failed to check for manifest")
			continue
		}

		discovered = append(discovered, Discovered{
			Name:         entry.Name(),
			Path:         pluginDir,
			ManifestPath: manifestPath,
		})
		d.logger.Debug().Str("name", entry.Name()).Str("path", pluginDir).Msg("Discovered plugin")
	}

	return discovered, nil
}

// LoadDirectory discovers, validates and instantiates every script
// plugin under dir. A plugin with a broken manifest is skipped with a
// warning rather than failing the whole set.
func LoadDirectory(dir string, logger zerolog.Logger) ([]Plugin, error) {
	discovered, err := NewDiscovery(logger).Discover(dir)
	if err != nil {
		return nil, err
	}

	loader := NewManifestLoader(logger)
	plugins := make([]Plugin, 0, len(discovered))
	for _, found := range discovered {
		manifest, err := loader.LoadManifest(found.ManifestPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", found.ManifestPath).Msg("Skipping plugin with invalid manifest")
			continue
		}
		plugins = append(plugins, NewScript(manifest, logger))
	}
	return plugins, nil
}
