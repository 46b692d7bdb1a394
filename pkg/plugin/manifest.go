package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// pluginNameRegex validates plugin name format (lowercase alphanumeric with hyphens)
	pluginNameRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

	// semverRegex validates semver version format
	semverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

// knownEvents are the mutation events a manifest may subscribe to.
var knownEvents = map[string]bool{
	"pre:add":     true,
	"pre:update":  true,
	"pre:delete":  true,
	"post:add":    true,
	"post:update": true,
	"post:delete": true,
}

// Manifest describes one external plugin: a shell command subscribed to
// mutation events.
type Manifest struct {
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	Description    string   `json:"description,omitempty"`
	Author         string   `json:"author,omitempty"`
	Command        string   `json:"command"`
	Events         []string `json:"events,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty"`
}

// ManifestLoader loads and validates plugin manifests.
type ManifestLoader struct {
	logger       zerolog.Logger
	schemaLoader gojsonschema.JSONLoader
}

// NewManifestLoader creates a manifest loader.
func NewManifestLoader(logger zerolog.Logger) *ManifestLoader {
	return &ManifestLoader{
		logger:       logger.With().Str("component", "manifest-loader").Logger(),
		schemaLoader: gojsonschema.NewStringLoader(ManifestSchema),
	}
}

// LoadManifest loads and validates a plugin manifest from a file.
func (m *ManifestLoader) LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
	}

	if err := m.validateSchema(data); err != nil {
		return nil, fmt.Errorf("manifest schema validation failed: %w", err)
	}

	if err := validateManifest(&manifest); err != nil {
		return nil, fmt.Errorf("manifest validation failed: %w", err)
	}

	m.logger.Debug().
		Str("name", manifest.Name).
		Str("version", manifest.Version).
		Msg("Loaded manifest")

	return &manifest, nil
}

// validateSchema validates the manifest against the JSON schema.
func (m *ManifestLoader) validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(m.schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errMsg string
		for i, err := range result.Errors() {
			if i > 0 {
				errMsg += "; "
			}
			errMsg += err.String()
		}
		return fmt.Errorf("schema validation errors: %s", errMsg)
	}

	return nil
}

// validateManifest performs additional validation beyond the JSON schema.
func validateManifest(manifest *Manifest) error {
	if !pluginNameRegex.MatchString(manifest.Name) {
		return fmt.Errorf("invalid plugin name: %s (must be lowercase alphanumeric with hyphens)", manifest.Name)
	}

	if !semverRegex.MatchString(manifest.Version) {
		return fmt.Errorf("invalid version format: %s (must be semver: X.Y.Z)", manifest.Version)
	}

	if manifest.Command == "" {
		return fmt.Errorf("command cannot be empty")
	}

	for i, event := range manifest.Events {
		if !knownEvents[event] {
			return fmt.Errorf("event %d: unrecognized event: %s", i, event)
		}
	}

	if manifest.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds cannot be negative")
	}

	return nil
}
