package plugin

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/averin/marque/pkg/bookmark"
	"github.com/averin/marque/pkg/store"
	"github.com/rs/zerolog"
)

// Config configures a plugin Registry.
type Config struct {
	Enabled bool
	Plugins []Plugin
	Logger  zerolog.Logger
}

// Registry dispatches mutation callbacks to registered plugins in
// registration order. It satisfies the store's hook contract.
type Registry struct {
	enabled bool
	logger  zerolog.Logger

	mu      sync.RWMutex
	plugins []Plugin
}

// NewRegistry creates a registry and registers the configured plugins.
func NewRegistry(cfg Config) (*Registry, error) {
	registry := &Registry{
		enabled: cfg.Enabled,
		logger:  cfg.Logger.With().Str("component", "plugin").Logger(),
	}

	if !cfg.Enabled {
		return registry, nil
	}

	for _, p := range cfg.Plugins {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register appends a plugin. Names must be unique.
func (r *Registry) Register(p Plugin) error {
	if p == nil {
		return fmt.Errorf("plugin is nil")
	}
	name := strings.TrimSpace(p.Name())
	if name == "" {
		return fmt.Errorf("plugin name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.plugins {
		if existing.Name() == name {
			return fmt.Errorf("plugin %q already registered", name)
		}
	}
	r.plugins = append(r.plugins, p)
	return nil
}

// Names lists the registered plugins in dispatch order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.plugins))
	for _, p := range r.plugins {
		names = append(names, p.Name())
	}
	return names
}

func (r *Registry) snapshot() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Plugin(nil), r.plugins...)
}

// PreMutate runs every plugin's pre hook in order. The first error
// aborts the chain, and with it the mutation.
func (r *Registry) PreMutate(ctx context.Context, op store.Op, b *bookmark.Bookmark) error {
	if r == nil || !r.enabled {
		return nil
	}
	for _, p := range r.snapshot() {
		if err := p.PreMutate(ctx, op, b); err != nil {
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
	}
	return nil
}

// PostMutate runs every plugin's post hook. The mutation is already
// committed, so plugin failures are logged and swallowed.
func (r *Registry) PostMutate(ctx context.Context, op store.Op, b bookmark.Bookmark) {
	if r == nil || !r.enabled {
		return
	}
	for _, p := range r.snapshot() {
		if err := p.PostMutate(ctx, op, b); err != nil {
			r.logger.Warn().
				Str("plugin", p.Name()).
				Str("operation", string(op)).
				Int64("id", b.ID).
				Err(err).
				Msg("post-mutation plugin failed")
		}
	}
}
