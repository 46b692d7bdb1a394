package plugin

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/averin/marque/pkg/bookmark"
	"github.com/averin/marque/pkg/store"
	"github.com/rs/zerolog"
)

// Script runs an external command for subscribed mutation events. The
// bookmark travels in MARQUE_* environment variables. A non-zero exit
// on a pre event vetoes the mutation; on a post event it is merely
// reported.
type Script struct {
	name    string
	command string
	timeout time.Duration
	events  map[string]bool
	logger  zerolog.Logger
}

// NewScript builds a script plugin from a validated manifest.
func NewScript(manifest *Manifest, logger zerolog.Logger) *Script {
	events := make(map[string]bool, len(manifest.Events))
	for _, event := range manifest.Events {
		events[event] = true
	}
	return &Script{
		name:    manifest.Name,
		command: manifest.Command,
		timeout: time.Duration(manifest.TimeoutSeconds) * time.Second,
		events:  events,
		logger:  logger.With().Str("component", "plugin").Str("plugin", manifest.Name).Logger(),
	}
}

// Name returns the manifest name.
func (p *Script) Name() string { return p.name }

// subscribed reports whether the plugin listens for event. An empty
// subscription list means every event.
func (p *Script) subscribed(event string) bool {
	return len(p.events) == 0 || p.events[event]
}

func eventName(phase string, op store.Op) string {
	return phase + ":" + strings.ToLower(string(op))
}

// PreMutate runs the command for pre events. Failure vetoes the
// mutation, with the command's output as the reason when it printed
// one.
func (p *Script) PreMutate(ctx context.Context, op store.Op, b *bookmark.Bookmark) error {
	event := eventName("pre", op)
	if !p.subscribed(event) {
		return nil
	}

	output, err := p.run(ctx, event, *b)
	if err != nil {
		if output != "" {
			return fmt.Errorf("%w: %s", ErrVetoed, output)
		}
		return fmt.Errorf("%w: %v", ErrVetoed, err)
	}
	return nil
}

// PostMutate runs the command for post events.
func (p *Script) PostMutate(ctx context.Context, op store.Op, b bookmark.Bookmark) error {
	event := eventName("post", op)
	if !p.subscribed(event) {
		return nil
	}

	_, err := p.run(ctx, event, b)
	return err
}

func (p *Script) run(ctx context.Context, event string, b bookmark.Bookmark) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	runCtx := ctx
	cancel := func() {}
	if p.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, p.timeout)
	}
	defer cancel()

	cmd := exec.CommandContext(runCtx, "/bin/sh", "-c", p.command)
	cmd.Env = append(os.Environ(),
		"MARQUE_EVENT="+event,
		fmt.Sprintf("MARQUE_BOOKMARK_ID=%d", b.ID),
		"MARQUE_BOOKMARK_URL="+b.URL,
		"MARQUE_BOOKMARK_TITLE="+b.Title,
		"MARQUE_BOOKMARK_TAGS="+b.Tags,
		"MARQUE_BOOKMARK_DESC="+b.Description,
	)

	output, err := cmd.CombinedOutput()
	text := strings.TrimSpace(string(output))
	if err != nil {
		return text, err
	}

	if text != "" {
		p.logger.Debug().Str("event", event).Str("output", text).Msg("Plugin executed")
	}
	return text, nil
}
