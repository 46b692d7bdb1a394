// Package plugin extends mutations with pluggable behavior. A Registry
// satisfies the store's hook contract and fans callbacks out to every
// registered plugin: pre-mutation plugins may rewrite the pending
// bookmark or veto the command, post-mutation plugins observe what was
// committed.
//
// Plugins that rewrite Tags must keep the delimiter-wrapped canonical
// form; bookmark.CanonicalTags does that.
package plugin

import (
	"context"
	"errors"

	"github.com/averin/marque/pkg/bookmark"
	"github.com/averin/marque/pkg/store"
)

// ErrVetoed marks a mutation rejected by a pre-mutation plugin.
var ErrVetoed = errors.New("mutation vetoed")

// Plugin is one extension point. PreMutate runs before anything is
// written and may modify b in place; returning an error cancels the
// whole command. PostMutate runs after commit; its error is logged by
// the registry, never surfaced to the caller.
type Plugin interface {
	Name() string
	PreMutate(ctx context.Context, op store.Op, b *bookmark.Bookmark) error
	PostMutate(ctx context.Context, op store.Op, b bookmark.Bookmark) error
}
