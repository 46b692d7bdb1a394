package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/averin/marque/pkg/bookmark"
	"github.com/averin/marque/pkg/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlugin struct {
	name    string
	preErr  error
	postErr error
	rewrite func(*bookmark.Bookmark)
	calls   *[]string
}

func (f *fakePlugin) Name() string { return f.name }

func (f *fakePlugin) PreMutate(_ context.Context, _ store.Op, b *bookmark.Bookmark) error {
	*f.calls = append(*f.calls, f.name+":pre")
	if f.rewrite != nil {
		f.rewrite(b)
	}
	return f.preErr
}

func (f *fakePlugin) PostMutate(context.Context, store.Op, bookmark.Bookmark) error {
	*f.calls = append(*f.calls, f.name+":post")
	return f.postErr
}

func newTestRegistry(t *testing.T, plugins ...Plugin) *Registry {
	t.Helper()

	registry, err := NewRegistry(Config{
		Enabled: true,
		Plugins: plugins,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	return registry
}

func TestRegistryDispatchesInRegistrationOrder(t *testing.T) {
	var calls []string
	registry := newTestRegistry(t,
		&fakePlugin{name: "first", calls: &calls},
		&fakePlugin{name: "second", calls: &calls},
	)

	b := bookmark.Bookmark{URL: "https://go.dev"}
	require.NoError(t, registry.PreMutate(context.Background(), store.OpAdd, &b))
	registry.PostMutate(context.Background(), store.OpAdd, b)

	assert.Equal(t, []string{"first:pre", "second:pre", "first:post", "second:post"}, calls)
	assert.Equal(t, []string{"first", "second"}, registry.Names())
}

func TestRegistryVetoStopsChain(t *testing.T) {
	veto := errors.New("blocked")
	var calls []string
	registry := newTestRegistry(t,
		&fakePlugin{name: "gate", calls: &calls, preErr: veto},
		&fakePlugin{name: "never", calls: &calls},
	)

	b := bookmark.Bookmark{URL: "https://go.dev"}
	err := registry.PreMutate(context.Background(), store.OpAdd, &b)
	assert.ErrorIs(t, err, veto)
	assert.Contains(t, err.Error(), "gate")
	assert.Equal(t, []string{"gate:pre"}, calls)
}

func TestRegistryPreMayRewriteBookmark(t *testing.T) {
	var calls []string
	registry := newTestRegistry(t, &fakePlugin{
		name:  "rewriter",
		calls: &calls,
		rewrite: func(b *bookmark.Bookmark) {
			b.Title = "rewritten"
		},
	})

	b := bookmark.Bookmark{URL: "https://go.dev", Title: "original"}
	require.NoError(t, registry.PreMutate(context.Background(), store.OpUpdate, &b))
	assert.Equal(t, "rewritten", b.Title)
}

func TestRegistrySwallowsPostErrors(t *testing.T) {
	var calls []string
	registry := newTestRegistry(t,
		&fakePlugin{name: "broken", calls: &calls, postErr: errors.New("boom")},
		&fakePlugin{name: "healthy", calls: &calls},
	)

	registry.PostMutate(context.Background(), store.OpDelete, bookmark.Bookmark{ID: 1})
	assert.Equal(t, []string{"broken:post", "healthy:post"}, calls)
}

func TestRegistryDisabledDispatchesNothing(t *testing.T) {
	var calls []string
	registry, err := NewRegistry(Config{
		Enabled: false,
		Plugins: []Plugin{&fakePlugin{name: "idle", calls: &calls}},
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)

	b := bookmark.Bookmark{URL: "https://go.dev"}
	require.NoError(t, registry.PreMutate(context.Background(), store.OpAdd, &b))
	registry.PostMutate(context.Background(), store.OpAdd, b)
	assert.Empty(t, calls)
}

func TestRegistryRegisterValidation(t *testing.T) {
	var calls []string
	registry := newTestRegistry(t)

	t.Run("rejects nil plugin", func(t *testing.T) {
		assert.Error(t, registry.Register(nil))
	})

	t.Run("rejects blank name", func(t *testing.T) {
		assert.Error(t, registry.Register(&fakePlugin{name: "  ", calls: &calls}))
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		require.NoError(t, registry.Register(&fakePlugin{name: "dup", calls: &calls}))
		assert.Error(t, registry.Register(&fakePlugin{name: "dup", calls: &calls}))
	})
}
