package cli

import (
	"testing"

	"github.com/averin/marque/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndList(t *testing.T) {
	env := newTestEnv(t)

	out, err := runCLI(t, env, "add", "https://go.dev", "--title", "The Go site", "--tags", "go,docs", "--desc", "language home")
	require.NoError(t, err)
	assert.Contains(t, out, "1. The Go site")
	assert.Contains(t, out, "> https://go.dev")
	assert.Contains(t, out, "+ language home")
	assert.Contains(t, out, "# docs,go")

	out, err = runCLI(t, env, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1. The Go site")
}

func TestAddDuplicateURL(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, "add", "https://go.dev", "--title", "first")
	require.NoError(t, err)

	_, err = runCLI(t, env, "add", "https://go.dev", "--title", "second")
	assert.ErrorIs(t, err, store.ErrDuplicateURL)
}

func TestAddFlagMarkers(t *testing.T) {
	env := newTestEnv(t)

	out, err := runCLI(t, env, "add", "https://secret.example", "--title", "Secret", "--private", "--immutable")
	require.NoError(t, err)
	assert.Contains(t, out, "(private)")
	assert.Contains(t, out, "(immutable)")
}

func TestAddUntitledFallback(t *testing.T) {
	env := newTestEnv(t)

	// Fetching is disabled in the test config, so no title appears.
	out, err := runCLI(t, env, "add", "https://bare.example")
	require.NoError(t, err)
	assert.Contains(t, out, "1. (untitled)")
}

func TestShow(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, "add", "https://go.dev", "--title", "Go")
	require.NoError(t, err)

	out, err := runCLI(t, env, "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Go")

	_, err = runCLI(t, env, "show", "42")
	assert.ErrorIs(t, err, store.ErrNoSuchID)

	_, err = runCLI(t, env, "show", "abc")
	assert.Error(t, err)
}
