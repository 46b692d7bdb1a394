package cli

import (
	"strings"
	"testing"

	"github.com/averin/marque/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoAdd(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, "add", "https://go.dev", "--title", "Go")
	require.NoError(t, err)

	out, err := runCLI(t, env, "undo")
	require.NoError(t, err)
	assert.Contains(t, out, "undid add of 1 bookmark(s)")

	out, err = runCLI(t, env, "list")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUndoUpdateRestoresFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, "add", "https://go.dev", "--title", "before")
	require.NoError(t, err)
	_, err = runCLI(t, env, "update", "1", "--title", "after")
	require.NoError(t, err)

	out, err := runCLI(t, env, "undo")
	require.NoError(t, err)
	assert.Contains(t, out, "undid update of 1 bookmark(s)")

	out, err = runCLI(t, env, "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "1. before")
}

func TestUndoDeleteRestoresRow(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, "add", "https://go.dev", "--title", "Go")
	require.NoError(t, err)
	_, err = runCLI(t, env, "delete", "1")
	require.NoError(t, err)

	out, err := runCLI(t, env, "undo")
	require.NoError(t, err)
	assert.Contains(t, out, "undid delete of 1 bookmark(s)")

	out, err = runCLI(t, env, "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Go")
}

func TestUndoDeleteReportsRemap(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, "add", "https://a.example", "--title", "first")
	require.NoError(t, err)
	_, err = runCLI(t, env, "add", "https://b.example", "--title", "second")
	require.NoError(t, err)

	// Compaction moves "second" into slot 1, so the restore cannot
	// reclaim the original id.
	_, err = runCLI(t, env, "delete", "1")
	require.NoError(t, err)

	out, err := runCLI(t, env, "undo")
	require.NoError(t, err)
	assert.Contains(t, out, "undid delete of 1 bookmark(s)")
	assert.Contains(t, out, "id 1 restored as 2")

	out, err = runCLI(t, env, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1. second")
	assert.Contains(t, out, "2. first")
}

func TestUndoCountWithShortfall(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, "add", "https://a.example")
	require.NoError(t, err)
	_, err = runCLI(t, env, "add", "https://b.example")
	require.NoError(t, err)

	out, err := runCLI(t, env, "undo", "5")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "undid add of 1 bookmark(s)"))
	assert.Contains(t, out, "only 2 of 5 operations undone; the log is empty")
}

func TestUndoEmptyLog(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, "undo")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrEmptyLog)
}

func TestUndoRejectsBadCount(t *testing.T) {
	env := newTestEnv(t)

	for _, arg := range []string{"0", "-2", "many"} {
		_, err := runCLI(t, env, "undo", arg)
		assert.Error(t, err, "count %q", arg)
	}
}
