package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, "add", "https://go.dev",
		"--title", "Go", "--tags", "go,docs", "--desc", "language home")
	require.NoError(t, err)
	_, err = runCLI(t, env, "add", "https://intranet.example/wiki",
		"--title", "Team wiki", "--private")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "bookmarks.json")
	out, err := runCLI(t, env, "export", file)
	require.NoError(t, err)
	assert.Contains(t, out, "2 exported to "+file)

	// A fresh catalogue takes everything, flags and tags intact.
	other := newTestEnv(t)
	out, err = runCLI(t, other, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "2 imported, 0 skipped")

	out, err = runCLI(t, other, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Go")
	assert.Contains(t, out, "# docs,go")
	assert.Contains(t, out, "+ language home")
	assert.Contains(t, out, "2. Team wiki (private)")
}

func TestImportSkipsKnownURLs(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, "add", "https://go.dev", "--title", "Go")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "bookmarks.json")
	_, err = runCLI(t, env, "export", file)
	require.NoError(t, err)

	out, err := runCLI(t, env, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "0 imported, 1 skipped")
}

func TestImportUndoesAsOneUnit(t *testing.T) {
	env := newTestEnv(t)
	for _, url := range []string{"https://a.example", "https://b.example", "https://c.example"} {
		_, err := runCLI(t, env, "add", url)
		require.NoError(t, err)
	}
	file := filepath.Join(t.TempDir(), "bookmarks.json")
	_, err := runCLI(t, env, "export", file)
	require.NoError(t, err)

	other := newTestEnv(t)
	_, err = runCLI(t, other, "import", file)
	require.NoError(t, err)

	out, err := runCLI(t, other, "undo")
	require.NoError(t, err)
	assert.Contains(t, out, "undid add of 3 bookmark(s)")

	out, err = runCLI(t, other, "list")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestImportEmptyFile(t *testing.T) {
	env := newTestEnv(t)

	file := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(file, []byte("[]"), 0o644))

	out, err := runCLI(t, env, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to import")
}

func TestExportNetscapeThenImport(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, "add", "https://go.dev", "--title", "Go", "--tags", "go")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "bookmarks.html")
	_, err = runCLI(t, env, "export", file)
	require.NoError(t, err)

	other := newTestEnv(t)
	out, err := runCLI(t, other, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "1 imported, 0 skipped")

	out, err = runCLI(t, other, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Go")
	assert.Contains(t, out, "> https://go.dev")
}

func TestImportUnknownExtension(t *testing.T) {
	env := newTestEnv(t)

	file := filepath.Join(t.TempDir(), "bookmarks.xml")
	require.NoError(t, os.WriteFile(file, []byte("<x/>"), 0o644))

	_, err := runCLI(t, env, "import", file)
	assert.Error(t, err)
}
