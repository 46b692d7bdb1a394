package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/averin/marque/pkg/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockAndUnlock(t *testing.T) {
	env := newTestEnv(t)
	dbPath := filepath.Join(filepath.Dir(env), "bookmarks.db")

	_, err := runCLI(t, env, "add", "https://go.dev", "--title", "Go")
	require.NoError(t, err)

	// Low iteration count keeps the key derivation fast here.
	out, err := runCLI(t, env, "lock", "--passphrase", "hunter2", "--iterations", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "database locked into "+dbPath+".vault")

	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(dbPath + ".vault")
	require.NoError(t, err)

	_, err = runCLI(t, env, "unlock", "--passphrase", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, vault.ErrWrongPassword)

	out, err = runCLI(t, env, "unlock", "--passphrase", "hunter2")
	require.NoError(t, err)
	assert.Contains(t, out, "database unlocked into "+dbPath)

	_, err = os.Stat(dbPath + ".vault")
	assert.True(t, os.IsNotExist(err))

	out, err = runCLI(t, env, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Go")
}

func TestLockWithoutDatabase(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, "lock", "--passphrase", "hunter2", "--iterations", "1000")
	assert.Error(t, err)
}

func TestLockToExplicitVaultPath(t *testing.T) {
	env := newTestEnv(t)

	_, err := runCLI(t, env, "add", "https://go.dev")
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "backup.vault")
	out, err := runCLI(t, env, "lock",
		"--passphrase", "hunter2", "--iterations", "1000", "--vault", target)
	require.NoError(t, err)
	assert.Contains(t, out, "database locked into "+target)

	_, err = os.Stat(target)
	require.NoError(t, err)
}
