package vault

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests use a tiny chunk size and a low iteration count so multi-chunk
// paths are exercised without slowing the suite down.
func newTestVault(t *testing.T) *Vault {
	t.Helper()

	return New(Config{
		Iterations: 1000,
		ChunkSize:  32,
		Logger:     zerolog.New(os.Stdout).Level(zerolog.Disabled),
	})
}

func writeTestDB(t *testing.T, size int) (string, []byte) {
	t.Helper()

	data := make([]byte, size)
	_, err := rand.Read(data)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "marque.db")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path, data
}

func TestLockUnlockRoundtrip(t *testing.T) {
	v := newTestVault(t)
	dbPath, want := writeTestDB(t, 100)
	vaultPath := dbPath + ".enc"

	require.NoError(t, v.Lock(dbPath, vaultPath, "hunter2"))

	_, err := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err), "plaintext database should be gone")
	_, err = os.Stat(vaultPath)
	require.NoError(t, err)

	require.NoError(t, v.Unlock(vaultPath, dbPath, "hunter2"))

	_, err = os.Stat(vaultPath)
	assert.True(t, os.IsNotExist(err), "vault file should be gone")

	got, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(want, got))
}

func TestRoundtripSizes(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{name: "empty", size: 0},
		{name: "below one chunk", size: 10},
		{name: "exact chunk multiple", size: 64},
		{name: "several chunks", size: 321},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestVault(t)
			dbPath, want := writeTestDB(t, tt.size)
			vaultPath := dbPath + ".enc"

			require.NoError(t, v.Lock(dbPath, vaultPath, "pw"))
			require.NoError(t, v.Unlock(vaultPath, dbPath, "pw"))

			got, err := os.ReadFile(dbPath)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(want, got))
		})
	}
}

func TestUnlockWrongPassword(t *testing.T) {
	v := newTestVault(t)
	dbPath, _ := writeTestDB(t, 50)
	vaultPath := dbPath + ".enc"
	require.NoError(t, v.Lock(dbPath, vaultPath, "right"))

	err := v.Unlock(vaultPath, dbPath, "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, statErr := os.Stat(vaultPath)
	assert.NoError(t, statErr, "failed unlock must keep the vault")
	_, statErr = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "failed unlock must not leave a database")
}

func TestUnlockTamperedVault(t *testing.T) {
	v := newTestVault(t)
	dbPath, _ := writeTestDB(t, 100)
	vaultPath := dbPath + ".enc"
	require.NoError(t, v.Lock(dbPath, vaultPath, "pw"))

	data, err := os.ReadFile(vaultPath)
	require.NoError(t, err)
	data[len(data)-10] ^= 0xff
	require.NoError(t, os.WriteFile(vaultPath, data, 0o600))

	assert.ErrorIs(t, v.Unlock(vaultPath, dbPath, "pw"), ErrWrongPassword)
}

func TestUnlockTruncatedVault(t *testing.T) {
	v := newTestVault(t)
	dbPath, _ := writeTestDB(t, 100)
	vaultPath := dbPath + ".enc"
	require.NoError(t, v.Lock(dbPath, vaultPath, "pw"))

	data, err := os.ReadFile(vaultPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(vaultPath, data[:len(data)-20], 0o600))

	assert.ErrorIs(t, v.Unlock(vaultPath, dbPath, "pw"), ErrCorrupted)
}

func TestUnlockRejectsForeignFile(t *testing.T) {
	v := newTestVault(t)
	path := filepath.Join(t.TempDir(), "random.bin")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a vault file"), 0o600))

	err := v.Unlock(path, path+".db", "pw")
	assert.ErrorIs(t, err, ErrNotVault)
}

func TestPasswordRequired(t *testing.T) {
	v := newTestVault(t)
	dbPath, _ := writeTestDB(t, 10)

	assert.Error(t, v.Lock(dbPath, dbPath+".enc", ""))
	assert.Error(t, v.Unlock(dbPath+".enc", dbPath, ""))
}

func TestLockMissingDatabase(t *testing.T) {
	v := newTestVault(t)
	missing := filepath.Join(t.TempDir(), "absent.db")
	assert.Error(t, v.Lock(missing, missing+".enc", "pw"))
}

func TestUnlockHonorsStoredIterations(t *testing.T) {
	dbPath, want := writeTestDB(t, 40)
	vaultPath := dbPath + ".enc"

	locker := New(Config{Iterations: 2000, ChunkSize: 32, Logger: zerolog.Nop()})
	require.NoError(t, locker.Lock(dbPath, vaultPath, "pw"))

	// A vault carries its own iteration count, so a differently
	// configured instance can still open it.
	opener := New(Config{Iterations: 7, ChunkSize: 1024, Logger: zerolog.Nop()})
	require.NoError(t, opener.Unlock(vaultPath, dbPath, "pw"))

	got, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(want, got))
}
