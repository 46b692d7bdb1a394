// Package vault locks the catalogue database behind a password. A
// locked database becomes a single encrypted vault file; unlocking
// restores the original bytes and removes the vault.
//
// The vault format is a small header (magic, KDF iteration count,
// salt) followed by AES-GCM sealed chunks. Each chunk's index rides
// along as additional data, so chunks cannot be dropped or reordered
// without detection, and the last chunk is marked final so truncation
// is caught too.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/pbkdf2"
)

var (
	// ErrWrongPassword indicates a chunk failed authentication, which
	// a bad password and a tampered vault both cause.
	ErrWrongPassword = errors.New("wrong password or tampered vault")
	// ErrCorrupted indicates the vault's structure is broken.
	ErrCorrupted = errors.New("vault file is corrupted")
	// ErrNotVault indicates the file does not carry the vault magic.
	ErrNotVault = errors.New("not a vault file")
)

const (
	// DefaultIterations is the PBKDF2 iteration count used when the
	// caller does not choose one.
	DefaultIterations = 600_000

	defaultChunkSize = 512 << 10
	maxChunkSize     = 16 << 20

	magicLen = 8
	saltLen  = 32
	keyLen   = 32
)

// vaultMagic opens every vault file.
var vaultMagic = [magicLen]byte{'M', 'A', 'R', 'Q', 'U', 'E', 'V', '1'}

// Config configures a Vault.
type Config struct {
	// Iterations is the PBKDF2 iteration count for new vaults.
	Iterations int
	// ChunkSize is the plaintext bytes sealed per chunk.
	ChunkSize int
	Logger    zerolog.Logger
}

// Vault encrypts and decrypts database files.
type Vault struct {
	iterations int
	chunkSize  int
	logger     zerolog.Logger
}

// New creates a Vault.
func New(cfg Config) *Vault {
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultIterations
	}
	if cfg.ChunkSize <= 0 || cfg.ChunkSize > maxChunkSize {
		cfg.ChunkSize = defaultChunkSize
	}
	return &Vault{
		iterations: cfg.Iterations,
		chunkSize:  cfg.ChunkSize,
		logger:     cfg.Logger.With().Str("component", "vault").Logger(),
	}
}

// Lock encrypts dbPath into vaultPath and removes the plaintext file.
func (v *Vault) Lock(dbPath, vaultPath, password string) error {
	if password == "" {
		return errors.New("password is required")
	}

	in, err := os.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer in.Close()

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := newSealer(password, salt, v.iterations)
	if err != nil {
		return err
	}

	tmp := vaultPath + ".tmp"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create vault: %w", err)
	}
	defer func() {
		out.Close()
		os.Remove(tmp)
	}()

	if err := writeHeader(out, v.iterations, salt); err != nil {
		return err
	}
	if err := sealChunks(out, in, gcm, v.chunkSize); err != nil {
		return err
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finish vault: %w", err)
	}
	if err := os.Rename(tmp, vaultPath); err != nil {
		return fmt.Errorf("failed to place vault: %w", err)
	}
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("vault written but database not removed: %w", err)
	}

	v.logger.Info().Str("db", dbPath).Str("vault", vaultPath).Msg("database locked")
	return nil
}

// Unlock decrypts vaultPath into dbPath and removes the vault file.
func (v *Vault) Unlock(vaultPath, dbPath, password string) error {
	if password == "" {
		return errors.New("password is required")
	}

	in, err := os.Open(vaultPath)
	if err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}
	defer in.Close()

	iterations, salt, err := readHeader(in)
	if err != nil {
		return err
	}

	gcm, err := newSealer(password, salt, iterations)
	if err != nil {
		return err
	}

	tmp := dbPath + ".tmp"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer func() {
		out.Close()
		os.Remove(tmp)
	}()

	if err := openChunks(out, in, gcm); err != nil {
		return err
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finish database: %w", err)
	}
	if err := os.Rename(tmp, dbPath); err != nil {
		return fmt.Errorf("failed to place database: %w", err)
	}
	if err := os.Remove(vaultPath); err != nil {
		return fmt.Errorf("database restored but vault not removed: %w", err)
	}

	v.logger.Info().Str("db", dbPath).Str("vault", vaultPath).Msg("database unlocked")
	return nil
}

// newSealer derives the key and builds the AEAD.
func newSealer(password string, salt []byte, iterations int) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, iterations, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to build cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to build gcm: %w", err)
	}
	return gcm, nil
}

func writeHeader(w io.Writer, iterations int, salt []byte) error {
	if _, err := w.Write(vaultMagic[:]); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(iterations)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(salt); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

func readHeader(r io.Reader) (int, []byte, error) {
	var magic [magicLen]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrNotVault, err)
	}
	if magic != vaultMagic {
		return 0, nil, ErrNotVault
	}

	var iterations uint32
	if err := binary.Read(r, binary.BigEndian, &iterations); err != nil {
		return 0, nil, fmt.Errorf("%w: short header", ErrCorrupted)
	}
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(r, salt); err != nil {
		return 0, nil, fmt.Errorf("%w: short header", ErrCorrupted)
	}
	return int(iterations), salt, nil
}

// chunkAAD binds a chunk to its position and tells the last chunk
// apart from the rest.
func chunkAAD(index uint64, final bool) []byte {
	aad := make([]byte, 9)
	binary.BigEndian.PutUint64(aad, index)
	if final {
		aad[8] = 1
	}
	return aad
}

// sealChunks encrypts the plaintext stream chunk by chunk. The last
// chunk, which may be empty, is sealed with the final marker.
func sealChunks(w io.Writer, r io.Reader, gcm cipher.AEAD, chunkSize int) error {
	buf := make([]byte, chunkSize)
	var index uint64
	var pending []byte
	pendingSet := false

	flush := func(chunk []byte, final bool) error {
		nonce := make([]byte, gcm.NonceSize())
		if _, err := rand.Read(nonce); err != nil {
			return fmt.Errorf("failed to generate nonce: %w", err)
		}
		sealed := gcm.Seal(nil, nonce, chunk, chunkAAD(index, final))
		if err := binary.Write(w, binary.BigEndian, uint32(len(sealed))); err != nil {
			return fmt.Errorf("failed to write chunk: %w", err)
		}
		if _, err := w.Write(nonce); err != nil {
			return fmt.Errorf("failed to write chunk: %w", err)
		}
		if _, err := w.Write(sealed); err != nil {
			return fmt.Errorf("failed to write chunk: %w", err)
		}
		index++
		return nil
	}

	for {
		n, err := io.ReadFull(r, buf)
		if err == io.EOF {
			break
		}
		if err != nil && err != io.ErrUnexpectedEOF {
			return fmt.Errorf("failed to read database: %w", err)
		}

		if pendingSet {
			if flushErr := flush(pending, false); flushErr != nil {
				return flushErr
			}
		}
		pending = append(pending[:0], buf[:n]...)
		pendingSet = true

		if err == io.ErrUnexpectedEOF {
			break
		}
	}

	if !pendingSet {
		pending = []byte{}
	}
	return flush(pending, true)
}

// openChunks decrypts the chunk stream, stopping at the final chunk.
func openChunks(w io.Writer, r io.Reader, gcm cipher.AEAD) error {
	var index uint64
	for {
		var sealedLen uint32
		if err := binary.Read(r, binary.BigEndian, &sealedLen); err != nil {
			if err == io.EOF {
				return fmt.Errorf("%w: vault ends before its final chunk", ErrCorrupted)
			}
			return fmt.Errorf("%w: broken chunk header", ErrCorrupted)
		}
		if int(sealedLen) < gcm.Overhead() || int(sealedLen) > maxChunkSize+gcm.Overhead() {
			return fmt.Errorf("%w: implausible chunk size %d", ErrCorrupted, sealedLen)
		}

		nonce := make([]byte, gcm.NonceSize())
		if _, err := io.ReadFull(r, nonce); err != nil {
			return fmt.Errorf("%w: short chunk", ErrCorrupted)
		}
		sealed := make([]byte, sealedLen)
		if _, err := io.ReadFull(r, sealed); err != nil {
			return fmt.Errorf("%w: short chunk", ErrCorrupted)
		}

		chunk, err := gcm.Open(nil, nonce, sealed, chunkAAD(index, false))
		if err != nil {
			chunk, err = gcm.Open(nil, nonce, sealed, chunkAAD(index, true))
			if err != nil {
				return ErrWrongPassword
			}
			if _, err := w.Write(chunk); err != nil {
				return fmt.Errorf("failed to write database: %w", err)
			}
			var trailing [1]byte
			if _, err := r.Read(trailing[:]); err != io.EOF {
				return fmt.Errorf("%w: data after final chunk", ErrCorrupted)
			}
			return nil
		}

		if _, err := w.Write(chunk); err != nil {
			return fmt.Errorf("failed to write database: %w", err)
		}
		index++
	}
}
