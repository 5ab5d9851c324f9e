// Package passkey stores and checks the editor access secret.
// Only a hex SHA-256 digest is ever written to disk.
package passkey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/twiced-technology-gmbh/taskwatch/internal/clierr"
)

const (
	// FileName is the passkey digest file kept beside the config.
	FileName = "passkey.txt"

	// DefaultSecret authenticates a fresh setup that has never stored
	// a passkey. The editor forces a reset right after the first login
	// with it.
	DefaultSecret = "taskwatch"

	// MinLength is the shortest accepted passkey.
	MinLength = 5

	fileMode = 0o600
)

// Store reads and writes the hashed passkey for one taskwatch directory.
type Store struct {
	dir string
}

// NewStore returns a passkey store rooted at the taskwatch directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, FileName)
}

// Exists reports whether a passkey has ever been set.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path())
	return err == nil
}

// Verify checks secret against the stored digest. When no digest is
// stored yet, the well-known default secret authenticates.
func (s *Store) Verify(secret string) (bool, error) {
	data, err := os.ReadFile(s.path()) //nolint:gosec // passkey path from trusted taskwatch dir
	if err != nil {
		if os.IsNotExist(err) {
			return secret == DefaultSecret, nil
		}
		return false, fmt.Errorf("reading passkey file: %w", err)
	}
	return hash(secret) == strings.TrimSpace(string(data)), nil
}

// Set validates and stores a new passkey digest.
func (s *Store) Set(secret string) error {
	if len(secret) < MinLength {
		return clierr.Newf(clierr.InvalidInput,
			"passkey must be at least %d characters", MinLength)
	}
	if err := os.WriteFile(s.path(), []byte(hash(secret)+"\n"), fileMode); err != nil {
		return fmt.Errorf("writing passkey file: %w", err)
	}
	return nil
}

func hash(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
