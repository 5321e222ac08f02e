// Package securestore is the protected key/value store for secrets.
//
// Values are sealed with AES-GCM under a device sealing key before they are
// written to the secrets table, so the database file alone does not reveal
// the password verifier or the salt. The sealing key is kept in a separate
// 0600 file (see LoadSealingKey).
package securestore

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/nodekeeper/internal/common"
	"github.com/dmitrijs2005/nodekeeper/internal/cryptox"
	"github.com/dmitrijs2005/nodekeeper/internal/filex"
	"github.com/dmitrijs2005/nodekeeper/internal/repositories/kv"
)

// Secure-store keys.
const (
	KeyApplicationPassword = "applicationPassword"
	KeyAuthenticationSalt  = "authenticationSalt"
)

// Store is a restart-durable secret store. Get reports absence through ok.
type Store interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}

// SealedStore implements Store over a kv.Repository, sealing every value.
type SealedStore struct {
	repo kv.Repository
	key  []byte
}

// New binds a SealedStore to repo. sealingKey must be cryptox.KeySize bytes.
func New(repo kv.Repository, sealingKey []byte) *SealedStore {
	return &SealedStore{repo: repo, key: sealingKey}
}

// LoadSealingKey reads the sealing key from path, generating and persisting
// a random one on first use.
func LoadSealingKey(path string) ([]byte, error) {
	raw, err := filex.ReadOrCreate(path, func() []byte {
		return []byte(hex.EncodeToString(common.GenerateRandByteArray(cryptox.KeySize)))
	})
	if err != nil {
		return nil, fmt.Errorf("sealing key: %w", err)
	}

	key, err := hex.DecodeString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("sealing key %s is corrupt: %w", path, err)
	}
	if len(key) != cryptox.KeySize {
		return nil, fmt.Errorf("sealing key %s has length %d, want %d", path, len(key), cryptox.KeySize)
	}
	return key, nil
}

func (s *SealedStore) Set(ctx context.Context, key, value string) error {
	sealed, err := cryptox.Seal([]byte(value), s.key)
	if err != nil {
		return fmt.Errorf("failed to seal %s: %w", key, err)
	}
	return s.repo.Set(ctx, key, sealed)
}

func (s *SealedStore) Get(ctx context.Context, key string) (string, bool, error) {
	sealed, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if sealed == nil {
		return "", false, nil
	}

	plain, err := cryptox.Open(sealed, s.key)
	if err != nil {
		return "", false, fmt.Errorf("failed to open %s: %w", key, err)
	}
	return string(plain), true, nil
}

// Password returns the hex-encoded verifier, or "" if none was ever set.
func (s *SealedStore) Password(ctx context.Context) (string, error) {
	v, _, err := s.Get(ctx, KeyApplicationPassword)
	return v, err
}

// SetPassword stores the hex-encoded verifier.
func (s *SealedStore) SetPassword(ctx context.Context, verifierHex string) error {
	return s.Set(ctx, KeyApplicationPassword, verifierHex)
}

// Salt returns the decoded salt. ok is false when no salt has been stored;
// callers generate a new one in that case.
func (s *SealedStore) Salt(ctx context.Context) (salt []byte, ok bool, err error) {
	v, ok, err := s.Get(ctx, KeyAuthenticationSalt)
	if err != nil || !ok || v == "" {
		return nil, false, err
	}
	salt, err = hex.DecodeString(v)
	if err != nil {
		return nil, false, fmt.Errorf("stored salt is not hex: %w", err)
	}
	return salt, true, nil
}

// SetSalt stores salt hex-encoded.
func (s *SealedStore) SetSalt(ctx context.Context, salt []byte) error {
	return s.Set(ctx, KeyAuthenticationSalt, hex.EncodeToString(salt))
}
