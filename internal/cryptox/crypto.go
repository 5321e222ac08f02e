// Package cryptox holds the cryptographic helpers used by nodekeeper:
// password-verifier derivation and AES-GCM sealing of secrets at rest.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/nodekeeper/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// DerivationRounds is the PBKDF2 iteration count for password verifiers.
	DerivationRounds = 2000
	// SaltSize is the size of a freshly generated authentication salt.
	SaltSize = 32
	// KeySize is the length of derived verifiers and of sealing keys.
	KeySize = 32
)

var ErrSealedTooShort = errors.New("sealed value too short")

// DeriveKey runs PBKDF2-HMAC-SHA256 over password and salt. The same
// (password, salt, rounds) triple always yields the same KeySize bytes.
//
// An empty salt or a non-positive round count is rejected with
// common.ErrDerivationFailure.
func DeriveKey(password, salt []byte, rounds int) ([]byte, error) {
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: empty salt", common.ErrDerivationFailure)
	}
	if rounds < 1 {
		return nil, fmt.Errorf("%w: invalid round count %d", common.ErrDerivationFailure, rounds)
	}
	return pbkdf2.Key(password, salt, rounds, KeySize, sha256.New), nil
}

// Verify re-derives a key from password and salt and compares it with
// expected in constant time.
func Verify(password, salt []byte, rounds int, expected []byte) (bool, error) {
	candidate, err := DeriveKey(password, salt, rounds)
	if err != nil {
		return false, err
	}
	defer common.WipeByteArray(candidate)
	return subtle.ConstantTimeCompare(candidate, expected) == 1, nil
}

// Seal encrypts plaintext with AES-GCM under key. The random nonce is
// prepended to the returned ciphertext.
//
// The key must be a valid AES key length (16, 24, or 32 bytes).
func Seal(plaintext, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())

	out := make([]byte, 0, len(nonce)+len(plaintext)+aesgcm.Overhead())
	out = append(out, nonce...)
	return aesgcm.Seal(out, nonce, plaintext, nil), nil
}

// Open reverses Seal. It fails if the value was tampered with or sealed
// under a different key.
func Open(sealed, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ns := aesgcm.NonceSize()
	if len(sealed) < ns {
		return nil, ErrSealedTooShort
	}

	return aesgcm.Open(nil, sealed[:ns], sealed[ns:], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
