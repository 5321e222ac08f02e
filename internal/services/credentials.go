// Package services contains the application services of nodekeeper.
// This file defines the credential service: setting and verifying the
// application password and reporting whether first-run setup is complete.
package services

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/nodekeeper/internal/common"
	"github.com/dmitrijs2005/nodekeeper/internal/cryptox"
	"github.com/dmitrijs2005/nodekeeper/internal/dbx"
	"github.com/dmitrijs2005/nodekeeper/internal/logging"
	"github.com/dmitrijs2005/nodekeeper/internal/models"
	"github.com/dmitrijs2005/nodekeeper/internal/securestore"
	"github.com/dmitrijs2005/nodekeeper/internal/storage"
)

// deriveKey is a seam for testing derivation failures.
var deriveKey = cryptox.DeriveKey

// CredentialService manages the application password.
//
// Contract:
//   - SetPassword: derive a verifier with the stored salt (generating one on
//     first use) and persist salt, verifier and setupStatus=true atomically.
//   - VerifyPassword: re-derive and compare; false when nothing is stored.
//   - IsSetupComplete: report the setupStatus flag.
//   - Credential: the stored salt and verifier, nil when absent.
type CredentialService interface {
	SetPassword(ctx context.Context, password []byte) error
	VerifyPassword(ctx context.Context, password []byte) (bool, error)
	IsSetupComplete(ctx context.Context) (bool, error)
	Credential(ctx context.Context) (*models.Credential, error)
}

type credentialService struct {
	tr         dbx.Transactor
	repos      storage.RepositoryManager
	sealingKey []byte
	logger     logging.Logger
}

// NewCredentialService constructs a CredentialService over the given store.
// sealingKey protects values in the secrets table.
func NewCredentialService(tr dbx.Transactor, repos storage.RepositoryManager, sealingKey []byte, logger logging.Logger) CredentialService {
	return &credentialService{tr: tr, repos: repos, sealingKey: sealingKey, logger: logger}
}

func (s *credentialService) store(db dbx.DBTX) *securestore.SealedStore {
	return securestore.New(s.repos.Secrets(db), s.sealingKey)
}

// SetPassword runs entirely inside one transaction so a failed derivation
// or write leaves neither a new salt nor a new verifier behind.
func (s *credentialService) SetPassword(ctx context.Context, password []byte) error {
	var derivationErr error

	err := s.tr.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		store := s.store(tx)

		salt, ok, err := store.Salt(ctx)
		if err != nil {
			return err
		}
		if !ok {
			salt = common.GenerateRandByteArray(cryptox.SaltSize)
		}

		verifier, err := deriveKey(password, salt, cryptox.DerivationRounds)
		if err != nil {
			derivationErr = err
			return err
		}
		defer common.WipeByteArray(verifier)

		if !ok {
			if err := store.SetSalt(ctx, salt); err != nil {
				return err
			}
		}
		if err := store.SetPassword(ctx, hex.EncodeToString(verifier)); err != nil {
			return err
		}
		return NewSettings(s.repos.Settings(tx)).SetSetupStatus(ctx, true)
	})

	if derivationErr != nil {
		s.logger.Error(ctx, "password derivation failed", "op", "set_password", "error", derivationErr)
		return fmt.Errorf("set password: %w", derivationErr)
	}
	if err != nil {
		s.logger.Error(ctx, "password not stored", "op", "set_password", "error", err)
		return fmt.Errorf("set password: %w: %w", common.ErrTransactionFailure, err)
	}

	s.logger.Info(ctx, "password stored", "op", "set_password")
	return nil
}

func (s *credentialService) VerifyPassword(ctx context.Context, password []byte) (bool, error) {
	c, err := s.Credential(ctx)
	if err != nil || c == nil {
		return false, err
	}

	salt, err := hex.DecodeString(c.SaltHex)
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}
	expected, err := hex.DecodeString(c.VerifierHex)
	if err != nil {
		return false, fmt.Errorf("decode verifier: %w", err)
	}

	return cryptox.Verify(password, salt, cryptox.DerivationRounds, expected)
}

func (s *credentialService) IsSetupComplete(ctx context.Context) (bool, error) {
	return NewSettings(s.repos.Settings(s.tr.DB())).SetupStatus(ctx)
}

func (s *credentialService) Credential(ctx context.Context) (*models.Credential, error) {
	store := s.store(s.tr.DB())

	verifier, err := store.Password(ctx)
	if err != nil {
		return nil, err
	}
	salt, ok, err := store.Salt(ctx)
	if err != nil {
		return nil, err
	}
	if verifier == "" || !ok {
		return nil, nil
	}

	return &models.Credential{SaltHex: hex.EncodeToString(salt), VerifierHex: verifier}, nil
}
