package services

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/dmitrijs2005/nodekeeper/internal/common"
	"github.com/dmitrijs2005/nodekeeper/internal/cryptox"
	"github.com/dmitrijs2005/nodekeeper/internal/dbx"
	"github.com/dmitrijs2005/nodekeeper/internal/logging"
	"github.com/dmitrijs2005/nodekeeper/internal/securestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCredentials(t *testing.T, e *testEnv, tr dbx.Transactor) (CredentialService, *securestore.SealedStore) {
	t.Helper()
	key := common.GenerateRandByteArray(cryptox.KeySize)
	return NewCredentialService(tr, e.repos, key, logging.Discard()), securestore.New(e.repos.Secrets(e.db), key)
}

func TestCredentialService_SetPasswordFirstRun(t *testing.T) {
	ctx := context.Background()
	e := setupEnv(t)
	svc, store := newCredentials(t, e, e.tr)

	done, err := svc.IsSetupComplete(ctx)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, svc.SetPassword(ctx, []byte("hunter2")))

	salt, ok, err := store.Salt(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, salt, cryptox.SaltSize)

	want, err := cryptox.DeriveKey([]byte("hunter2"), salt, cryptox.DerivationRounds)
	require.NoError(t, err)
	verifier, err := store.Password(ctx)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(want), verifier)

	done, err = svc.IsSetupComplete(ctx)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestCredentialService_SaltIsReusedOnChange(t *testing.T) {
	ctx := context.Background()
	e := setupEnv(t)
	svc, store := newCredentials(t, e, e.tr)

	require.NoError(t, svc.SetPassword(ctx, []byte("first")))
	salt1, _, err := store.Salt(ctx)
	require.NoError(t, err)
	v1, err := store.Password(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.SetPassword(ctx, []byte("second")))
	salt2, _, err := store.Salt(ctx)
	require.NoError(t, err)
	v2, err := store.Password(ctx)
	require.NoError(t, err)

	assert.Equal(t, salt1, salt2)
	assert.NotEqual(t, v1, v2)
}

func TestCredentialService_VerifyPassword(t *testing.T) {
	ctx := context.Background()
	e := setupEnv(t)
	svc, _ := newCredentials(t, e, e.tr)

	ok, err := svc.VerifyPassword(ctx, []byte("anything"))
	require.NoError(t, err)
	assert.False(t, ok, "no credential stored yet")

	c, err := svc.Credential(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)

	require.NoError(t, svc.SetPassword(ctx, []byte("correct horse")))

	ok, err = svc.VerifyPassword(ctx, []byte("correct horse"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyPassword(ctx, []byte("Correct horse"))
	require.NoError(t, err)
	assert.False(t, ok)

	c, err = svc.Credential(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Len(t, c.SaltHex, cryptox.SaltSize*2)
	assert.Len(t, c.VerifierHex, cryptox.KeySize*2)
}

func TestCredentialService_DerivationFailurePersistsNothing(t *testing.T) {
	ctx := context.Background()
	e := setupEnv(t)
	svc, store := newCredentials(t, e, e.tr)

	orig := deriveKey
	deriveKey = func(password, salt []byte, rounds int) ([]byte, error) {
		return cryptox.DeriveKey(password, nil, rounds)
	}
	t.Cleanup(func() { deriveKey = orig })

	err := svc.SetPassword(ctx, []byte("pw"))
	require.ErrorIs(t, err, common.ErrDerivationFailure)
	require.NotErrorIs(t, err, common.ErrTransactionFailure)

	_, ok, err := store.Salt(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "salt must not be persisted when derivation fails")

	done, err := svc.IsSetupComplete(ctx)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestCredentialService_TransactionFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	e := setupEnv(t)
	svc, store := newCredentials(t, e, failAfter{inner: e.tr})

	err := svc.SetPassword(ctx, []byte("pw"))
	requireTxFailure(t, err)
	require.ErrorIs(t, err, errInduced)

	pw, err := store.Password(ctx)
	require.NoError(t, err)
	assert.Empty(t, pw)

	_, ok, err := store.Salt(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	done, err := e.settings().SetupStatus(ctx)
	require.NoError(t, err)
	assert.False(t, done)
}
