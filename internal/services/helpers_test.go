package services

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/nodekeeper/internal/common"
	"github.com/dmitrijs2005/nodekeeper/internal/dbx"
	"github.com/dmitrijs2005/nodekeeper/internal/defaults"
	"github.com/dmitrijs2005/nodekeeper/internal/logging"
	"github.com/dmitrijs2005/nodekeeper/internal/models"
	"github.com/dmitrijs2005/nodekeeper/internal/storage"
	"github.com/stretchr/testify/require"
)

var errInduced = errors.New("induced failure")

type testEnv struct {
	db    *sql.DB
	tr    *dbx.SQLTransactor
	repos storage.SQLiteRepositoryManager
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "nodekeeper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &testEnv{db: db, tr: dbx.NewSQLTransactor(db, nil)}
}

func (e *testEnv) settings() *Settings {
	return NewSettings(e.repos.Settings(e.db))
}

// failAfter runs the body and then aborts the transaction, so every write
// the body made must be rolled back.
type failAfter struct {
	inner dbx.Transactor
}

func (f failAfter) DB() dbx.DBTX { return f.inner.DB() }

func (f failAfter) InTx(ctx context.Context, fn dbx.TxFunc) error {
	return f.inner.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return errInduced
	})
}

var testSpecs = []models.ServerSpec{
	{ProtocolType: "ssl", Address: "a.example.org", Port: "50002"},
	{ProtocolType: "ssl", Address: "b.example.org", Port: "50002"},
	{ProtocolType: "tcp", Address: "c.example.org", Port: "50001"},
}

func newRegistry(t *testing.T, e *testEnv, tr dbx.Transactor) *RegistryService {
	t.Helper()
	src := defaults.Static{models.NetworkMainnet: testSpecs}
	return NewRegistryService(tr, e.repos, src, models.NetworkMainnet, logging.Discard())
}

func addresses(recs []models.ServerRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Address)
	}
	return out
}

func requireTxFailure(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, common.ErrTransactionFailure)
}
