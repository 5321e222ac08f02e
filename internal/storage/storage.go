// Package storage opens the local SQLite database, applies the embedded
// goose migrations and vends repositories bound to a DBTX.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/nodekeeper/internal/dbx"
	"github.com/dmitrijs2005/nodekeeper/internal/migrations"
	"github.com/dmitrijs2005/nodekeeper/internal/repositories/kv"
	"github.com/dmitrijs2005/nodekeeper/internal/repositories/servers"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// RepositoryManager vends repositories bound to either the database or an
// open transaction.
type RepositoryManager interface {
	Servers(db dbx.DBTX) servers.Repository
	Settings(db dbx.DBTX) kv.Repository
	Secrets(db dbx.DBTX) kv.Repository
}

// SQLiteRepositoryManager is the RepositoryManager for the SQLite schema.
type SQLiteRepositoryManager struct{}

func (SQLiteRepositoryManager) Servers(db dbx.DBTX) servers.Repository {
	return servers.NewSQLiteRepository(db)
}

func (SQLiteRepositoryManager) Settings(db dbx.DBTX) kv.Repository {
	return kv.NewSQLiteRepository(db, kv.TableSettings)
}

func (SQLiteRepositoryManager) Secrets(db dbx.DBTX) kv.Repository {
	return kv.NewSQLiteRepository(db, kv.TableSecrets)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations. It is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return gooseUpContext(ctx, db, ".")
}

// Open opens (creating if needed) the SQLite database at dsn and migrates it.
//
// SQLite allows one writer at a time; the pool is capped at one connection
// so transactions never hit SQLITE_BUSY against each other and in-memory
// DSNs see a single database.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return db, nil
}
