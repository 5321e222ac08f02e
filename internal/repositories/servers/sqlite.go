package servers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/nodekeeper/internal/common"
	"github.com/dmitrijs2005/nodekeeper/internal/dbx"
	"github.com/dmitrijs2005/nodekeeper/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `select address, protocol_type, port, is_default from servers`

func (r *SQLiteRepository) List(ctx context.Context) ([]models.ServerRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` order by position`)
	if err != nil {
		return nil, fmt.Errorf("failed to select servers: %w", err)
	}
	defer rows.Close()

	result := make([]models.ServerRecord, 0)
	for rows.Next() {
		var rec models.ServerRecord
		if err := rows.Scan(&rec.Address, &rec.ProtocolType, &rec.Port, &rec.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan server row: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate server rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) GetByAddress(ctx context.Context, address string) (*models.ServerRecord, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` where address = ?`, address)
	return scanOne(row)
}

func (r *SQLiteRepository) FirstExcept(ctx context.Context, address string) (*models.ServerRecord, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` where address <> ? order by position limit 1`, address)
	return scanOne(row)
}

func (r *SQLiteRepository) Exists(ctx context.Context, address string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `select count(*) from servers where address = ?`, address).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check server %q: %w", address, err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, rec models.ServerRecord) error {
	query := `insert into servers (address, protocol_type, port, is_default) values (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, rec.Address, rec.ProtocolType, rec.Port, rec.IsDefault)
	if err != nil {
		if isUniqueViolation(err) {
			return &common.AddressAlreadyPresentError{Address: rec.Address}
		}
		return fmt.Errorf("failed to insert server: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, address string, rec models.ServerRecord) error {
	query := `update servers set address = ?, protocol_type = ?, port = ? where address = ?`
	res, err := r.db.ExecContext(ctx, query, rec.Address, rec.ProtocolType, rec.Port, address)
	if err != nil {
		if isUniqueViolation(err) {
			return &common.AddressAlreadyPresentError{Address: rec.Address}
		}
		return fmt.Errorf("failed to update server: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, address string) error {
	res, err := r.db.ExecContext(ctx, `delete from servers where address = ?`, address)
	if err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
	}
	return expectOneRow(res)
}

func scanOne(row *sql.Row) (*models.ServerRecord, error) {
	rec := &models.ServerRecord{}
	if err := row.Scan(&rec.Address, &rec.ProtocolType, &rec.Port, &rec.IsDefault); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return rec, nil
}

func expectOneRow(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
