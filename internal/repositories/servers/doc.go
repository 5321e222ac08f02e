// Package servers provides the persistence layer for the endpoint registry.
//
// # Data Model
//
// Each row is a models.ServerRecord keyed by its address, which is unique
// (enforced by a UNIQUE constraint) and compared case-sensitively. Rows also
// carry an autoincrement position: List and FirstExcept order by it, so the
// registry's "first" record is always the oldest surviving insertion.
//
// # Concurrency
//
// Repositories are bound to a dbx.DBTX. Bind one to a *sql.Tx (via
// dbx.Transactor.InTx) to make multi-row changes atomic; bind it to the
// *sql.DB for plain snapshot reads.
//
// Typical Usage
//
//	repo := servers.NewSQLiteRepository(db)
//	_ = repo.Insert(ctx, models.ServerRecord{Address: "a.example", ProtocolType: "s", Port: "50002"})
//	list, _ := repo.List(ctx)
package servers
