// Package kv provides the key/value persistence used for plain settings and
// for sealed secrets.
//
// Both live in identically shaped SQLite tables (key TEXT PRIMARY KEY,
// value BLOB NOT NULL); Table selects which one a repository is bound to.
// The repository stores bytes as given: sealing of secrets happens in
// internal/securestore before values reach this layer.
//
// Typical Usage
//
//	repo := kv.NewSQLiteRepository(db, kv.TableSettings)
//	_ = repo.Set(ctx, "setupStatus", []byte("true"))
//	v, _ := repo.Get(ctx, "setupStatus") // nil if absent
package kv
