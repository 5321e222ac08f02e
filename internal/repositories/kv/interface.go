package kv

import (
	"context"
)

// Repository is a byte-valued key/value table. Rows are upserted, never
// removed.
type Repository interface {
	// Get returns (nil, nil) for an absent key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// List returns every stored pair in one query.
	List(ctx context.Context) (map[string][]byte, error)
}
