package servers

import (
	"context"

	"github.com/dmitrijs2005/nodekeeper/internal/models"
)

// Repository describes CRUD operations over ServerRecord rows.
type Repository interface {
	// List returns every record in insertion order.
	List(ctx context.Context) ([]models.ServerRecord, error)

	// GetByAddress returns common.ErrorNotFound when no record matches.
	GetByAddress(ctx context.Context, address string) (*models.ServerRecord, error)

	Exists(ctx context.Context, address string) (bool, error)

	// Insert fails with *common.AddressAlreadyPresentError on a duplicate address.
	Insert(ctx context.Context, rec models.ServerRecord) error

	// Update rewrites the record currently stored under address. The
	// IsDefault flag is left untouched.
	Update(ctx context.Context, address string, rec models.ServerRecord) error

	// Delete removes the record; common.ErrorNotFound if it did not exist.
	Delete(ctx context.Context, address string) error

	// FirstExcept returns the first record in insertion order whose address
	// differs from address, or common.ErrorNotFound.
	FirstExcept(ctx context.Context, address string) (*models.ServerRecord, error)
}
