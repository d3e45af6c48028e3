package entries

import (
	"context"

	"shelfsync/internal/client/models"
)

// Repository describes CRUD and the query shapes the reconciler needs for
// ProductEntry objects. Implementations are backed by the local SQLite
// database.
//
// Deletions here are physical: soft-deletion is expressed by setting
// DeletedAt on the record and updating it, so the tombstone can still be
// pushed to the server.
type Repository interface {
	// Add inserts a new entry. A missing LocalID is generated.
	Add(ctx context.Context, e *models.ProductEntry) error

	// Update overwrites all fields of an existing entry by LocalID.
	Update(ctx context.Context, e *models.ProductEntry) error

	// DeleteByLocalID removes an entry from the store for good.
	DeleteByLocalID(ctx context.Context, localID string) error

	// FindByLocalID returns an entry by local id, tombstones included,
	// or common.ErrorNotFound.
	FindByLocalID(ctx context.Context, localID string) (*models.ProductEntry, error)

	// FindByServerID returns the single entry with the given server
	// identity, or common.ErrorNotFound. With deletedToo=false, tombstones
	// are ignored.
	FindByServerID(ctx context.Context, serverID int64, deletedToo bool) (*models.ProductEntry, error)

	// GetAll returns entries, optionally including tombstones.
	GetAll(ctx context.Context, deletedToo bool) ([]models.ProductEntry, error)

	// GetAllOutOfSync returns every entry with local changes not yet pushed,
	// tombstones included.
	GetAllOutOfSync(ctx context.Context) ([]*models.ProductEntry, error)

	// DeleteSynced removes every entry whose state is fully reflected on
	// the server. Used when the account context changes.
	DeleteSynced(ctx context.Context) error
}
