package locations

import (
	"context"

	"shelfsync/internal/client/models"
)

// Repository describes CRUD and query operations for Location objects.
type Repository interface {
	// Add inserts a new location. A missing LocalID is generated.
	Add(ctx context.Context, l *models.Location) error

	// Update overwrites all fields of an existing location by LocalID.
	Update(ctx context.Context, l *models.Location) error

	// GetAll returns every location on this device.
	GetAll(ctx context.Context) ([]models.Location, error)

	// GetDefault returns the device's default location, or
	// common.ErrorNotFound if none exists yet.
	GetDefault(ctx context.Context) (*models.Location, error)

	// FindByServerID returns the location with the given server identity,
	// or common.ErrorNotFound.
	FindByServerID(ctx context.Context, serverID int64) (*models.Location, error)

	// ClearServerIDs severs all locations from their server identities.
	// Used when the account context changes.
	ClearServerIDs(ctx context.Context) error
}
