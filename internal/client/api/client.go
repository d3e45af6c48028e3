// Package api talks to the ShelfSync backend over REST/JSON. It is the only
// network-facing part of the client: every operation either returns the
// server's canonical representation of an entity or an error, never a
// partial result, so callers can safely key their sync-state transitions on
// the outcome.
package api

import (
	"context"
	"time"

	"shelfsync/internal/client/models"
)

// Client is the remote boundary consumed by the reconciler and the session
// service. All calls honor context cancellation.
type Client interface {
	// Login starts a server session for the given account.
	Login(ctx context.Context, account, password string) error

	// Register creates a new account and leaves the session logged in.
	Register(ctx context.Context, account, email, password string) error

	// Logout terminates the server session.
	Logout(ctx context.Context) error

	// FetchChangedLocations lists the account's locations changed on the
	// server.
	FetchChangedLocations(ctx context.Context) ([]models.Location, error)

	// CreateLocation registers a location on the server and returns the
	// server's representation including the assigned id.
	CreateLocation(ctx context.Context, l *models.Location) (*models.Location, error)

	// FetchChangedEntries returns the entries of one location updated or
	// deleted on the server since the given watermark. A nil since means
	// "everything". The server decides what "changed" means; both lists are
	// authoritative.
	FetchChangedEntries(ctx context.Context, locationServerID int64, since *time.Time) (updated, deleted []*models.ProductEntry, err error)

	// CreateEntry pushes a never-synced entry (with any new article images)
	// and returns the server's canonical post-create representation.
	CreateEntry(ctx context.Context, e *models.ProductEntry, images []models.ArticleImage) (*models.ProductEntry, error)

	// UpdateEntry pushes local changes of an already-synced entry.
	UpdateEntry(ctx context.Context, e *models.ProductEntry, images []models.ArticleImage) (*models.ProductEntry, error)

	// DeleteEntry deletes an entry on the server and returns the server's
	// tombstone.
	DeleteEntry(ctx context.Context, e *models.ProductEntry) (*models.ProductEntry, error)

	// TimeSkew is the most recently measured offset between the server
	// clock and the local clock (serverTime - localTime). Zero until the
	// first round trip.
	TimeSkew() time.Duration
}
