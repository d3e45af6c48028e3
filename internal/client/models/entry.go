package models

import "time"

// ProductEntry is the root synchronized unit: an amount of some article
// sitting in a location with an expiry date.
//
// InSync == true means the server-visible fields exactly match what was last
// received from the server. DeletedAt != nil marks a tombstone kept around so
// the deletion itself can be synchronized.
type ProductEntry struct {
	LocalID  string
	ServerID int64

	// ArticleID references the owning article by local id; Article is the
	// hydrated record when the caller asked for it.
	ArticleID string
	Article   *Article

	// LocationID references the owning location by local id; Location is
	// the hydrated record when the caller asked for it.
	LocationID string
	Location   *Location

	Amount         int
	Description    string
	ExpirationDate time.Time // date-only, normalized to midnight UTC

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time

	InSync bool
}

// IsTombstone reports whether the entry was deleted locally or remotely.
func (e *ProductEntry) IsTombstone() bool {
	return e.DeletedAt != nil
}

// NeverSynced reports whether the entry has never been seen by the server.
func (e *ProductEntry) NeverSynced() bool {
	return e.ServerID == 0
}

// DateOnly truncates t to its calendar date in UTC. Expiration dates carry
// no time component on the wire or in the store.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
