// Package models defines the client-side entities tracked by ShelfSync.
//
// Every entity carries two identities: LocalID, a UUID generated on this
// device and stable only here, and ServerID, assigned by the backend on the
// first successful push (0 = never synced).
package models

// Location is a place entries live in (a fridge, a pantry shelf).
// Exactly one location per device is the default.
type Location struct {
	LocalID   string
	ServerID  int64
	Name      string
	IsDefault bool
}
