// Package common defines shared sentinel errors used across the ShelfSync
// client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Sync-run errors.
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrNotLoggedIn    = errors.New("not logged in")
)
