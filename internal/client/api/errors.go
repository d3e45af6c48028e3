package api

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnavailable covers transport failures and malformed responses.
	// The operation did not take effect remotely as far as we know;
	// a later sync run retries it.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized means the session is missing or expired.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError carries the per-field messages the server returned when it
// rejected a create or update. The record stays out of sync and is retried
// unmodified on the next run.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, f := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
