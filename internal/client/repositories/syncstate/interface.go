package syncstate

import (
	"context"
	"time"
)

// Repository persists the per-account sync watermark: the skew-corrected
// time of the last successful sync run. A nil watermark means "never
// synced, pull everything".
type Repository interface {
	GetLastSync(ctx context.Context, account string) (*time.Time, error)
	SetLastSync(ctx context.Context, account string, t time.Time) error
	Clear(ctx context.Context, account string) error
}
