package syncstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shelfsync/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetLastSync(ctx context.Context, account string) (*time.Time, error) {
	var ms int64
	err := r.db.QueryRowContext(ctx,
		`SELECT last_sync_ms FROM sync_state WHERE account=?`, account).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state[%s]: %w", account, err)
	}
	t := time.UnixMilli(ms).UTC()
	return &t, nil
}

func (r *SQLiteRepository) SetLastSync(ctx context.Context, account string, t time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_state (account, last_sync_ms) VALUES (?, ?)
		ON CONFLICT(account) DO UPDATE SET last_sync_ms = excluded.last_sync_ms
	`, account, t.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set sync state[%s]: %w", account, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, account string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sync_state WHERE account=?`, account)
	if err != nil {
		return fmt.Errorf("failed to clear sync state[%s]: %w", account, err)
	}
	return nil
}
