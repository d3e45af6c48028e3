package locations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"shelfsync/internal/client/models"
	"shelfsync/internal/common"
	"shelfsync/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, l *models.Location) error {
	if l.LocalID == "" {
		l.LocalID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO locations (local_id, server_id, name, is_default) VALUES (?, ?, ?, ?)`,
		l.LocalID, l.ServerID, l.Name, l.IsDefault)
	if err != nil {
		return fmt.Errorf("failed to insert location: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, l *models.Location) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE locations SET server_id=?, name=?, is_default=? WHERE local_id=?`,
		l.ServerID, l.Name, l.IsDefault, l.LocalID)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Location, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT local_id, server_id, name, is_default FROM locations`)
	if err != nil {
		return nil, fmt.Errorf("failed to select locations: %w", err)
	}
	defer rows.Close()

	var result []models.Location
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.LocalID, &l.ServerID, &l.Name, &l.IsDefault); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetDefault(ctx context.Context) (*models.Location, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT local_id, server_id, name, is_default FROM locations WHERE is_default=1`))
}

func (r *SQLiteRepository) FindByServerID(ctx context.Context, serverID int64) (*models.Location, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT local_id, server_id, name, is_default FROM locations WHERE server_id=?`, serverID))
}

func (r *SQLiteRepository) ClearServerIDs(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `UPDATE locations SET server_id=0 WHERE server_id != 0`)
	if err != nil {
		return fmt.Errorf("failed to clear location server ids: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) scanOne(row *sql.Row) (*models.Location, error) {
	l := &models.Location{}
	err := row.Scan(&l.LocalID, &l.ServerID, &l.Name, &l.IsDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return l, nil
}
