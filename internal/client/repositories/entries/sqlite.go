package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shelfsync/internal/client/models"
	"shelfsync/internal/common"
	"shelfsync/internal/dbx"
)

const dateLayout = "2006-01-02"

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const entryColumns = `local_id, server_id, article_id, location_id, amount, description,
	expiration_date, created_at, updated_at, deleted_at, in_sync`

func (r *SQLiteRepository) Add(ctx context.Context, e *models.ProductEntry) error {
	if e.LocalID == "" {
		e.LocalID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO product_entries (`+entryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.LocalID, e.ServerID, e.ArticleID, e.LocationID, e.Amount, e.Description,
		e.ExpirationDate.Format(dateLayout), toMillis(e.CreatedAt), toMillis(e.UpdatedAt),
		toNullMillis(e.DeletedAt), e.InSync)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, e *models.ProductEntry) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE product_entries SET server_id=?, article_id=?, location_id=?, amount=?,
			description=?, expiration_date=?, created_at=?, updated_at=?, deleted_at=?, in_sync=?
		 WHERE local_id=?`,
		e.ServerID, e.ArticleID, e.LocationID, e.Amount,
		e.Description, e.ExpirationDate.Format(dateLayout), toMillis(e.CreatedAt),
		toMillis(e.UpdatedAt), toNullMillis(e.DeletedAt), e.InSync,
		e.LocalID)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
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

func (r *SQLiteRepository) DeleteByLocalID(ctx context.Context, localID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM product_entries WHERE local_id=?`, localID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) FindByLocalID(ctx context.Context, localID string) (*models.ProductEntry, error) {
	return scanEntryRow(r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM product_entries WHERE local_id=?`, localID))
}

func (r *SQLiteRepository) FindByServerID(ctx context.Context, serverID int64, deletedToo bool) (*models.ProductEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM product_entries WHERE server_id=?`
	if !deletedToo {
		query += ` AND deleted_at IS NULL`
	}
	return scanEntryRow(r.db.QueryRowContext(ctx, query, serverID))
}

func (r *SQLiteRepository) GetAll(ctx context.Context, deletedToo bool) ([]models.ProductEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM product_entries`
	if !deletedToo {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY expiration_date, created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []models.ProductEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetAllOutOfSync(ctx context.Context) ([]*models.ProductEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM product_entries WHERE in_sync=0 ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to select out-of-sync entries: %w", err)
	}
	defer rows.Close()

	var result []*models.ProductEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteSynced(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM product_entries WHERE in_sync=1`)
	if err != nil {
		return fmt.Errorf("failed to delete synced entries: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.ProductEntry, error) {
	e := &models.ProductEntry{}
	var (
		expiration string
		createdMs  int64
		updatedMs  int64
		deletedMs  sql.NullInt64
	)
	err := row.Scan(&e.LocalID, &e.ServerID, &e.ArticleID, &e.LocationID, &e.Amount,
		&e.Description, &expiration, &createdMs, &updatedMs, &deletedMs, &e.InSync)
	if err != nil {
		return nil, err
	}

	e.ExpirationDate, err = time.ParseInLocation(dateLayout, expiration, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("bad expiration date %q: %w", expiration, err)
	}
	e.CreatedAt = fromMillis(createdMs)
	e.UpdatedAt = fromMillis(updatedMs)
	if deletedMs.Valid {
		t := fromMillis(deletedMs.Int64)
		e.DeletedAt = &t
	}
	return e, nil
}

func scanEntryRow(row *sql.Row) (*models.ProductEntry, error) {
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func toNullMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
