package articles

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

func (r *SQLiteRepository) Add(ctx context.Context, a *models.Article) error {
	if a.LocalID == "" {
		a.LocalID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO articles (local_id, name, barcode) VALUES (?, ?, ?)`,
		a.LocalID, a.Name, a.Barcode)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, a *models.Article) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE articles SET name=?, barcode=? WHERE local_id=?`,
		a.Name, a.Barcode, a.LocalID)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
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

func (r *SQLiteRepository) FindByLocalID(ctx context.Context, localID string) (*models.Article, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT local_id, name, barcode FROM articles WHERE local_id=?`, localID))
}

func (r *SQLiteRepository) FindByBarcode(ctx context.Context, barcode string) (*models.Article, error) {
	return r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT local_id, name, barcode FROM articles WHERE barcode=? AND barcode != ''`, barcode))
}

func (r *SQLiteRepository) DeleteByLocalID(ctx context.Context, localID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE local_id=?`, localID)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CountEntries(ctx context.Context, localID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM product_entries WHERE article_id=?`, localID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries for article: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) AddImage(ctx context.Context, img *models.ArticleImage) error {
	if img.LocalID == "" {
		img.LocalID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO article_images (local_id, server_id, article_id, image_data) VALUES (?, ?, ?, ?)`,
		img.LocalID, img.ServerID, img.ArticleID, img.ImageData)
	if err != nil {
		return fmt.Errorf("failed to insert article image: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListImages(ctx context.Context, articleID string) ([]models.ArticleImage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT local_id, server_id, article_id, image_data FROM article_images WHERE article_id=?`, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to select article images: %w", err)
	}
	defer rows.Close()

	var result []models.ArticleImage
	for rows.Next() {
		var img models.ArticleImage
		if err := rows.Scan(&img.LocalID, &img.ServerID, &img.ArticleID, &img.ImageData); err != nil {
			return nil, err
		}
		result = append(result, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) scanOne(row *sql.Row) (*models.Article, error) {
	a := &models.Article{}
	err := row.Scan(&a.LocalID, &a.Name, &a.Barcode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return a, nil
}
