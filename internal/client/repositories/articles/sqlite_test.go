package articles

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfsync/internal/client/models"
	"shelfsync/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`PRAGMA foreign_keys = ON`)
	require.NoError(t, err)

	_, err = db.Exec(`
CREATE TABLE articles (
  local_id TEXT PRIMARY KEY,
  name     TEXT NOT NULL,
  barcode  TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX idx_articles_barcode ON articles(barcode) WHERE barcode != '';
CREATE TABLE article_images (
  local_id   TEXT PRIMARY KEY,
  server_id  INTEGER NOT NULL DEFAULT 0,
  article_id TEXT NOT NULL REFERENCES articles(local_id) ON DELETE CASCADE,
  image_data BLOB
);
CREATE TABLE product_entries (
  local_id   TEXT PRIMARY KEY,
  article_id TEXT NOT NULL REFERENCES articles(local_id)
);
`)
	require.NoError(t, err)
	return db
}

func TestAddAndFind(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	a := &models.Article{Name: "Milk", Barcode: "4000001"}
	require.NoError(t, r.Add(ctx, a))
	require.NotEmpty(t, a.LocalID)

	byID, err := r.FindByLocalID(ctx, a.LocalID)
	require.NoError(t, err)
	assert.Equal(t, "Milk", byID.Name)

	byBarcode, err := r.FindByBarcode(ctx, "4000001")
	require.NoError(t, err)
	assert.Equal(t, a.LocalID, byBarcode.LocalID)
}

func TestFindByBarcode_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	_, err := r.FindByBarcode(context.Background(), "0000000")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdate(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	a := &models.Article{Name: "Milk"}
	require.NoError(t, r.Add(ctx, a))

	a.Name = "Whole Milk"
	a.Barcode = "4000001"
	require.NoError(t, r.Update(ctx, a))

	got, err := r.FindByLocalID(ctx, a.LocalID)
	require.NoError(t, err)
	assert.Equal(t, "Whole Milk", got.Name)
	assert.Equal(t, "4000001", got.Barcode)
}

func TestEmptyBarcodesDoNotCollide(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Add(ctx, &models.Article{Name: "Milk"}))
	require.NoError(t, r.Add(ctx, &models.Article{Name: "Cheese"}))
}

func TestImages_CascadeOnDelete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	a := &models.Article{Name: "Milk", Barcode: "4000001"}
	require.NoError(t, r.Add(ctx, a))
	require.NoError(t, r.AddImage(ctx, &models.ArticleImage{
		ArticleID: a.LocalID, ServerID: 10, ImageData: []byte("jpeg"),
	}))

	imgs, err := r.ListImages(ctx, a.LocalID)
	require.NoError(t, err)
	require.Len(t, imgs, 1)
	assert.EqualValues(t, 10, imgs[0].ServerID)
	assert.Equal(t, []byte("jpeg"), imgs[0].ImageData)

	require.NoError(t, r.DeleteByLocalID(ctx, a.LocalID))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM article_images`).Scan(&n))
	assert.Zero(t, n)
}

func TestCountEntries(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	a := &models.Article{Name: "Milk"}
	require.NoError(t, r.Add(ctx, a))

	n, err := r.CountEntries(ctx, a.LocalID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = db.Exec(`INSERT INTO product_entries (local_id, article_id) VALUES ('e1', ?)`, a.LocalID)
	require.NoError(t, err)

	n, err = r.CountEntries(ctx, a.LocalID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
