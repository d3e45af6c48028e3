package locations

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

	_, err = db.Exec(`
CREATE TABLE locations (
  local_id   TEXT PRIMARY KEY,
  server_id  INTEGER NOT NULL DEFAULT 0,
  name       TEXT NOT NULL,
  is_default INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)
	return db
}

func TestAddAndGetDefault(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Add(ctx, &models.Location{Name: "Cellar"}))
	home := &models.Location{Name: "Home", IsDefault: true}
	require.NoError(t, r.Add(ctx, home))
	require.NotEmpty(t, home.LocalID)

	got, err := r.GetDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, home.LocalID, got.LocalID)
	assert.True(t, got.IsDefault)
}

func TestGetDefault_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	_, err := r.GetDefault(context.Background())
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateAndFindByServerID(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	l := &models.Location{Name: "Home", IsDefault: true}
	require.NoError(t, r.Add(ctx, l))

	l.ServerID = 5
	l.Name = "Home Fridge"
	require.NoError(t, r.Update(ctx, l))

	got, err := r.FindByServerID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, l.LocalID, got.LocalID)
	assert.Equal(t, "Home Fridge", got.Name)
}

func TestGetAll(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Add(ctx, &models.Location{Name: "Home"}))
	require.NoError(t, r.Add(ctx, &models.Location{Name: "Cellar"}))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestClearServerIDs(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	l := &models.Location{Name: "Home", IsDefault: true}
	require.NoError(t, r.Add(ctx, l))
	l.ServerID = 5
	require.NoError(t, r.Update(ctx, l))

	require.NoError(t, r.ClearServerIDs(ctx))

	got, err := r.GetDefault(ctx)
	require.NoError(t, err)
	assert.Zero(t, got.ServerID)
}
