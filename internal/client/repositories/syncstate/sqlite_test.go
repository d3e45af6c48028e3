package syncstate

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE sync_state (
  account      TEXT PRIMARY KEY,
  last_sync_ms INTEGER NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func TestLastSync_RoundTrip(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	// never synced
	got, err := r.GetLastSync(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got)

	mark := time.Date(2026, 8, 20, 8, 0, 0, 500e6, time.UTC)
	require.NoError(t, r.SetLastSync(ctx, "alice", mark))

	got, err = r.GetLastSync(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, mark, *got)

	// overwrite moves the watermark forward
	later := mark.Add(time.Hour)
	require.NoError(t, r.SetLastSync(ctx, "alice", later))
	got, err = r.GetLastSync(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, later, *got)
}

func TestLastSync_PerAccount(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	markA := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)
	markB := markA.Add(time.Minute)
	require.NoError(t, r.SetLastSync(ctx, "alice", markA))
	require.NoError(t, r.SetLastSync(ctx, "bob", markB))

	gotA, err := r.GetLastSync(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, markA, *gotA)
	gotB, err := r.GetLastSync(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, markB, *gotB)
}

func TestClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SetLastSync(ctx, "alice", time.Now()))
	require.NoError(t, r.Clear(ctx, "alice"))

	got, err := r.GetLastSync(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got)

	// clearing an unknown account is a no-op
	require.NoError(t, r.Clear(ctx, "ghost"))
}
