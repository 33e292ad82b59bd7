package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mkravets/daybook/internal/common"
	"github.com/mkravets/daybook/internal/journal"
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
CREATE TABLE entries (
  date TEXT PRIMARY KEY,
  content TEXT NOT NULL DEFAULT '',
  modified_at INTEGER NOT NULL,
  deleted INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)

	return db
}

func ts(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func TestPut_InsertAndOverwrite(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	e1 := &journal.Entry{Date: "2024-01-01", Content: "hello", ModifiedAt: ts(100)}
	require.NoError(t, r.Put(ctx, e1))

	got, err := r.Get(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, e1, got)

	// Put overwrites even with an older timestamp; conflict resolution is
	// the caller's job.
	e2 := &journal.Entry{Date: "2024-01-01", Content: "older", ModifiedAt: ts(50)}
	require.NoError(t, r.Put(ctx, e2))

	got, err = r.Get(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, e2, got)
}

func TestGet_SkipsTombstones_LookupDoesNot(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO entries(date, content, modified_at, deleted) VALUES
	  ('2024-01-01', 'live', 100, 0),
	  ('2024-01-02', '', 200, 1)
	`)
	require.NoError(t, err)

	_, err = r.Get(ctx, "2024-01-02")
	require.ErrorIs(t, err, common.ErrNotFound)

	tomb, err := r.Lookup(ctx, "2024-01-02")
	require.NoError(t, err)
	assert.True(t, tomb.Deleted)
	assert.Equal(t, ts(200), tomb.ModifiedAt)

	_, err = r.Get(ctx, "2024-01-03")
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = r.Lookup(ctx, "2024-01-03")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestPutIfNewer(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	// No existing record: applied.
	winner, applied, err := r.PutIfNewer(ctx, &journal.Entry{Date: "2024-01-01", Content: "a", ModifiedAt: ts(100)})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, ts(100), winner)

	// Older record loses: not applied, stored timestamp wins.
	winner, applied, err = r.PutIfNewer(ctx, &journal.Entry{Date: "2024-01-01", Content: "stale", ModifiedAt: ts(50)})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, ts(100), winner)

	got, err := r.Get(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Content)

	// Equal timestamp: idempotent, no write.
	winner, applied, err = r.PutIfNewer(ctx, &journal.Entry{Date: "2024-01-01", Content: "same-ts", ModifiedAt: ts(100)})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, ts(100), winner)

	// Newer record wins, including a tombstone.
	winner, applied, err = r.PutIfNewer(ctx, &journal.Entry{Date: "2024-01-01", ModifiedAt: ts(200), Deleted: true})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, ts(200), winner)

	_, err = r.Get(ctx, "2024-01-01")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete_TombstonesWithTimestamp(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, &journal.Entry{Date: "2024-01-01", Content: "x", ModifiedAt: ts(100)}))
	require.NoError(t, r.Delete(ctx, "2024-01-01", ts(150)))

	tomb, err := r.Lookup(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.True(t, tomb.Deleted)
	assert.Empty(t, tomb.Content)
	assert.Equal(t, ts(150), tomb.ModifiedAt)

	// Deleting a tombstone or a missing date reports not found.
	require.ErrorIs(t, r.Delete(ctx, "2024-01-01", ts(160)), common.ErrNotFound)
	require.ErrorIs(t, r.Delete(ctx, "2024-01-02", ts(160)), common.ErrNotFound)
}

func TestList_NewestFirstWithoutTombstones(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO entries(date, content, modified_at, deleted) VALUES
	  ('2024-01-01', 'a', 100, 0),
	  ('2024-01-03', 'c', 300, 0),
	  ('2024-01-02', '', 200, 1)
	`)
	require.NoError(t, err)

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-03", got[0].Date)
	assert.Equal(t, "2024-01-01", got[1].Date)
}

func TestCatalog_IncludesTombstones(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO entries(date, content, modified_at, deleted) VALUES
	  ('2024-01-01', 'a', 100, 0),
	  ('2024-01-02', '', 200, 1)
	`)
	require.NoError(t, err)

	got, err := r.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, journal.Catalog{
		"2024-01-01": {ModifiedAt: ts(100), Deleted: false},
		"2024-01-02": {ModifiedAt: ts(200), Deleted: true},
	}, got)
}

func TestOpen_AppliesMigrations(t *testing.T) {
	ctx := context.Background()

	r, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	require.NoError(t, r.Put(ctx, &journal.Entry{Date: "2024-01-01", Content: "hello", ModifiedAt: ts(100)}))

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Content)
}
