package synclog

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibevault/vibevault/internal/models"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE sync_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  device_name TEXT NOT NULL,
  direction TEXT NOT NULL,
  applied INTEGER NOT NULL DEFAULT 0,
  skipped INTEGER NOT NULL DEFAULT 0,
  deleted INTEGER NOT NULL DEFAULT 0,
  conflicts INTEGER NOT NULL DEFAULT 0,
  synced_at TEXT NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func TestAppendAndList(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Append(ctx, &models.SyncLogEntry{
		DeviceName: "phone", Direction: "incoming", Applied: 3, Skipped: 1,
	}))
	require.NoError(t, r.Append(ctx, &models.SyncLogEntry{
		DeviceName: "phone", Direction: "outgoing", Applied: 2, Deleted: 1, Conflicts: 1,
	}))

	list, err := r.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// newest first
	assert.Equal(t, "outgoing", list[0].Direction)
	assert.Equal(t, int64(2), list[0].Applied)
	assert.Equal(t, int64(1), list[0].Conflicts)
	assert.Equal(t, "incoming", list[1].Direction)
	assert.Equal(t, int64(3), list[1].Applied)
	assert.False(t, list[0].SyncedAt.IsZero())
}

func TestList_RespectsLimit(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Append(ctx, &models.SyncLogEntry{
			DeviceName: "phone", Direction: "incoming",
		}))
	}

	list, err := r.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
