package profiles

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibevault/vibevault/internal/common"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE profiles (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
);
CREATE TABLE records (
  uuid TEXT PRIMARY KEY,
  profile_id INTEGER NOT NULL,
  label TEXT NOT NULL,
  ciphertext BLOB NOT NULL,
  nonce BLOB NOT NULL DEFAULT X'',
  version INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  deleted_at TEXT NOT NULL DEFAULT ''
);
`)
	require.NoError(t, err)
	return db
}

func addRecord(t *testing.T, db *sql.DB, uuid string, profileID int64, deletedAt string) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO records (uuid, profile_id, label, ciphertext, created_at, updated_at, deleted_at)
		 VALUES (?, ?, 'x', X'00', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z', ?)`,
		uuid, profileID, deletedAt)
	require.NoError(t, err)
}

func TestCreateAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	p, err := r.Create(ctx, "Work")
	require.NoError(t, err)
	assert.Equal(t, "Work", p.Name)
	assert.NotZero(t, p.ID)

	byName, err := r.GetByName(ctx, "Work")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byName.ID)

	byID, err := r.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Work", byID.Name)

	_, err = r.GetByName(ctx, "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate_DuplicateNameRejected(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, err := r.Create(ctx, "Work")
	require.NoError(t, err)
	_, err = r.Create(ctx, "Work")
	require.Error(t, err)
}

func TestListWithCounts(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	work, err := r.Create(ctx, "Work")
	require.NoError(t, err)
	_, err = r.Create(ctx, "Personal")
	require.NoError(t, err)

	addRecord(t, db, "id1", work.ID, "")
	addRecord(t, db, "id2", work.ID, "")
	addRecord(t, db, "id3", work.ID, "2026-01-02T00:00:00Z") // tombstone not counted

	list, err := r.ListWithCounts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Personal", list[0].Name)
	assert.Equal(t, int64(0), list[0].RecordCount)
	assert.Equal(t, "Work", list[1].Name)
	assert.Equal(t, int64(2), list[1].RecordCount)
}

func TestRenameAndDelete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	p, err := r.Create(ctx, "Work")
	require.NoError(t, err)

	require.NoError(t, r.Rename(ctx, p.ID, "Office"))
	got, err := r.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Office", got.Name)

	require.NoError(t, r.Delete(ctx, p.ID))
	_, err = r.GetByID(ctx, p.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.ErrorIs(t, r.Rename(ctx, 999, "x"), common.ErrorNotFound)
	require.ErrorIs(t, r.Delete(ctx, 999), common.ErrorNotFound)
}
