package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vibevault/vibevault/internal/logging"
	_ "modernc.org/sqlite"
)

const testSchema = `
CREATE TABLE user_credentials (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  username TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  encryption_salt TEXT NOT NULL,
  auto_lock_secs INTEGER NOT NULL DEFAULT 300,
  created_at TEXT NOT NULL
);
CREATE TABLE profiles (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
);
INSERT INTO profiles (name) VALUES ('Personal');
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
CREATE TABLE paired_devices (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  public_key BLOB NOT NULL,
  shared_secret BLOB NOT NULL,
  paired_at TEXT NOT NULL,
  last_sync_at TEXT NOT NULL DEFAULT ''
);
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
`

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return db
}

func testLogger() logging.Logger {
	return logging.Discard()
}

// stubGuard satisfies SessionGuard with a fixed key and profile.
type stubGuard struct {
	key       []byte
	profileID int64
	err       error
}

func (g *stubGuard) Validate(ctx context.Context, token string) (*SessionInfo, error) {
	if g.err != nil {
		return nil, g.err
	}
	k := make([]byte, len(g.key))
	copy(k, g.key)
	return &SessionInfo{Key: k, ProfileID: g.profileID}, nil
}
