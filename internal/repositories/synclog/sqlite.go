package synclog

import (
	"context"
	"fmt"
	"time"

	"github.com/vibevault/vibevault/internal/dbx"
	"github.com/vibevault/vibevault/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, e *models.SyncLogEntry) error {
	syncedAt := e.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now().UTC()
	}
	query := `INSERT INTO sync_log (device_name, direction, applied, skipped, deleted, conflicts, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.DeviceName, e.Direction, e.Applied, e.Skipped, e.Deleted, e.Conflicts,
		syncedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("append sync log: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]models.SyncLogEntry, error) {
	query := `SELECT id, device_name, direction, applied, skipped, deleted, conflicts, synced_at
		FROM sync_log ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync log: %w", err)
	}
	defer rows.Close()

	var list []models.SyncLogEntry
	for rows.Next() {
		var e models.SyncLogEntry
		var syncedAt string
		if err := rows.Scan(&e.ID, &e.DeviceName, &e.Direction, &e.Applied,
			&e.Skipped, &e.Deleted, &e.Conflicts, &syncedAt); err != nil {
			return nil, err
		}
		e.SyncedAt, _ = time.Parse(time.RFC3339, syncedAt)
		list = append(list, e)
	}
	return list, rows.Err()
}
