package devices

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vibevault/vibevault/internal/common"
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

func (r *SQLiteRepository) Upsert(ctx context.Context, d *models.PairedDevice) error {
	query := `INSERT INTO paired_devices (name, public_key, shared_secret, paired_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			public_key    = excluded.public_key,
			shared_secret = excluded.shared_secret,
			paired_at     = excluded.paired_at`
	pairedAt := d.PairedAt
	if pairedAt.IsZero() {
		pairedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, query,
		d.Name, d.PublicKey, d.SharedSecret, pairedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert device %q: %w", d.Name, err)
	}
	return nil
}

func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (*models.PairedDevice, error) {
	query := `SELECT id, name, public_key, shared_secret, paired_at, last_sync_at
		FROM paired_devices WHERE name = ?`

	var d models.PairedDevice
	var pairedAt, lastSync string
	err := r.db.QueryRowContext(ctx, query, name).
		Scan(&d.ID, &d.Name, &d.PublicKey, &d.SharedSecret, &pairedAt, &lastSync)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get device %q: %w", name, err)
	}
	d.PairedAt, _ = time.Parse(time.RFC3339, pairedAt)
	if lastSync != "" {
		d.LastSyncAt, _ = time.Parse(time.RFC3339, lastSync)
	}
	return &d, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.PairedDevice, error) {
	query := `SELECT id, name, public_key, shared_secret, paired_at, last_sync_at
		FROM paired_devices ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var list []models.PairedDevice
	for rows.Next() {
		var d models.PairedDevice
		var pairedAt, lastSync string
		if err := rows.Scan(&d.ID, &d.Name, &d.PublicKey, &d.SharedSecret, &pairedAt, &lastSync); err != nil {
			return nil, err
		}
		d.PairedAt, _ = time.Parse(time.RFC3339, pairedAt)
		if lastSync != "" {
			d.LastSyncAt, _ = time.Parse(time.RFC3339, lastSync)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *SQLiteRepository) TouchLastSync(ctx context.Context, name string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE paired_devices SET last_sync_at = ? WHERE name = ?`,
		at.UTC().Format(time.RFC3339), name)
	if err != nil {
		return fmt.Errorf("touch device %q: %w", name, err)
	}
	return rowAffected(res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM paired_devices WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete device %q: %w", name, err)
	}
	return rowAffected(res)
}

func rowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
