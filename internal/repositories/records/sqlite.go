package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

// Upsert inserts or replaces a record by uuid. On conflict every replicated
// column is overwritten so merges can apply an incoming row verbatim.
func (r *SQLiteRepository) Upsert(ctx context.Context, rec *models.Record) error {
	query := `INSERT INTO records
			(uuid, profile_id, label, ciphertext, nonce, version, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uuid) DO UPDATE SET
			label      = excluded.label,
			ciphertext = excluded.ciphertext,
			nonce      = excluded.nonce,
			version    = excluded.version,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`
	_, err := r.db.ExecContext(ctx, query,
		rec.UUID, rec.ProfileID, rec.Label, rec.Ciphertext, rec.Nonce,
		rec.Version, rec.CreatedAt, rec.UpdatedAt, rec.DeletedAt)
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", rec.UUID, err)
	}
	return nil
}

func (r *SQLiteRepository) GetByUUID(ctx context.Context, uuid string) (*models.Record, error) {
	query := `SELECT uuid, profile_id, label, ciphertext, nonce, version, created_at, updated_at, deleted_at
		FROM records WHERE uuid = ?`

	var rec models.Record
	err := r.db.QueryRowContext(ctx, query, uuid).Scan(
		&rec.UUID, &rec.ProfileID, &rec.Label, &rec.Ciphertext, &rec.Nonce,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt, &rec.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", uuid, err)
	}
	return &rec, nil
}

func (r *SQLiteRepository) ListByProfile(ctx context.Context, profileID int64, includeDeleted bool) ([]models.Record, error) {
	query := `SELECT uuid, profile_id, label, ciphertext, nonce, version, created_at, updated_at, deleted_at
		FROM records WHERE profile_id = ?`
	if !includeDeleted {
		query += ` AND deleted_at = ''`
	}
	query += ` ORDER BY label`

	return r.queryRecords(ctx, query, profileID)
}

func (r *SQLiteRepository) ListUpdatedSince(ctx context.Context, profileID int64, since string) ([]models.Record, error) {
	query := `SELECT uuid, profile_id, label, ciphertext, nonce, version, created_at, updated_at, deleted_at
		FROM records WHERE profile_id = ? AND updated_at > ? ORDER BY updated_at`
	return r.queryRecords(ctx, query, profileID, since)
}

func (r *SQLiteRepository) ListLegacy(ctx context.Context) ([]models.Record, error) {
	query := `SELECT uuid, profile_id, label, ciphertext, nonce, version, created_at, updated_at, deleted_at
		FROM records WHERE length(nonce) = 0 AND deleted_at = ''`
	return r.queryRecords(ctx, query)
}

func (r *SQLiteRepository) queryRecords(ctx context.Context, query string, args ...any) ([]models.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var list []models.Record
	for rows.Next() {
		var rec models.Record
		if err := rows.Scan(&rec.UUID, &rec.ProfileID, &rec.Label, &rec.Ciphertext,
			&rec.Nonce, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt, &rec.DeletedAt); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, uuid string, ts string) error {
	query := `UPDATE records
		SET deleted_at = ?, updated_at = ?, version = version + 1
		WHERE uuid = ? AND deleted_at = ''`
	res, err := r.db.ExecContext(ctx, query, ts, ts, uuid)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", uuid, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) PurgeTombstones(ctx context.Context, before string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM records WHERE deleted_at <> '' AND deleted_at < ?`, before)
	if err != nil {
		return 0, fmt.Errorf("purge tombstones: %w", err)
	}
	return res.RowsAffected()
}
