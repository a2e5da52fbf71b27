package profiles

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

func (r *SQLiteRepository) Create(ctx context.Context, name string) (*models.Profile, error) {
	createdAt := time.Now().UTC().Format(time.RFC3339)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (name, created_at) VALUES (?, ?)`, name, createdAt)
	if err != nil {
		return nil, fmt.Errorf("create profile %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	created, _ := time.Parse(time.RFC3339, createdAt)
	return &models.Profile{ID: id, Name: name, CreatedAt: created}, nil
}

func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (*models.Profile, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM profiles WHERE name = ?`, name)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Profile, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM profiles WHERE id = ?`, id)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg any) (*models.Profile, error) {
	var p models.Profile
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&p.ID, &p.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &p, nil
}

func (r *SQLiteRepository) ListWithCounts(ctx context.Context) ([]models.ProfileWithCount, error) {
	query := `SELECT p.id, p.name, p.created_at,
			COUNT(CASE WHEN r.deleted_at = '' THEN r.uuid END)
		FROM profiles p
		LEFT JOIN records r ON r.profile_id = p.id
		GROUP BY p.id
		ORDER BY p.name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var list []models.ProfileWithCount
	for rows.Next() {
		var p models.ProfileWithCount
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &createdAt, &p.RecordCount); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *SQLiteRepository) Rename(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("rename profile: %w", err)
	}
	return rowAffected(res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
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
