package users

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

func (r *SQLiteRepository) Get(ctx context.Context) (*models.UserCredential, error) {
	query := `SELECT id, username, password_hash, encryption_salt, auto_lock_secs, created_at
		FROM user_credentials WHERE id = 1`

	var c models.UserCredential
	var createdAt string
	err := r.db.QueryRowContext(ctx, query).
		Scan(&c.ID, &c.Username, &c.PasswordHash, &c.EncryptionSalt, &c.AutoLockSecs, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, username string, passwordHash string, encryptionSalt string) error {
	query := `INSERT INTO user_credentials (id, username, password_hash, encryption_salt, created_at)
		VALUES (1, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, username, passwordHash, encryptionSalt,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Exists(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_credentials`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check credential: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) UpdateEncryptionSalt(ctx context.Context, salt string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_credentials SET encryption_salt = ? WHERE id = 1`, salt)
	if err != nil {
		return fmt.Errorf("update salt: %w", err)
	}
	return requireRowAffected(res)
}

func (r *SQLiteRepository) UpdateAutoLock(ctx context.Context, secs int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_credentials SET auto_lock_secs = ? WHERE id = 1`, secs)
	if err != nil {
		return fmt.Errorf("update auto-lock: %w", err)
	}
	return requireRowAffected(res)
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
