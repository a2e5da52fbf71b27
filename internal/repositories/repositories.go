// Package repositories wires the SQLite-backed repository implementations
// together and owns database bootstrap (open + goose migrations).
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/vibevault/vibevault/internal/migrations"
	"github.com/vibevault/vibevault/internal/repositories/devices"
	"github.com/vibevault/vibevault/internal/repositories/profiles"
	"github.com/vibevault/vibevault/internal/repositories/records"
	"github.com/vibevault/vibevault/internal/repositories/synclog"
	"github.com/vibevault/vibevault/internal/repositories/users"
)

// Repositories bundles the per-entity repositories over one database handle.
type Repositories struct {
	DB       *sql.DB
	Users    users.Repository
	Profiles profiles.Repository
	Records  records.Repository
	Devices  devices.Repository
	SyncLog  synclog.Repository
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite database at dsn, migrates the schema and
// returns the repository bundle.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &Repositories{
		DB:       db,
		Users:    users.NewSQLiteRepository(db),
		Profiles: profiles.NewSQLiteRepository(db),
		Records:  records.NewSQLiteRepository(db),
		Devices:  devices.NewSQLiteRepository(db),
		SyncLog:  synclog.NewSQLiteRepository(db),
	}, nil
}

// Close releases the underlying database handle.
func (r *Repositories) Close() error {
	return r.DB.Close()
}
