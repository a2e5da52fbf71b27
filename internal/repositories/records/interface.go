// Package records is the persistence layer for encrypted vault entries.
//
// Each row stores the AEAD ciphertext and its nonce separately, a version
// counter bumped on every write, and string timestamps in RFC 3339 form so
// last-write-wins comparisons stay lexicographic. Deletions are tombstones:
// deleted_at is set and the row is kept for replica convergence.
package records

import (
	"context"

	"github.com/vibevault/vibevault/internal/models"
)

// Repository describes CRUD and sync queries for vault records.
type Repository interface {
	// Upsert inserts a record or replaces an existing one by uuid,
	// writing every replicated column as given.
	Upsert(ctx context.Context, rec *models.Record) error

	// GetByUUID returns a record (tombstones included), or common.ErrorNotFound.
	GetByUUID(ctx context.Context, uuid string) (*models.Record, error)

	// ListByProfile returns the live records of a profile ordered by label.
	// With includeDeleted it returns tombstones too.
	ListByProfile(ctx context.Context, profileID int64, includeDeleted bool) ([]models.Record, error)

	// ListUpdatedSince returns records of a profile, tombstones included,
	// whose updated_at is strictly after since. An empty since returns all.
	ListUpdatedSince(ctx context.Context, profileID int64, since string) ([]models.Record, error)

	// ListLegacy returns live records with an empty nonce, i.e. rows written
	// before encryption at rest and still holding plaintext.
	ListLegacy(ctx context.Context) ([]models.Record, error)

	// SoftDelete tombstones a record: sets deleted_at and updated_at to ts
	// and bumps the version.
	SoftDelete(ctx context.Context, uuid string, ts string) error

	// PurgeTombstones hard-deletes tombstones older than before and
	// returns the number removed.
	PurgeTombstones(ctx context.Context, before string) (int64, error)
}
