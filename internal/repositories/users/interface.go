// Package users persists the single master-credential row.
package users

import (
	"context"

	"github.com/vibevault/vibevault/internal/models"
)

// Repository stores the master password hash and the encryption salt.
// The table holds at most one row.
type Repository interface {
	// Get returns the stored credential, or common.ErrorNotFound if the
	// vault has never been registered.
	Get(ctx context.Context) (*models.UserCredential, error)

	// Create stores the credential row. Fails if one already exists.
	Create(ctx context.Context, username string, passwordHash string, encryptionSalt string) error

	// Exists reports whether a master password has been registered.
	Exists(ctx context.Context) (bool, error)

	// UpdateEncryptionSalt replaces the encryption salt. Used when a
	// first sync adopts the peer's salt, and to backfill legacy rows.
	UpdateEncryptionSalt(ctx context.Context, salt string) error

	// UpdateAutoLock stores the inactivity timeout in seconds.
	UpdateAutoLock(ctx context.Context, secs int64) error
}
