// Package profiles persists the named vault profiles that partition records.
package profiles

import (
	"context"

	"github.com/vibevault/vibevault/internal/models"
)

// Repository describes CRUD operations for profiles.
type Repository interface {
	// Create inserts a new profile and returns it.
	Create(ctx context.Context, name string) (*models.Profile, error)

	// GetByName returns a profile by its unique name, or common.ErrorNotFound.
	GetByName(ctx context.Context, name string) (*models.Profile, error)

	// GetByID returns a profile by id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.Profile, error)

	// ListWithCounts returns all profiles with their live record counts,
	// ordered by name.
	ListWithCounts(ctx context.Context) ([]models.ProfileWithCount, error)

	// Rename changes a profile's name.
	Rename(ctx context.Context, id int64, name string) error

	// Delete removes a profile row. Callers are responsible for refusing
	// to delete profiles that still hold records.
	Delete(ctx context.Context, id int64) error
}
