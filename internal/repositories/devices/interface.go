// Package devices remembers paired sync peers and the key material needed
// to re-establish a session without re-pairing.
package devices

import (
	"context"
	"time"

	"github.com/vibevault/vibevault/internal/models"
)

// Repository describes persistence for paired devices.
type Repository interface {
	// Upsert stores a device by name, replacing its key material if the
	// name is already paired.
	Upsert(ctx context.Context, d *models.PairedDevice) error

	// GetByName returns a device, or common.ErrorNotFound.
	GetByName(ctx context.Context, name string) (*models.PairedDevice, error)

	// List returns all paired devices ordered by name.
	List(ctx context.Context) ([]models.PairedDevice, error)

	// TouchLastSync records the completion time of a sync with the device.
	TouchLastSync(ctx context.Context, name string, at time.Time) error

	// Delete forgets a device.
	Delete(ctx context.Context, name string) error
}
