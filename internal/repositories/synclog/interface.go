// Package synclog records the outcome of completed merges for the history view.
package synclog

import (
	"context"

	"github.com/vibevault/vibevault/internal/models"
)

// Repository appends and lists sync log entries.
type Repository interface {
	// Append stores one entry.
	Append(ctx context.Context, e *models.SyncLogEntry) error

	// List returns the most recent entries, newest first, up to limit.
	List(ctx context.Context, limit int) ([]models.SyncLogEntry, error)
}
