package store

import (
	"context"

	"localch-scraper/internal/models"
)

// StatusStore persists run progress for out-of-band inspection.
type StatusStore interface {
	SetStatus(ctx context.Context, status models.RunStatus) error
	GetStatus(ctx context.Context, runID string) (models.RunStatus, bool, error)
}
