package store

import (
	"context"
	"errors"

	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
	"github.com/google/uuid"
)

var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface for the placement ledger. Jobs
// themselves are never persisted; only the files they wrote are.
type Store interface {
	Ping(ctx context.Context) error

	CreatePlacement(ctx context.Context, p *models.Placement) error
	ListPlacementsByJob(ctx context.Context, jobID uuid.UUID) ([]*models.Placement, error)
	CountPlacementsByGroup(ctx context.Context, jobID uuid.UUID) (map[string]int, error)
}
