package handler

import (
	"context"
	"net/http"

	"github.com/Cavedragon13/ai-image-organizer/internal/api/response"
	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
	"github.com/google/uuid"
)

// PlacementLister reads the placement ledger.
type PlacementLister interface {
	ListPlacementsByJob(ctx context.Context, jobID uuid.UUID) ([]*models.Placement, error)
	CountPlacementsByGroup(ctx context.Context, jobID uuid.UUID) (map[string]int, error)
}

// NewListPlacementsHandler returns an http.HandlerFunc for
// GET /api/v1/jobs/{jobID}/placements. The ledger outlives the in-memory
// job table, so an unknown job simply yields an empty list.
func NewListPlacementsHandler(ledger PlacementLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseJobID(w, r)
		if !ok {
			return
		}

		placements, err := ledger.ListPlacementsByJob(r.Context(), id)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to read placements", nil)
			return
		}
		groups, err := ledger.CountPlacementsByGroup(r.Context(), id)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to read placements", nil)
			return
		}

		response.JSON(w, map[string]any{
			"job_id":     id.String(),
			"groups":     groups,
			"placements": placements,
		})
	}
}
