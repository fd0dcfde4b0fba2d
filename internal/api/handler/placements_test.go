package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLedger struct {
	rows []*models.Placement
	err  error
}

func (m *mockLedger) ListPlacementsByJob(_ context.Context, _ uuid.UUID) ([]*models.Placement, error) {
	return m.rows, m.err
}

func (m *mockLedger) CountPlacementsByGroup(_ context.Context, _ uuid.UUID) (map[string]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	counts := map[string]int{}
	for _, r := range m.rows {
		counts[r.GroupName]++
	}
	return counts, nil
}

func TestListPlacements(t *testing.T) {
	jobID := uuid.New()
	ledger := &mockLedger{rows: []*models.Placement{
		{ID: uuid.New(), JobID: jobID, GroupName: "red_car", DestinationPath: "/out/red_car/red_car_01.jpg"},
	}}
	h := NewListPlacementsHandler(ledger)

	rec := withJobID(h, "/api/v1/jobs/{jobID}/placements", "/api/v1/jobs/"+jobID.String()+"/placements")

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data struct {
			JobID      string             `json:"job_id"`
			Groups     map[string]int     `json:"groups"`
			Placements []models.Placement `json:"placements"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, jobID.String(), env.Data.JobID)
	assert.Equal(t, map[string]int{"red_car": 1}, env.Data.Groups)
	require.Len(t, env.Data.Placements, 1)
	assert.Equal(t, "red_car", env.Data.Placements[0].GroupName)
}

func TestListPlacements_StoreError(t *testing.T) {
	h := NewListPlacementsHandler(&mockLedger{err: errors.New("db down")})
	rec := withJobID(h, "/api/v1/jobs/{jobID}/placements", "/api/v1/jobs/"+uuid.NewString()+"/placements")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errCode(t, rec))
}

func TestListPlacements_InvalidID(t *testing.T) {
	h := NewListPlacementsHandler(&mockLedger{})
	rec := withJobID(h, "/api/v1/jobs/{jobID}/placements", "/api/v1/jobs/zzz/placements")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
