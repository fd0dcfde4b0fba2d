package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Cavedragon13/ai-image-organizer/internal/jobs"
	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock job service ---

type mockJobs struct {
	submitted models.Settings
	submitErr error
	id        uuid.UUID
	jobs      []models.Job
}

func (m *mockJobs) Submit(_ context.Context, _, _ string, s models.Settings) (uuid.UUID, error) {
	m.submitted = s
	if m.submitErr != nil {
		return uuid.Nil, m.submitErr
	}
	return m.id, nil
}

func (m *mockJobs) Get(id uuid.UUID) (models.Job, error) {
	for _, j := range m.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return models.Job{}, jobs.ErrNotFound
}

func (m *mockJobs) List() []models.Job { return m.jobs }

// --- helpers ---

func postJob(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

// withJobID routes the request through chi so URL params resolve.
func withJobID(h http.HandlerFunc, pattern, target string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Get(pattern, h)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Error.Code
}

// --- submit ---

func TestSubmitJob_AppliesDefaults(t *testing.T) {
	svc := &mockJobs{id: uuid.New()}
	h := NewSubmitJobHandler(svc, models.DefaultSettings())

	rec := postJob(t, h, `{"input_folder":"/in","output_folder":"/out","settings":{"min_group_size":2,"copy_files":false}}`)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var env struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, svc.id.String(), env.Data["job_id"])
	assert.Equal(t, "pending", env.Data["status"])

	assert.Equal(t, models.Settings{
		Model:               models.DefaultModel,
		SimilarityThreshold: 0.85,
		MinGroupSize:        2,
		CopyFiles:           false,
	}, svc.submitted)
}

func TestSubmitJob_NoSettingsUsesAllDefaults(t *testing.T) {
	svc := &mockJobs{id: uuid.New()}
	h := NewSubmitJobHandler(svc, models.DefaultSettings())

	rec := postJob(t, h, `{"input_folder":"/in","output_folder":"/out"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, models.DefaultSettings(), svc.submitted)
}

func TestSubmitJob_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"bad json", `{`, nil, http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing input", `{"output_folder":"/out"}`, nil, http.StatusBadRequest, "INVALID_REQUEST"},
		{"missing output", `{"input_folder":"/in"}`, nil, http.StatusBadRequest, "INVALID_REQUEST"},
		{"invalid input", `{"input_folder":"/in","output_folder":"/out"}`,
			fmt.Errorf("%w: input folder /in does not exist", jobs.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{"queue full", `{"input_folder":"/in","output_folder":"/out"}`,
			jobs.ErrQueueFull, http.StatusServiceUnavailable, "QUEUE_FULL"},
		{"shutting down", `{"input_folder":"/in","output_folder":"/out"}`,
			jobs.ErrShuttingDown, http.StatusServiceUnavailable, "SHUTTING_DOWN"},
		{"unexpected", `{"input_folder":"/in","output_folder":"/out"}`,
			errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSubmitJobHandler(&mockJobs{submitErr: tt.err}, models.DefaultSettings())
			rec := postJob(t, h, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantErr, errCode(t, rec))
		})
	}
}

// --- get ---

func TestGetJob(t *testing.T) {
	job := models.Job{ID: uuid.New(), Status: models.JobStatusRunning, Progress: 30, CurrentActivity: "cat.png"}
	h := NewGetJobHandler(&mockJobs{jobs: []models.Job{job}})

	rec := withJobID(h, "/api/v1/jobs/{jobID}", "/api/v1/jobs/"+job.ID.String())

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data models.Job `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, job.ID, env.Data.ID)
	assert.Equal(t, models.JobStatusRunning, env.Data.Status)
	assert.Equal(t, 30.0, env.Data.Progress)
	assert.Equal(t, "cat.png", env.Data.CurrentActivity)
}

func TestGetJob_NotFound(t *testing.T) {
	h := NewGetJobHandler(&mockJobs{})
	rec := withJobID(h, "/api/v1/jobs/{jobID}", "/api/v1/jobs/"+uuid.NewString())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "JOB_NOT_FOUND", errCode(t, rec))
}

func TestGetJob_InvalidID(t *testing.T) {
	h := NewGetJobHandler(&mockJobs{})
	rec := withJobID(h, "/api/v1/jobs/{jobID}", "/api/v1/jobs/not-a-uuid")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- list ---

func sampleJobs(n int) []models.Job {
	base := time.Now()
	out := make([]models.Job, n)
	for i := range out {
		status := models.JobStatusCompleted
		if i%2 == 1 {
			status = models.JobStatusFailed
		}
		out[i] = models.Job{ID: uuid.New(), Status: status, CreatedAt: base.Add(time.Duration(i) * time.Second)}
	}
	return out
}

func TestListJobs_Pagination(t *testing.T) {
	all := sampleJobs(5)
	h := NewListJobsHandler(&mockJobs{jobs: all})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/jobs?page=2&limit=2", nil)
	rec := httptest.NewRecorder()
	h(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []models.Job `json:"data"`
		Meta struct {
			Page    int  `json:"page"`
			Limit   int  `json:"limit"`
			Total   int  `json:"total"`
			HasNext bool `json:"has_next"`
		} `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.Len(t, env.Data, 2)
	assert.Equal(t, all[2].ID, env.Data[0].ID)
	assert.Equal(t, all[3].ID, env.Data[1].ID)
	assert.Equal(t, 5, env.Meta.Total)
	assert.True(t, env.Meta.HasNext)
}

func TestListJobs_StatusFilterAndPastEnd(t *testing.T) {
	h := NewListJobsHandler(&mockJobs{jobs: sampleJobs(5)})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/jobs?status=failed", nil)
	rec := httptest.NewRecorder()
	h(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []models.Job `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Len(t, env.Data, 2)

	r = httptest.NewRequest(http.MethodGet, "/api/v1/jobs?page=9", nil)
	rec = httptest.NewRecorder()
	h(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)
	env.Data = nil
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Empty(t, env.Data)
}

func TestListJobs_HugePageIsEmptyNotPanic(t *testing.T) {
	h := NewListJobsHandler(&mockJobs{jobs: sampleJobs(3)})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/jobs?page=92233720368547770&limit=100", nil)
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { h(rec, r) })

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []models.Job `json:"data"`
		Meta struct {
			Total   int  `json:"total"`
			HasNext bool `json:"has_next"`
		} `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Empty(t, env.Data)
	assert.Equal(t, 3, env.Meta.Total)
	assert.False(t, env.Meta.HasNext)
}

func TestListJobs_InvalidParams(t *testing.T) {
	h := NewListJobsHandler(&mockJobs{})
	for _, q := range []string{"page=0", "page=x", "limit=-1"} {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/jobs?"+q, nil)
		rec := httptest.NewRecorder()
		h(rec, r)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}
