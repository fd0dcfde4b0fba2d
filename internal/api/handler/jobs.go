package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Cavedragon13/ai-image-organizer/internal/api/response"
	"github.com/Cavedragon13/ai-image-organizer/internal/jobs"
	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// JobSubmitter is the part of the job manager the submit handler uses.
type JobSubmitter interface {
	Submit(ctx context.Context, inputFolder, outputFolder string, settings models.Settings) (uuid.UUID, error)
}

// JobReader is the read side of the job manager.
type JobReader interface {
	Get(id uuid.UUID) (models.Job, error)
	List() []models.Job
}

// settingsRequest uses pointers so omitted options take server defaults.
type settingsRequest struct {
	Model               *string  `json:"model"`
	SimilarityThreshold *float64 `json:"similarity_threshold"`
	MinGroupSize        *int     `json:"min_group_size"`
	CopyFiles           *bool    `json:"copy_files"`
}

func (s settingsRequest) apply(defaults models.Settings) models.Settings {
	out := defaults
	if s.Model != nil && *s.Model != "" {
		out.Model = *s.Model
	}
	if s.SimilarityThreshold != nil {
		out.SimilarityThreshold = *s.SimilarityThreshold
	}
	if s.MinGroupSize != nil {
		out.MinGroupSize = *s.MinGroupSize
	}
	if s.CopyFiles != nil {
		out.CopyFiles = *s.CopyFiles
	}
	return out
}

// NewSubmitJobHandler returns an http.HandlerFunc for POST /api/v1/jobs.
func NewSubmitJobHandler(svc JobSubmitter, defaults models.Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			InputFolder  string          `json:"input_folder"`
			OutputFolder string          `json:"output_folder"`
			Settings     settingsRequest `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.InputFolder == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "input_folder is required", nil)
			return
		}
		if req.OutputFolder == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "output_folder is required", nil)
			return
		}

		id, err := svc.Submit(r.Context(), req.InputFolder, req.OutputFolder, req.Settings.apply(defaults))
		if err != nil {
			switch {
			case errors.Is(err, jobs.ErrInvalidInput):
				response.Error(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
			case errors.Is(err, jobs.ErrQueueFull):
				w.Header().Set("Retry-After", "30")
				response.Error(w, http.StatusServiceUnavailable, "QUEUE_FULL",
					"Too many jobs are waiting; try again later", nil)
			case errors.Is(err, jobs.ErrShuttingDown):
				response.Error(w, http.StatusServiceUnavailable, "SHUTTING_DOWN",
					"The server is shutting down", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.Accepted(w, map[string]string{
			"job_id": id.String(),
			"status": string(models.JobStatusPending),
		})
	}
}

// NewGetJobHandler returns an http.HandlerFunc for GET /api/v1/jobs/{jobID}.
func NewGetJobHandler(svc JobReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseJobID(w, r)
		if !ok {
			return
		}

		job, err := svc.Get(id)
		if err != nil {
			if errors.Is(err, jobs.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "Job not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, job)
	}
}

// NewListJobsHandler returns an http.HandlerFunc for GET /api/v1/jobs.
// Jobs are ordered by creation time; ?status= filters, ?page= and ?limit=
// paginate.
func NewListJobsHandler(svc JobReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		page, err := intParam(q.Get("page"), 1)
		if err != nil || page < 1 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "page must be a positive integer", nil)
			return
		}
		limit, err := intParam(q.Get("limit"), defaultPageLimit)
		if err != nil || limit < 1 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer", nil)
			return
		}
		if limit > maxPageLimit {
			limit = maxPageLimit
		}

		all := svc.List()
		if status := q.Get("status"); status != "" {
			filtered := make([]models.Job, 0, len(all))
			for _, j := range all {
				if string(j.Status) == status {
					filtered = append(filtered, j)
				}
			}
			all = filtered
		}

		total := len(all)
		start := total
		if page-1 <= total/limit {
			start = min((page-1)*limit, total)
		}
		end := start + limit
		if end > total {
			end = total
		}

		response.Collection(w, all[start:end], response.PaginationMeta{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasNext: end < total,
		})
	}
}

func parseJobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "jobID must be a valid UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
