package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of an organization job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// DefaultModel is the captioning model used when a submission does not name one.
const DefaultModel = "qwen2.5vl"

// Settings is the immutable configuration snapshot a job runs with.
type Settings struct {
	Model               string  `json:"model"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	MinGroupSize        int     `json:"min_group_size"`
	CopyFiles           bool    `json:"copy_files"`
}

// DefaultSettings returns the settings applied to options a submission leaves unspecified.
func DefaultSettings() Settings {
	return Settings{
		Model:               DefaultModel,
		SimilarityThreshold: 0.85,
		MinGroupSize:        3,
		CopyFiles:           true,
	}
}

// Validate checks the ranges accepted by the grouping phase.
func (s Settings) Validate() error {
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	if s.SimilarityThreshold <= 0 || s.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in (0, 1], got %v", s.SimilarityThreshold)
	}
	if s.MinGroupSize < 1 {
		return fmt.Errorf("min_group_size must be >= 1, got %d", s.MinGroupSize)
	}
	return nil
}

// GroupSummary is the per-group member count reported in JobResults.
type GroupSummary struct {
	Name   string `json:"name"`
	Images int    `json:"images"`
}

// JobResults is populated only once a job has completed.
type JobResults struct {
	TotalImages   int            `json:"total_images"`
	GroupsCreated int            `json:"groups_created"`
	Groups        []GroupSummary `json:"groups"`
}

// Job tracks one organization run. The API returns a job_id on POST /api/v1/jobs;
// the client polls GET /api/v1/jobs/{job_id} until status is completed or failed.
type Job struct {
	ID              uuid.UUID   `json:"id"`
	Status          JobStatus   `json:"status"`
	Progress        float64     `json:"progress"`
	TotalImages     int         `json:"total_images"`
	ProcessedImages int         `json:"processed_images"`
	CurrentActivity string      `json:"current_activity"`
	InputFolder     string      `json:"input_folder"`
	OutputFolder    string      `json:"output_folder"`
	Settings        Settings    `json:"settings"`
	Results         *JobResults `json:"results,omitempty"`
	Error           string      `json:"error,omitempty"`
	ErrorKind       string      `json:"error_kind,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	StartedAt       *time.Time  `json:"started_at,omitempty"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
}

// Clone returns a deep copy safe to hand to readers outside the job table lock.
func (j *Job) Clone() Job {
	out := *j
	if j.Results != nil {
		res := *j.Results
		res.Groups = append([]GroupSummary(nil), j.Results.Groups...)
		out.Results = &res
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		out.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	return out
}
