package models

import (
	"time"

	"github.com/google/uuid"
)

// Placement records one file written into the output tree by the organizer.
type Placement struct {
	ID              uuid.UUID `db:"id"               json:"id"`
	JobID           uuid.UUID `db:"job_id"           json:"job_id"`
	GroupName       string    `db:"group_name"       json:"group_name"`
	SourcePath      string    `db:"source_path"      json:"source_path"`
	DestinationPath string    `db:"destination_path" json:"destination_path"`
	Description     string    `db:"description"      json:"description"`
	Copied          bool      `db:"copied"           json:"copied"`
	CreatedAt       time.Time `db:"created_at"       json:"created_at"`
}
