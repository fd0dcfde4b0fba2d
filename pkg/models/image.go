package models

// ImageRecord is one source image after the description phase. It is never
// mutated once created.
type ImageRecord struct {
	SourcePath        string `json:"source_path"`
	OriginalName      string `json:"original_name"`
	Description       string `json:"description"`
	CandidateFilename string `json:"candidate_filename"` // used only when the image ends up alone in a group
	Width             int    `json:"width"`
	Height            int    `json:"height"`
	SizeBytes         int64  `json:"size_bytes"`
}

// Group is a named, ordered cluster of images materialized as one output folder.
type Group struct {
	Name    string        `json:"name"`
	Members []ImageRecord `json:"members"`
}
