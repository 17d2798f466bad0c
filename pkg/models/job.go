package models

import (
	"time"
)

// Job represents one server-side conversion task tracked by this client.
//
// The server owns status, progress, message, result files, timestamps,
// error and validation stats; those fields are refreshed on every poll.
// Filename, FileSize, Options, FileDate and FileType are set by the
// client at submission time and are never replaced once set.
type Job struct {
	JobID           string         `json:"job_id"`
	Status          Status         `json:"status"`
	Progress        int            `json:"progress"`
	Message         string         `json:"message,omitempty"`
	ResultFiles     []string       `json:"result_files,omitempty"`
	Error           string         `json:"error,omitempty"`
	ValidationStats map[string]any `json:"validation_stats,omitempty"`
	StartedAt       *time.Time     `json:"started_at,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`

	// Client-owned submission metadata.
	Filename string            `json:"filename,omitempty"`
	FileSize int64             `json:"file_size,omitempty"`
	FileDate string            `json:"file_date,omitempty"` // YYYY-MM-DD
	FileType string            `json:"file_type,omitempty"` // beer, sd, cb, general
	Options  ProcessingOptions `json:"options,omitempty"`
}

// ProcessingOptions are the per-submission conversion flags.
type ProcessingOptions struct {
	// UsePlantaAsOrigen makes the converter read the origin from the
	// plant column instead of the default origin column.
	UsePlantaAsOrigen bool `json:"use_planta_as_origen"`
	// SkipPlacas suppresses generation of the availability-report artifact.
	SkipPlacas bool `json:"skip_placas"`
}

// JobList is the payload of the recency view endpoint.
type JobList struct {
	Jobs  []Job `json:"jobs"`
	Total int   `json:"total"`
}
