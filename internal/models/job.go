package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus enumerates analysis job lifecycle states.
type JobStatus string

const (
	StatusQueued     JobStatus = "QUEUED"
	StatusProcessing JobStatus = "PROCESSING"
	StatusCompleted  JobStatus = "COMPLETED"
	StatusFailed     JobStatus = "FAILED"
)

// Terminal reports whether a job in this status accepts no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IncidentSnapshot is the submission contract consumed from the incident service.
// Required fields are validated before a job is created; a severity outside
// SEV1..SEV5 is normalized to SEV3.
type IncidentSnapshot struct {
	IncidentID        uuid.UUID `json:"incidentId" validate:"required"`
	Title             string    `json:"title" validate:"required,notblank"`
	Description       string    `json:"description" validate:"required,notblank"`
	Severity          string    `json:"severity"`
	LogContent        string    `json:"logContent" validate:"required,notblank"`
	IncidentStartTime time.Time `json:"incidentStartTime" validate:"required"`
	CreatedAt         time.Time `json:"createdAt" validate:"required"`

	// Optional context that improves root-cause quality.
	ServiceName string `json:"serviceName,omitempty"`
	Environment string `json:"environment,omitempty"`
	Region      string `json:"region,omitempty"`
}

// Job is the in-memory record for a single analysis request. Records are
// replaced whole on every transition; only the owning background task writes
// to a given job after creation.
type Job struct {
	ID                uuid.UUID
	IncidentID        uuid.UUID
	Snapshot          IncidentSnapshot
	Status            JobStatus
	MarkdownReport    string
	ErrorMessage      string
	PIIEntitiesMasked int
	CreatedAt         time.Time
	CompletedAt       *time.Time
}

// JobResult is the polling view of a job exposed to callers.
type JobResult struct {
	JobID             uuid.UUID  `json:"jobId"`
	IncidentID        uuid.UUID  `json:"incidentId"`
	Status            JobStatus  `json:"status"`
	MarkdownReport    *string    `json:"markdownReport"`
	ErrorMessage      *string    `json:"errorMessage"`
	CreatedAt         time.Time  `json:"createdAt"`
	CompletedAt       *time.Time `json:"completedAt"`
	PIIEntitiesMasked int        `json:"piiEntitiesMasked"`
}

// SeverityDefault is applied when a submission carries an unknown severity.
const SeverityDefault = "SEV3"

var knownSeverities = map[string]struct{}{
	"SEV1": {}, "SEV2": {}, "SEV3": {}, "SEV4": {}, "SEV5": {},
}

// NormalizeSeverity maps unknown severity strings to SeverityDefault.
func NormalizeSeverity(s string) string {
	if _, ok := knownSeverities[s]; ok {
		return s
	}
	return SeverityDefault
}
