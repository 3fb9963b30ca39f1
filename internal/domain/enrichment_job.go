package domain

import (
	"time"

	"github.com/google/uuid"
)

// EnrichmentJobStatus captures lifecycle state for a summary enrichment job.
type EnrichmentJobStatus string

const (
	EnrichmentJobStatusQueued    EnrichmentJobStatus = "QUEUED"
	EnrichmentJobStatusRunning   EnrichmentJobStatus = "RUNNING"
	EnrichmentJobStatusCompleted EnrichmentJobStatus = "COMPLETED"
	EnrichmentJobStatusFailed    EnrichmentJobStatus = "FAILED"
)

// Terminal reports whether no further transition is possible.
func (s EnrichmentJobStatus) Terminal() bool {
	return s == EnrichmentJobStatusCompleted || s == EnrichmentJobStatusFailed
}

// EnrichmentJob mirrors a persisted summary job for dashboards and workers.
type EnrichmentJob struct {
	ID                uuid.UUID           `json:"id"`
	OrganizationID    uuid.UUID           `json:"organization_id"`
	UserID            *uuid.UUID          `json:"user_id,omitempty"`
	StandardID        uuid.UUID           `json:"standard_id"`
	StandardVersionID uuid.UUID           `json:"standard_version_id"`
	Status            EnrichmentJobStatus `json:"status"`
	Summary           *string             `json:"summary,omitempty"`
	ErrorMessage      *string             `json:"error_message,omitempty"`
	EnqueuedAt        time.Time           `json:"enqueued_at"`
	StartedAt         *time.Time          `json:"started_at,omitempty"`
	CompletedAt       *time.Time          `json:"completed_at,omitempty"`
	UpdatedAt         time.Time           `json:"updated_at"`
}
