package domain

import (
	"time"

	"github.com/google/uuid"
)

// StandardVersion is an immutable snapshot of a standard. Only Summary may be
// filled in after creation.
type StandardVersion struct {
	ID          uuid.UUID  `json:"id"`
	StandardID  uuid.UUID  `json:"standard_id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Scope       *string    `json:"scope,omitempty"`
	Version     int        `json:"version"`
	Summary     *string    `json:"summary,omitempty"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewStandardVersion builds the snapshot row for version number `version`.
func NewStandardVersion(standardID uuid.UUID, name, slug, description string, scope *string, version int, summary *string, userID *uuid.UUID) StandardVersion {
	return StandardVersion{
		ID:          uuid.New(),
		StandardID:  standardID,
		Name:        name,
		Slug:        slug,
		Description: description,
		Scope:       copyString(scope),
		Version:     version,
		Summary:     copyString(summary),
		UserID:      copyUUID(userID),
		CreatedAt:   time.Now(),
	}
}

// IsInteractive reports whether a human created this version. Versions without a
// user come from non-interactive sources such as repository imports.
func (v StandardVersion) IsInteractive() bool {
	return v.UserID != nil
}

// HasSummary reports whether a non-empty summary has been recorded.
func (v StandardVersion) HasSummary() bool {
	return v.Summary != nil && *v.Summary != ""
}
