// Package enrichment computes version summaries asynchronously and writes
// them back onto the version they were requested for.
package enrichment

import (
	"context"

	"github.com/google/uuid"

	"github.com/rpattn/standards/internal/domain"
)

// Input is the payload of a summary job: the committed version and its rules.
type Input struct {
	OrganizationID  uuid.UUID
	UserID          *uuid.UUID
	StandardVersion domain.StandardVersion
	Rules           []domain.Rule
}

// Completed is delivered when a job produced a summary.
type Completed struct {
	JobID   uuid.UUID
	Input   Input
	Summary string
}

// Failed is delivered when a job could not produce a summary.
type Failed struct {
	JobID uuid.UUID
	Input Input
	Err   error
}

// Listener receives job outcomes. Implementations must not panic; the queue
// recovers anyway.
type Listener interface {
	OnCompleted(ctx context.Context, event Completed)
	OnFailed(ctx context.Context, event Failed)
}

// Summarizer turns a version and its rules into a short description.
type Summarizer interface {
	Summarize(ctx context.Context, version domain.StandardVersion, rules []domain.Rule) (string, error)
}

// SummarizerFunc adapts a function to Summarizer.
type SummarizerFunc func(ctx context.Context, version domain.StandardVersion, rules []domain.Rule) (string, error)

func (f SummarizerFunc) Summarize(ctx context.Context, version domain.StandardVersion, rules []domain.Rule) (string, error) {
	return f(ctx, version, rules)
}
