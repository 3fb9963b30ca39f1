package repository

import (
	"context"

	"github.com/rpattn/standards/internal/domain"

	"github.com/google/uuid"
)

// StandardRepository stores the mutable aggregate roots.
type StandardRepository interface {
	Add(ctx context.Context, standard domain.Standard) (domain.Standard, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Standard, error)
	FindBySlug(ctx context.Context, spaceID uuid.UUID, slug string) (domain.Standard, error)
	// Update persists the standard only if the stored version still equals
	// expectedVersion; otherwise it returns domain.ErrVersionConflict.
	Update(ctx context.Context, standard domain.Standard, expectedVersion int) (domain.Standard, error)
	ListBySpace(ctx context.Context, spaceID uuid.UUID) ([]domain.Standard, error)
}

// StandardVersionRepository stores immutable version snapshots.
type StandardVersionRepository interface {
	Add(ctx context.Context, version domain.StandardVersion) (domain.StandardVersion, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.StandardVersion, error)
	FindByStandardID(ctx context.Context, standardID uuid.UUID) ([]domain.StandardVersion, error)
	FindLatestByStandardID(ctx context.Context, standardID uuid.UUID) (domain.StandardVersion, error)
	FindByStandardIDAndVersion(ctx context.Context, standardID uuid.UUID, version int) (domain.StandardVersion, error)
	UpdateSummary(ctx context.Context, id uuid.UUID, summary string) error
}

// RuleRepository stores version-scoped rules.
type RuleRepository interface {
	Add(ctx context.Context, rule domain.Rule) (domain.Rule, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Rule, error)
	FindByStandardVersionID(ctx context.Context, standardVersionID uuid.UUID) ([]domain.Rule, error)
	FindByStandardVersionIDs(ctx context.Context, standardVersionIDs []uuid.UUID) ([]domain.Rule, error)
}

// RuleExampleRepository stores examples owned by rules.
type RuleExampleRepository interface {
	Add(ctx context.Context, example domain.RuleExample) (domain.RuleExample, error)
	FindByRuleID(ctx context.Context, ruleID uuid.UUID) ([]domain.RuleExample, error)
}

// EnrichmentJobRepository tracks summary enrichment job lifecycle.
type EnrichmentJobRepository interface {
	Create(ctx context.Context, job domain.EnrichmentJob) (domain.EnrichmentJob, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.EnrichmentJob, error)
	ListByStandardVersion(ctx context.Context, standardVersionID uuid.UUID) ([]domain.EnrichmentJob, error)
	MarkRunning(ctx context.Context, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID, summary string) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
}
