package standards

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rpattn/standards/internal/detection"
	"github.com/rpattn/standards/internal/domain"
	"github.com/rpattn/standards/internal/logger"
	"github.com/rpattn/standards/internal/metrics"
	"github.com/rpattn/standards/internal/repository"
)

// ExampleSpec describes an example to create alongside a rule.
type ExampleSpec struct {
	Lang     string
	Positive string
	Negative string
}

// RuleSpec describes one rule of a version being forged. OldRuleID links the
// rule to its predecessor in the previous version, when there is one.
type RuleSpec struct {
	Content   string
	Examples  []ExampleSpec
	OldRuleID *uuid.UUID
}

// ForgeRequest carries the complete desired state of the new version.
type ForgeRequest struct {
	StandardID     uuid.UUID
	Name           string
	Slug           string
	Description    string
	Scope          *string
	Summary        *string
	Version        int
	OrganizationID uuid.UUID
	UserID         *uuid.UUID
	Rules          []RuleSpec
}

// ForgeResult is the freshly created version with its rules.
type ForgeResult struct {
	Version  domain.StandardVersion
	Rules    []domain.Rule
	Examples map[uuid.UUID][]domain.RuleExample
	// RuleMapping maps every carried-forward rule id to its new id.
	RuleMapping map[uuid.UUID]uuid.UUID
}

// VersionForge creates new standard versions and re-creates their rules with
// fresh identities.
type VersionForge struct {
	versions  repository.StandardVersionRepository
	rules     repository.RuleRepository
	examples  repository.RuleExampleRepository
	detection detection.Port
	log       *logger.Logger

	migrationConcurrency int
}

type ForgeOption func(*VersionForge)

// WithForgeDetectionPort enables migration of detection artifacts.
func WithForgeDetectionPort(port detection.Port) ForgeOption {
	return func(f *VersionForge) {
		f.detection = port
	}
}

func WithForgeLogger(log *logger.Logger) ForgeOption {
	return func(f *VersionForge) {
		if log != nil {
			f.log = log.With("component", "VersionForge")
		}
	}
}

// WithMigrationConcurrency bounds the number of in-flight migration calls.
func WithMigrationConcurrency(n int) ForgeOption {
	return func(f *VersionForge) {
		if n > 0 {
			f.migrationConcurrency = n
		}
	}
}

func NewVersionForge(
	versions repository.StandardVersionRepository,
	rules repository.RuleRepository,
	examples repository.RuleExampleRepository,
	opts ...ForgeOption,
) *VersionForge {
	forge := &VersionForge{
		versions:             versions,
		rules:                rules,
		examples:             examples,
		log:                  logger.Nop(),
		migrationConcurrency: 8,
	}
	for _, opt := range opts {
		opt(forge)
	}
	return forge
}

// Forge persists the version, then its rules and examples, then fans the
// rule mapping out to the detection port. Persistence failures are returned;
// migration failures are only logged since the version already exists.
func (f *VersionForge) Forge(ctx context.Context, req ForgeRequest) (ForgeResult, error) {
	if req.StandardID == uuid.Nil {
		return ForgeResult{}, fmt.Errorf("%w: standard id is required", domain.ErrValidation)
	}
	if req.Version < 1 {
		return ForgeResult{}, fmt.Errorf("%w: version must be >= 1, got %d", domain.ErrValidation, req.Version)
	}

	version := domain.NewStandardVersion(req.StandardID, req.Name, req.Slug, req.Description, req.Scope, req.Version, req.Summary, req.UserID)
	saved, err := f.versions.Add(ctx, version)
	if err != nil {
		return ForgeResult{}, fmt.Errorf("failed to persist version %d: %w", req.Version, err)
	}

	result := ForgeResult{
		Version:     saved,
		Rules:       make([]domain.Rule, 0, len(req.Rules)),
		Examples:    make(map[uuid.UUID][]domain.RuleExample, len(req.Rules)),
		RuleMapping: make(map[uuid.UUID]uuid.UUID),
	}
	for position, spec := range req.Rules {
		rule, err := f.rules.Add(ctx, domain.NewRule(saved.ID, spec.Content, position))
		if err != nil {
			return ForgeResult{}, fmt.Errorf("failed to persist rule %d of version %d: %w", position, req.Version, err)
		}
		examples := make([]domain.RuleExample, 0, len(spec.Examples))
		for exPosition, ex := range spec.Examples {
			example, err := f.examples.Add(ctx, domain.NewRuleExample(rule.ID, ex.Lang, ex.Positive, ex.Negative, exPosition))
			if err != nil {
				return ForgeResult{}, fmt.Errorf("failed to persist example of rule %s: %w", rule.ID, err)
			}
			examples = append(examples, example)
		}
		result.Rules = append(result.Rules, rule)
		result.Examples[rule.ID] = examples
		if spec.OldRuleID != nil {
			result.RuleMapping[*spec.OldRuleID] = rule.ID
		}
	}
	metrics.VersionsForged.Inc()
	f.log.Debug("forged standard version",
		"standard_id", req.StandardID,
		"version", saved.Version,
		"rules", len(result.Rules),
		"carried_forward", len(result.RuleMapping),
	)

	f.migrateRules(ctx, req, result.RuleMapping)
	return result, nil
}

// migrateRules copies detection artifacts and assessments from every old rule
// to its successor. All calls run concurrently and are joined before return.
func (f *VersionForge) migrateRules(ctx context.Context, req ForgeRequest, mapping map[uuid.UUID]uuid.UUID) {
	if f.detection == nil || len(mapping) == 0 || req.OrganizationID == uuid.Nil || req.UserID == nil {
		return
	}
	// The version is committed; a caller going away must not cut migration short.
	ctx = context.WithoutCancel(ctx)
	metrics.RulesMigrated.Add(float64(len(mapping)))

	var g errgroup.Group
	g.SetLimit(f.migrationConcurrency)
	for oldID, newID := range mapping {
		migration := detection.RuleMigration{
			OldRuleID:      oldID,
			NewRuleID:      newID,
			OrganizationID: req.OrganizationID,
			UserID:         *req.UserID,
		}
		g.Go(func() error {
			bestEffort(ctx, f.log, "copy_detection_artifacts", func(ctx context.Context) error {
				res, err := f.detection.CopyArtifactsToNewRule(ctx, migration)
				if err == nil {
					f.log.Debug("copied detection artifacts", "old_rule_id", oldID, "new_rule_id", newID, "copied", res.CopiedCount)
				}
				return err
			}, "old_rule_id", oldID, "new_rule_id", newID)
			return nil
		})
		g.Go(func() error {
			bestEffort(ctx, f.log, "copy_detection_assessments", func(ctx context.Context) error {
				res, err := f.detection.CopyAssessments(ctx, migration)
				if err == nil {
					f.log.Debug("copied detection assessments", "old_rule_id", oldID, "new_rule_id", newID, "copied", res.CopiedCount)
				}
				return err
			}, "old_rule_id", oldID, "new_rule_id", newID)
			return nil
		})
	}
	_ = g.Wait()
}
