package standards

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rpattn/standards/internal/domain"
)

// StandardView is a standard with its latest version and rules.
type StandardView struct {
	Standard domain.Standard        `json:"standard"`
	Version  domain.StandardVersion `json:"version"`
	Rules    []domain.Rule          `json:"rules"`
}

// VersionView is one historical version with its rules and their examples.
type VersionView struct {
	Version  domain.StandardVersion             `json:"version"`
	Rules    []domain.Rule                      `json:"rules"`
	Examples map[uuid.UUID][]domain.RuleExample `json:"examples"`
}

func (s *Service) GetStandard(ctx context.Context, id uuid.UUID) (StandardView, error) {
	snap, err := s.load(ctx, id)
	if err != nil {
		return StandardView{}, err
	}
	return StandardView{Standard: snap.standard, Version: snap.latest, Rules: snap.rules}, nil
}

func (s *Service) ListStandards(ctx context.Context, spaceID uuid.UUID) ([]domain.Standard, error) {
	standards, err := s.standards.ListBySpace(ctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standards of space %s: %w", spaceID, err)
	}
	return standards, nil
}

// ListVersions returns every version of a standard, oldest first.
func (s *Service) ListVersions(ctx context.Context, standardID uuid.UUID) ([]domain.StandardVersion, error) {
	if _, err := s.standards.GetByID(ctx, standardID); err != nil {
		return nil, fmt.Errorf("failed to load standard %s: %w", standardID, err)
	}
	versions, err := s.versions.FindByStandardID(ctx, standardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions of %s: %w", standardID, err)
	}
	return versions, nil
}

func (s *Service) GetVersion(ctx context.Context, standardID uuid.UUID, number int) (VersionView, error) {
	version, err := s.versions.FindByStandardIDAndVersion(ctx, standardID, number)
	if err != nil {
		return VersionView{}, fmt.Errorf("failed to load version %d of %s: %w", number, standardID, err)
	}
	rules, err := s.GetVersionRules(ctx, version.ID)
	if err != nil {
		return VersionView{}, err
	}
	view := VersionView{Version: version, Rules: rules, Examples: make(map[uuid.UUID][]domain.RuleExample, len(rules))}
	for _, rule := range rules {
		examples, err := s.examples.FindByRuleID(ctx, rule.ID)
		if err != nil {
			return VersionView{}, fmt.Errorf("failed to load examples of rule %s: %w", rule.ID, err)
		}
		view.Examples[rule.ID] = examples
	}
	return view, nil
}

func (s *Service) GetVersionRules(ctx context.Context, versionID uuid.UUID) ([]domain.Rule, error) {
	rules, err := s.rules.FindByStandardVersionID(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules of version %s: %w", versionID, err)
	}
	return rules, nil
}
