// Package detection describes the external detection-program capability that
// keeps per-rule artifacts in sync when rule identities change.
package detection

import (
	"context"

	"github.com/google/uuid"
)

// RuleMigration asks the detection side to move artifacts from one rule
// identity to its successor.
type RuleMigration struct {
	OldRuleID      uuid.UUID `json:"oldRuleId"`
	NewRuleID      uuid.UUID `json:"newRuleId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	UserID         uuid.UUID `json:"userId"`
}

// CopyResult reports how many artifacts were copied.
type CopyResult struct {
	CopiedCount int `json:"copiedCount"`
}

// AssessmentRefresh asks for the assessment of one (rule, language) pair.
type AssessmentRefresh struct {
	RuleID         uuid.UUID `json:"ruleId"`
	Language       string    `json:"language"`
	OrganizationID uuid.UUID `json:"organizationId"`
	UserID         uuid.UUID `json:"userId"`
}

// Port is the optional detection-program capability.
type Port interface {
	CopyArtifactsToNewRule(ctx context.Context, req RuleMigration) (CopyResult, error)
	CopyAssessments(ctx context.Context, req RuleMigration) (CopyResult, error)
	RefreshAssessment(ctx context.Context, req AssessmentRefresh) error
}
