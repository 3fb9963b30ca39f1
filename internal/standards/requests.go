package standards

import (
	"github.com/google/uuid"

	"github.com/rpattn/standards/internal/domain"
)

// Actor identifies who is performing an edit. A nil UserID marks a
// non-interactive origin such as a repository import.
type Actor struct {
	OrganizationID uuid.UUID
	UserID         *uuid.UUID
	// OriginSkill tags emitted events with the tool that initiated the edit.
	OriginSkill *string
	Source      string
}

type ExampleInput struct {
	Lang     string `json:"lang"`
	Positive string `json:"positive"`
	Negative string `json:"negative"`
}

type RuleInput struct {
	Content  string         `json:"content"`
	Examples []ExampleInput `json:"examples,omitempty"`
}

// CreateStandardRequest creates a standard. Slug, when set, replaces Name as
// the base of the generated slug.
type CreateStandardRequest struct {
	Actor
	SpaceID     uuid.UUID
	Slug        string
	Name        string
	Description string
	Scope       *string
	Summary     *string
	Rules       []RuleInput
}

// RuleUpdate is one rule of a full edit. ID references a rule of the latest
// version; nil adds a new rule. Nil Examples keeps the existing examples.
type RuleUpdate struct {
	ID       *uuid.UUID      `json:"id,omitempty"`
	Content  string          `json:"content"`
	Examples *[]ExampleInput `json:"examples,omitempty"`
}

type UpdateStandardRequest struct {
	Actor
	StandardID  uuid.UUID
	Name        string
	Description string
	Scope       *string
	Rules       []RuleUpdate
}

type RenameStandardRequest struct {
	Actor
	StandardID uuid.UUID
	Name       string
}

type UpdateDescriptionRequest struct {
	Actor
	StandardID  uuid.UUID
	Description string
}

type AddRuleRequest struct {
	Actor
	StandardID uuid.UUID
	Rule       RuleInput
}

type UpdateRuleRequest struct {
	Actor
	StandardID uuid.UUID
	RuleID     uuid.UUID
	Content    string
}

type DeleteRuleRequest struct {
	Actor
	StandardID uuid.UUID
	RuleID     uuid.UUID
}

// EditResult is returned by every edit. When Changed is false the standard,
// version and rules are the existing ones and nothing was written.
type EditResult struct {
	Standard    domain.Standard
	Version     domain.StandardVersion
	Rules       []domain.Rule
	RuleMapping map[uuid.UUID]uuid.UUID
	Changed     bool
}
