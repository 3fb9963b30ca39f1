package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rule is one statement of guidance. Its identity is scoped to a single
// StandardVersion: every new version gets new Rule rows.
type Rule struct {
	ID                uuid.UUID `json:"id"`
	StandardVersionID uuid.UUID `json:"standard_version_id"`
	Content           string    `json:"content"`
	Position          int       `json:"position"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewRule creates a rule owned by the given version at the given position
func NewRule(standardVersionID uuid.UUID, content string, position int) Rule {
	return Rule{
		ID:                uuid.New(),
		StandardVersionID: standardVersionID,
		Content:           content,
		Position:          position,
		CreatedAt:         time.Now(),
	}
}

// RuleExample illustrates a rule for one language.
type RuleExample struct {
	ID        uuid.UUID `json:"id"`
	RuleID    uuid.UUID `json:"rule_id"`
	Lang      string    `json:"lang"`
	Positive  string    `json:"positive"`
	Negative  string    `json:"negative"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRuleExample creates an example owned by the given rule at the given position
func NewRuleExample(ruleID uuid.UUID, lang, positive, negative string, position int) RuleExample {
	return RuleExample{
		ID:        uuid.New(),
		RuleID:    ruleID,
		Lang:      lang,
		Positive:  positive,
		Negative:  negative,
		Position:  position,
		CreatedAt: time.Now(),
	}
}

// RuleContents returns the contents of rules in order.
func RuleContents(rules []Rule) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.Content
	}
	return out
}

// ExampleLanguages returns the distinct languages of examples in first-seen order.
func ExampleLanguages(examples []RuleExample) []string {
	seen := make(map[string]struct{}, len(examples))
	var langs []string
	for _, ex := range examples {
		if ex.Lang == "" {
			continue
		}
		if _, ok := seen[ex.Lang]; ok {
			continue
		}
		seen[ex.Lang] = struct{}{}
		langs = append(langs, ex.Lang)
	}
	return langs
}
