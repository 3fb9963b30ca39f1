package validator

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rpattn/standards/internal/domain"
)

// Field length limits.
const (
	MaxNameLength        = 200
	MaxRuleContentLength = 2000
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationResult collects errors across a whole request so callers can
// report every problem at once.
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Errors  []ValidationError `json:"errors"`
}

// NewValidationResult returns an empty, valid result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{IsValid: true, Errors: []ValidationError{}}
}

// Add records a failure.
func (r *ValidationResult) Add(field, message string, value any) {
	r.IsValid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message, Value: value})
}

// Err returns nil for a valid result, otherwise an error wrapping
// domain.ErrValidation that lists every recorded failure.
func (r *ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(parts, "; "))
}

// Name validates a standard name and returns it trimmed.
func (r *ValidationResult) Name(field, name string) string {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		r.Add(field, "name is required", name)
	case len(trimmed) > MaxNameLength:
		r.Add(field, fmt.Sprintf("name must be at most %d characters", MaxNameLength), nil)
	}
	return trimmed
}

// RuleContent validates rule text and returns it trimmed.
func (r *ValidationResult) RuleContent(field, content string) string {
	trimmed := strings.TrimSpace(content)
	switch {
	case trimmed == "":
		r.Add(field, "rule content must not be empty", content)
	case len(trimmed) > MaxRuleContentLength:
		r.Add(field, fmt.Sprintf("rule content must be at most %d characters", MaxRuleContentLength), nil)
	}
	return trimmed
}

// Language validates an example language and returns its canonical name.
func (r *ValidationResult) Language(field, lang string) string {
	canonical, ok := domain.NormalizeLanguage(lang)
	if !ok {
		r.Add(field, fmt.Sprintf("unsupported language %q", lang), lang)
		return lang
	}
	return canonical
}

// Example validates that at least one side of an example is provided.
func (r *ValidationResult) Example(field, positive, negative string) {
	if strings.TrimSpace(positive) == "" && strings.TrimSpace(negative) == "" {
		r.Add(field, "example needs a positive or a negative snippet", nil)
	}
}

// Scope validates a comma separated list of glob patterns. It returns the
// normalized scope, or nil when the input is nil or blank.
func (r *ValidationResult) Scope(field string, scope *string) *string {
	if scope == nil {
		return nil
	}
	patterns := SplitScope(*scope)
	if len(patterns) == 0 {
		return nil
	}
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			r.Add(field, fmt.Sprintf("invalid glob pattern %q", pattern), pattern)
		}
	}
	normalized := strings.Join(patterns, ", ")
	return &normalized
}

// SplitScope splits a scope string into its trimmed, non-empty patterns.
func SplitScope(scope string) []string {
	var patterns []string
	for _, raw := range strings.Split(scope, ",") {
		if p := strings.TrimSpace(raw); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// ScopeMatches reports whether path matches any pattern of scope. A nil or
// empty scope matches everything.
func ScopeMatches(scope *string, path string) bool {
	if scope == nil {
		return true
	}
	patterns := SplitScope(*scope)
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
