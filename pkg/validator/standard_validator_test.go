package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/standards/internal/domain"
)

func TestValidationResultCollectsAllErrors(t *testing.T) {
	r := NewValidationResult()

	r.Name("name", "   ")
	r.RuleContent("rules[0].content", "")
	r.Language("rules[0].examples[0].lang", "cobol")

	require.False(t, r.IsValid)
	assert.Len(t, r.Errors, 3)

	err := r.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), "rules[0].content")
}

func TestValidationResultValid(t *testing.T) {
	r := NewValidationResult()

	name := r.Name("name", "  API Style ")
	content := r.RuleContent("rules[0].content", "Use plural nouns")
	lang := r.Language("lang", "TS")

	require.NoError(t, r.Err())
	assert.Equal(t, "API Style", name)
	assert.Equal(t, "Use plural nouns", content)
	assert.Equal(t, "typescript", lang)
}

func TestNameTooLong(t *testing.T) {
	r := NewValidationResult()
	r.Name("name", strings.Repeat("a", MaxNameLength+1))
	assert.False(t, r.IsValid)
}

func TestExampleRequiresOneSide(t *testing.T) {
	r := NewValidationResult()
	r.Example("ex", "", "  ")
	assert.False(t, r.IsValid)

	r = NewValidationResult()
	r.Example("ex", "", "bad()")
	assert.True(t, r.IsValid)
}

func TestScopeNormalization(t *testing.T) {
	r := NewValidationResult()

	assert.Nil(t, r.Scope("scope", nil))
	blank := "  , "
	assert.Nil(t, r.Scope("scope", &blank))

	raw := " src/**/*.ts ,  api/*.go"
	got := r.Scope("scope", &raw)
	require.NotNil(t, got)
	assert.Equal(t, "src/**/*.ts, api/*.go", *got)
	assert.True(t, r.IsValid)

	bad := "src/[a-"
	r.Scope("scope", &bad)
	assert.False(t, r.IsValid)
}

func TestScopeMatches(t *testing.T) {
	scope := "src/**/*.ts, cmd/*.go"

	assert.True(t, ScopeMatches(&scope, "src/api/users/handler.ts"))
	assert.True(t, ScopeMatches(&scope, "cmd/main.go"))
	assert.False(t, ScopeMatches(&scope, "internal/x.go"))
	assert.True(t, ScopeMatches(nil, "anything"))
}
