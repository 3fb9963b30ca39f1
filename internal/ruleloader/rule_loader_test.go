package ruleloader

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/standards/internal/domain"
	"github.com/rpattn/standards/internal/repository"
)

type countingRuleRepo struct {
	repository.RuleRepository
	mu    sync.Mutex
	calls int
	rules []domain.Rule
}

func (r *countingRuleRepo) FindByStandardVersionIDs(_ context.Context, ids []uuid.UUID) ([]domain.Rule, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	wanted := map[uuid.UUID]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var out []domain.Rule
	for _, rule := range r.rules {
		if wanted[rule.StandardVersionID] {
			out = append(out, rule)
		}
	}
	return out, nil
}

func TestLoadManyBatches(t *testing.T) {
	v1, v2, empty := uuid.New(), uuid.New(), uuid.New()
	repo := &countingRuleRepo{rules: []domain.Rule{
		domain.NewRule(v1, "a", 0),
		domain.NewRule(v1, "b", 1),
		domain.NewRule(v2, "c", 0),
	}}
	loader := NewRuleLoader(repo)

	got, err := loader.LoadMany(context.Background(), []uuid.UUID{v1, v2, empty})
	require.NoError(t, err)
	assert.Len(t, got[v1], 2)
	assert.Len(t, got[v2], 1)
	assert.Empty(t, got[empty])
	assert.Equal(t, 1, repo.calls)

	// cached
	rules, err := loader.Load(context.Background(), v1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, domain.RuleContents(rules))
	assert.Equal(t, 1, repo.calls)
}
