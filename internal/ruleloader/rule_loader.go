package ruleloader

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader"

	"github.com/rpattn/standards/internal/domain"
	"github.com/rpattn/standards/internal/repository"
)

// RuleLoader batches rule lookups by standard version id within a request.
type RuleLoader struct {
	Loader *dataloader.Loader
}

func NewRuleLoader(repo repository.RuleRepository) *RuleLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]uuid.UUID, len(keys))
		for i, k := range keys {
			id, err := uuid.Parse(k.String())
			if err != nil {
				return errorResults(len(keys), fmt.Errorf("invalid UUID: %w", err))
			}
			ids[i] = id
		}

		rules, err := repo.FindByStandardVersionIDs(ctx, ids)
		if err != nil {
			return errorResults(len(keys), err)
		}

		byVersion := make(map[uuid.UUID][]domain.Rule, len(ids))
		for _, rule := range rules {
			byVersion[rule.StandardVersionID] = append(byVersion[rule.StandardVersionID], rule)
		}

		// results must follow key order
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			versionRules := byVersion[id]
			if versionRules == nil {
				versionRules = []domain.Rule{}
			}
			results[i] = &dataloader.Result{Data: versionRules}
		}
		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(2*time.Millisecond))
	return &RuleLoader{Loader: loader}
}

// Load returns the rules of one version, batched with concurrent calls.
func (l *RuleLoader) Load(ctx context.Context, versionID uuid.UUID) ([]domain.Rule, error) {
	data, err := l.Loader.Load(ctx, dataloader.StringKey(versionID.String()))()
	if err != nil {
		return nil, err
	}
	rules, ok := data.([]domain.Rule)
	if !ok {
		return nil, fmt.Errorf("unexpected loader result %T", data)
	}
	return rules, nil
}

// LoadMany returns rules for several versions in one batch, keyed by version id.
func (l *RuleLoader) LoadMany(ctx context.Context, versionIDs []uuid.UUID) (map[uuid.UUID][]domain.Rule, error) {
	keys := make(dataloader.Keys, len(versionIDs))
	for i, id := range versionIDs {
		keys[i] = dataloader.StringKey(id.String())
	}
	data, errs := l.Loader.LoadMany(ctx, keys)()
	out := make(map[uuid.UUID][]domain.Rule, len(versionIDs))
	for i, id := range versionIDs {
		if len(errs) > i && errs[i] != nil {
			return nil, errs[i]
		}
		rules, _ := data[i].([]domain.Rule)
		out[id] = rules
	}
	return out, nil
}

func errorResults(n int, err error) []*dataloader.Result {
	results := make([]*dataloader.Result, n)
	for i := range results {
		results[i] = &dataloader.Result{Error: err}
	}
	return results
}
