// Package memstore keeps every repository in process memory. It backs the
// development server mode and the service tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rpattn/standards/internal/domain"
	"github.com/rpattn/standards/internal/repository"
)

// Store holds the state shared by all in-memory repositories.
type Store struct {
	mu        sync.RWMutex
	standards map[uuid.UUID]domain.Standard
	versions  map[uuid.UUID]domain.StandardVersion
	rules     map[uuid.UUID]domain.Rule
	examples  map[uuid.UUID]domain.RuleExample
	jobs      map[uuid.UUID]domain.EnrichmentJob
}

// New returns an empty store.
func New() *Store {
	return &Store{
		standards: make(map[uuid.UUID]domain.Standard),
		versions:  make(map[uuid.UUID]domain.StandardVersion),
		rules:     make(map[uuid.UUID]domain.Rule),
		examples:  make(map[uuid.UUID]domain.RuleExample),
		jobs:      make(map[uuid.UUID]domain.EnrichmentJob),
	}
}

func (s *Store) Standards() repository.StandardRepository { return standardRepo{s} }

func (s *Store) Versions() repository.StandardVersionRepository { return versionRepo{s} }

func (s *Store) Rules() repository.RuleRepository { return ruleRepo{s} }

func (s *Store) Examples() repository.RuleExampleRepository { return exampleRepo{s} }

func (s *Store) EnrichmentJobs() repository.EnrichmentJobRepository { return jobRepo{s} }

// Counts reports the number of rows per table, for assertions.
func (s *Store) Counts() (standards, versions, rules, examples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.standards), len(s.versions), len(s.rules), len(s.examples)
}

func notFound(kind string, id any) error {
	return fmt.Errorf("get %s %v: %w", kind, id, domain.ErrNotFound)
}

type standardRepo struct{ s *Store }

func (r standardRepo) Add(_ context.Context, standard domain.Standard) (domain.Standard, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.standards[standard.ID]; ok {
		return domain.Standard{}, fmt.Errorf("create standard %s: duplicate id", standard.ID)
	}
	for _, existing := range r.s.standards {
		if existing.SpaceID == standard.SpaceID && existing.Slug == standard.Slug {
			return domain.Standard{}, fmt.Errorf("create standard %s: %w", standard.Slug, domain.ErrSlugTaken)
		}
	}
	r.s.standards[standard.ID] = standard
	return standard, nil
}

func (r standardRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Standard, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	standard, ok := r.s.standards[id]
	if !ok {
		return domain.Standard{}, notFound("standard", id)
	}
	return standard, nil
}

func (r standardRepo) FindBySlug(_ context.Context, spaceID uuid.UUID, slug string) (domain.Standard, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, standard := range r.s.standards {
		if standard.SpaceID == spaceID && standard.Slug == slug {
			return standard, nil
		}
	}
	return domain.Standard{}, notFound("standard by slug", slug)
}

func (r standardRepo) Update(_ context.Context, standard domain.Standard, expectedVersion int) (domain.Standard, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.standards[standard.ID]
	if !ok {
		return domain.Standard{}, notFound("standard", standard.ID)
	}
	if current.Version != expectedVersion {
		return domain.Standard{}, fmt.Errorf("update standard %s at version %d: %w", standard.ID, expectedVersion, domain.ErrVersionConflict)
	}
	// slug, space and creation time never change after creation
	standard.Slug = current.Slug
	standard.SpaceID = current.SpaceID
	standard.CreatedAt = current.CreatedAt
	r.s.standards[standard.ID] = standard
	return standard, nil
}

func (r standardRepo) ListBySpace(_ context.Context, spaceID uuid.UUID) ([]domain.Standard, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Standard
	for _, standard := range r.s.standards {
		if standard.SpaceID == spaceID {
			out = append(out, standard)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

type versionRepo struct{ s *Store }

func (r versionRepo) Add(_ context.Context, version domain.StandardVersion) (domain.StandardVersion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.versions {
		if existing.StandardID == version.StandardID && existing.Version == version.Version {
			return domain.StandardVersion{}, fmt.Errorf("insert version %d of standard %s: %w", version.Version, version.StandardID, domain.ErrVersionConflict)
		}
	}
	r.s.versions[version.ID] = version
	return version, nil
}

func (r versionRepo) FindByID(_ context.Context, id uuid.UUID) (domain.StandardVersion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	version, ok := r.s.versions[id]
	if !ok {
		return domain.StandardVersion{}, notFound("standard version", id)
	}
	return version, nil
}

func (r versionRepo) FindByStandardID(_ context.Context, standardID uuid.UUID) ([]domain.StandardVersion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.StandardVersion
	for _, version := range r.s.versions {
		if version.StandardID == standardID {
			out = append(out, version)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (r versionRepo) FindLatestByStandardID(ctx context.Context, standardID uuid.UUID) (domain.StandardVersion, error) {
	versions, _ := r.FindByStandardID(ctx, standardID)
	if len(versions) == 0 {
		return domain.StandardVersion{}, notFound("latest version of standard", standardID)
	}
	return versions[len(versions)-1], nil
}

func (r versionRepo) FindByStandardIDAndVersion(_ context.Context, standardID uuid.UUID, number int) (domain.StandardVersion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, version := range r.s.versions {
		if version.StandardID == standardID && version.Version == number {
			return version, nil
		}
	}
	return domain.StandardVersion{}, notFound(fmt.Sprintf("version %d of standard", number), standardID)
}

func (r versionRepo) UpdateSummary(_ context.Context, id uuid.UUID, summary string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	version, ok := r.s.versions[id]
	if !ok {
		return notFound("standard version", id)
	}
	version.Summary = &summary
	r.s.versions[id] = version
	return nil
}

type ruleRepo struct{ s *Store }

func (r ruleRepo) Add(_ context.Context, rule domain.Rule) (domain.Rule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.versions[rule.StandardVersionID]; !ok {
		return domain.Rule{}, fmt.Errorf("insert rule: %w", notFound("standard version", rule.StandardVersionID))
	}
	r.s.rules[rule.ID] = rule
	return rule, nil
}

func (r ruleRepo) FindByID(_ context.Context, id uuid.UUID) (domain.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rule, ok := r.s.rules[id]
	if !ok {
		return domain.Rule{}, notFound("rule", id)
	}
	return rule, nil
}

func (r ruleRepo) FindByStandardVersionID(ctx context.Context, standardVersionID uuid.UUID) ([]domain.Rule, error) {
	return r.FindByStandardVersionIDs(ctx, []uuid.UUID{standardVersionID})
}

func (r ruleRepo) FindByStandardVersionIDs(_ context.Context, standardVersionIDs []uuid.UUID) ([]domain.Rule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[uuid.UUID]struct{}, len(standardVersionIDs))
	for _, id := range standardVersionIDs {
		wanted[id] = struct{}{}
	}
	out := []domain.Rule{}
	for _, rule := range r.s.rules {
		if _, ok := wanted[rule.StandardVersionID]; ok {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StandardVersionID != out[j].StandardVersionID {
			return out[i].StandardVersionID.String() < out[j].StandardVersionID.String()
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

type exampleRepo struct{ s *Store }

func (r exampleRepo) Add(_ context.Context, example domain.RuleExample) (domain.RuleExample, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rules[example.RuleID]; !ok {
		return domain.RuleExample{}, fmt.Errorf("insert rule example: %w", notFound("rule", example.RuleID))
	}
	r.s.examples[example.ID] = example
	return example, nil
}

func (r exampleRepo) FindByRuleID(_ context.Context, ruleID uuid.UUID) ([]domain.RuleExample, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.RuleExample{}
	for _, example := range r.s.examples {
		if example.RuleID == ruleID {
			out = append(out, example)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

type jobRepo struct{ s *Store }

func (r jobRepo) Create(_ context.Context, job domain.EnrichmentJob) (domain.EnrichmentJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = domain.EnrichmentJobStatusQueued
	}
	now := time.Now()
	job.EnqueuedAt = now
	job.UpdatedAt = now
	r.s.jobs[job.ID] = job
	return job, nil
}

func (r jobRepo) GetByID(_ context.Context, id uuid.UUID) (domain.EnrichmentJob, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	job, ok := r.s.jobs[id]
	if !ok {
		return domain.EnrichmentJob{}, notFound("enrichment job", id)
	}
	return job, nil
}

func (r jobRepo) ListByStandardVersion(_ context.Context, standardVersionID uuid.UUID) ([]domain.EnrichmentJob, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.EnrichmentJob{}
	for _, job := range r.s.jobs {
		if job.StandardVersionID == standardVersionID {
			out = append(out, job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnqueuedAt.Before(out[j].EnqueuedAt) })
	return out, nil
}

func (r jobRepo) MarkRunning(_ context.Context, id uuid.UUID) error {
	return r.transition(id, []domain.EnrichmentJobStatus{domain.EnrichmentJobStatusQueued}, func(job *domain.EnrichmentJob, now time.Time) {
		job.Status = domain.EnrichmentJobStatusRunning
		job.StartedAt = &now
	})
}

func (r jobRepo) MarkCompleted(_ context.Context, id uuid.UUID, summary string) error {
	return r.transition(id, []domain.EnrichmentJobStatus{domain.EnrichmentJobStatusRunning}, func(job *domain.EnrichmentJob, now time.Time) {
		job.Status = domain.EnrichmentJobStatusCompleted
		if summary != "" {
			job.Summary = &summary
		}
		job.CompletedAt = &now
	})
}

func (r jobRepo) MarkFailed(_ context.Context, id uuid.UUID, errorMessage string) error {
	from := []domain.EnrichmentJobStatus{domain.EnrichmentJobStatusQueued, domain.EnrichmentJobStatusRunning}
	return r.transition(id, from, func(job *domain.EnrichmentJob, now time.Time) {
		job.Status = domain.EnrichmentJobStatusFailed
		if errorMessage != "" {
			job.ErrorMessage = &errorMessage
		}
		job.CompletedAt = &now
	})
}

func (r jobRepo) transition(id uuid.UUID, from []domain.EnrichmentJobStatus, apply func(*domain.EnrichmentJob, time.Time)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	job, ok := r.s.jobs[id]
	if !ok {
		return notFound("enrichment job", id)
	}
	allowed := false
	for _, status := range from {
		if job.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return repository.ErrEnrichmentJobStatusConflict
	}
	now := time.Now()
	apply(&job, now)
	job.UpdatedAt = now
	r.s.jobs[id] = job
	return nil
}
