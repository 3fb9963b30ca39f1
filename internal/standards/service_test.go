package standards

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/standards/internal/detection"
	"github.com/rpattn/standards/internal/domain"
	"github.com/rpattn/standards/internal/enrichment"
	"github.com/rpattn/standards/internal/events"
	"github.com/rpattn/standards/internal/repository"
	"github.com/rpattn/standards/internal/repository/memstore"
)

type stubDetectionPort struct {
	mu         sync.Mutex
	artifacts  []detection.RuleMigration
	assessed   []detection.RuleMigration
	refreshed  []detection.AssessmentRefresh
	err        error
	panicOnUse bool
}

func (p *stubDetectionPort) CopyArtifactsToNewRule(_ context.Context, req detection.RuleMigration) (detection.CopyResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.panicOnUse {
		panic("detection down")
	}
	p.artifacts = append(p.artifacts, req)
	return detection.CopyResult{CopiedCount: 1}, p.err
}

func (p *stubDetectionPort) CopyAssessments(_ context.Context, req detection.RuleMigration) (detection.CopyResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.assessed = append(p.assessed, req)
	return detection.CopyResult{}, p.err
}

func (p *stubDetectionPort) RefreshAssessment(_ context.Context, req detection.AssessmentRefresh) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshed = append(p.refreshed, req)
	return p.err
}

type stubSummaryQueue struct {
	inputs []enrichment.Input
	err    error
}

func (q *stubSummaryQueue) Submit(_ context.Context, input enrichment.Input) (uuid.UUID, error) {
	q.inputs = append(q.inputs, input)
	return uuid.New(), q.err
}

type fixture struct {
	store    *memstore.Store
	service  *Service
	port     *stubDetectionPort
	queue    *stubSummaryQueue
	recorder *events.Recorder
	actor    Actor
	spaceID  uuid.UUID
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	userID := uuid.New()
	f := &fixture{
		store:    memstore.New(),
		port:     &stubDetectionPort{},
		queue:    &stubSummaryQueue{},
		recorder: events.NewRecorder(),
		actor:    Actor{OrganizationID: uuid.New(), UserID: &userID},
		spaceID:  uuid.New(),
	}
	base := []Option{
		WithDetectionPort(f.port),
		WithEventSink(f.recorder),
		WithSummaryQueue(f.queue),
	}
	f.service = NewService(f.store.Standards(), f.store.Versions(), f.store.Rules(), f.store.Examples(), append(base, opts...)...)
	return f
}

func (f *fixture) createAPIStyle(t *testing.T) EditResult {
	t.Helper()
	result, err := f.service.CreateStandard(context.Background(), CreateStandardRequest{
		Actor:   f.actor,
		SpaceID: f.spaceID,
		Name:    "API Style",
		Rules: []RuleInput{
			{Content: "Use REST verbs", Examples: []ExampleInput{{Lang: "ts", Positive: "GET /users", Negative: "POST /getUsers"}}},
			{Content: "Version your endpoints"},
		},
	})
	require.NoError(t, err)
	return result
}

func assertContiguousVersions(t *testing.T, f *fixture, standardID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	standard, err := f.store.Standards().GetByID(ctx, standardID)
	require.NoError(t, err)
	versions, err := f.store.Versions().FindByStandardID(ctx, standardID)
	require.NoError(t, err)
	require.Len(t, versions, standard.Version)
	for i, v := range versions {
		assert.Equal(t, i+1, v.Version)
	}
}

func TestCreateStandard(t *testing.T) {
	f := newFixture(t)
	result := f.createAPIStyle(t)

	assert.True(t, result.Changed)
	assert.Equal(t, 1, result.Standard.Version)
	assert.Equal(t, "api-style", result.Standard.Slug)
	assert.Equal(t, 1, result.Version.Version)
	require.Len(t, result.Rules, 2)
	assert.Equal(t, []string{"Use REST verbs", "Version your endpoints"}, domain.RuleContents(result.Rules))
	assert.Empty(t, result.RuleMapping)

	standards, versions, rules, examples := f.store.Counts()
	assert.Equal(t, 1, standards)
	assert.Equal(t, 1, versions)
	assert.Equal(t, 2, rules)
	assert.Equal(t, 1, examples)

	assert.Len(t, f.recorder.OfType(events.TypeStandardCreated), 1)
	assert.Len(t, f.recorder.OfType(events.TypeRuleAdded), 2)
	require.Len(t, f.queue.inputs, 1)
	assert.Equal(t, result.Version.ID, f.queue.inputs[0].StandardVersion.ID)
	assert.Len(t, f.queue.inputs[0].Rules, 2)

	stored, err := f.store.Examples().FindByRuleID(context.Background(), result.Rules[0].ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "typescript", stored[0].Lang)
}

func TestCreateStandardWithSummarySkipsEnrichment(t *testing.T) {
	f := newFixture(t)
	summary := "Already summarized."
	result, err := f.service.CreateStandard(context.Background(), CreateStandardRequest{
		Actor: f.actor, SpaceID: f.spaceID, Name: "Logging", Summary: &summary,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Version.Summary)
	assert.Equal(t, summary, *result.Version.Summary)
	assert.Empty(t, f.queue.inputs)
}

func TestCreateStandardSlugSuffixes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var slugs []string
	for i := 0; i < 3; i++ {
		result, err := f.service.CreateStandard(ctx, CreateStandardRequest{Actor: f.actor, SpaceID: f.spaceID, Name: "Test Standard"})
		require.NoError(t, err)
		slugs = append(slugs, result.Standard.Slug)
	}
	assert.Equal(t, []string{"test-standard", "test-standard-1", "test-standard-2"}, slugs)

	other, err := f.service.CreateStandard(ctx, CreateStandardRequest{Actor: f.actor, SpaceID: uuid.New(), Name: "Test Standard"})
	require.NoError(t, err)
	assert.Equal(t, "test-standard", other.Standard.Slug)
}

func TestCreateStandardValidationWritesNothing(t *testing.T) {
	f := newFixture(t)
	badScope := "src/[a-"
	_, err := f.service.CreateStandard(context.Background(), CreateStandardRequest{
		Actor:   f.actor,
		SpaceID: f.spaceID,
		Name:    "  ",
		Scope:   &badScope,
		Rules:   []RuleInput{{Content: "ok", Examples: []ExampleInput{{Lang: "klingon", Positive: "x"}}}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	standards, versions, rules, examples := f.store.Counts()
	assert.Zero(t, standards+versions+rules+examples)
	assert.Empty(t, f.recorder.Events())
}

func TestRenameWithSameNameIsNoop(t *testing.T) {
	f := newFixture(t)
	created := f.createAPIStyle(t)
	f.recorder.Reset()

	result, err := f.service.RenameStandard(context.Background(), RenameStandardRequest{
		Actor: f.actor, StandardID: created.Standard.ID, Name: "API Style",
	})
	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, 1, result.Standard.Version)
	assert.Equal(t, created.Version.ID, result.Version.ID)

	_, versions, rules, _ := f.store.Counts()
	assert.Equal(t, 1, versions)
	assert.Equal(t, 2, rules)
	assert.Empty(t, f.recorder.Events())
	assert.Len(t, f.queue.inputs, 1)
}

func TestRenameKeepsSlugAndForksRules(t *testing.T) {
	f := newFixture(t)
	created := f.createAPIStyle(t)

	result, err := f.service.RenameStandard(context.Background(), RenameStandardRequest{
		Actor: f.actor, StandardID: created.Standard.ID, Name: "HTTP API Style",
	})
	require.NoError(t, err)
	require.True(t, result.Changed)
	assert.Equal(t, 2, result.Standard.Version)
	assert.Equal(t, "api-style", result.Standard.Slug)
	assert.Equal(t, "HTTP API Style", result.Version.Name)

	// every carried rule has a fresh identity and one mapping entry
	require.Len(t, result.Rules, 2)
	require.Len(t, result.RuleMapping, 2)
	for i, old := range created.Rules {
		newID, ok := result.RuleMapping[old.ID]
		require.True(t, ok)
		assert.Equal(t, result.Rules[i].ID, newID)
		assert.NotEqual(t, old.ID, newID)
		assert.Equal(t, old.Content, result.Rules[i].Content)
	}

	// examples are recreated under the new rule
	examples, err := f.store.Examples().FindByRuleID(context.Background(), result.Rules[0].ID)
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "GET /users", examples[0].Positive)

	assert.Len(t, f.port.artifacts, 2)
	assert.Len(t, f.port.assessed, 2)
	assertContiguousVersions(t, f, created.Standard.ID)
}

func TestDeleteRule(t *testing.T) {
	f := newFixture(t)
	created := f.createAPIStyle(t)
	ctx := context.Background()
	restVerbs := created.Rules[0]

	result, err := f.service.DeleteRule(ctx, DeleteRuleRequest{
		Actor: f.actor, StandardID: created.Standard.ID, RuleID: restVerbs.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Standard.Version)
	require.Len(t, result.Rules, 1)
	assert.Equal(t, "Version your endpoints", result.Rules[0].Content)

	// mapping covers the carried rule only
	require.Len(t, result.RuleMapping, 1)
	_, ok := result.RuleMapping[restVerbs.ID]
	assert.False(t, ok)
	assert.Equal(t, result.Rules[0].ID, result.RuleMapping[created.Rules[1].ID])

	old, err := f.store.Rules().FindByID(ctx, restVerbs.ID)
	require.NoError(t, err)
	assert.Equal(t, restVerbs, old)
	v1Rules, err := f.store.Rules().FindByStandardVersionID(ctx, created.Version.ID)
	require.NoError(t, err)
	assert.Len(t, v1Rules, 2)

	assertContiguousVersions(t, f, created.Standard.ID)
}

func TestDeleteRuleFromOlderVersionFailsBeforeWriting(t *testing.T) {
	f := newFixture(t)
	created := f.createAPIStyle(t)
	ctx := context.Background()

	_, err := f.service.RenameStandard(ctx, RenameStandardRequest{Actor: f.actor, StandardID: created.Standard.ID, Name: "Renamed"})
	require.NoError(t, err)

	_, err = f.service.DeleteRule(ctx, DeleteRuleRequest{Actor: f.actor, StandardID: created.Standard.ID, RuleID: created.Rules[0].ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.service.DeleteRule(ctx, DeleteRuleRequest{Actor: f.actor, StandardID: created.Standard.ID, RuleID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	standard, err := f.store.Standards().GetByID(ctx, created.Standard.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, standard.Version)
}

func TestAddRuleEmitsRuleAdded(t *testing.T) {
	f := newFixture(t)
	created := f.createAPIStyle(t)
	f.recorder.Reset()

	result, err := f.service.AddRule(context.Background(), AddRuleRequest{
		Actor: f.actor, StandardID: created.Standard.ID,
		Rule: RuleInput{Content: "Use plural nouns", Examples: []ExampleInput{{Lang: "go", Negative: "GET /user"}}},
	})
	require.NoError(t, err)
	require.Len(t, result.Rules, 3)
	assert.Len(t, result.RuleMapping, 2)

	added := f.recorder.OfType(events.TypeRuleAdded)
	require.Len(t, added, 1)
	assert.Equal(t, result.Rules[2].ID, added[0].(events.RuleAdded).RuleID)
	assert.Empty(t, f.recorder.OfType(events.TypeStandardCreated))
}

func TestUpdateRule(t *testing.T) {
	f := newFixture(t)
	created := f.createAPIStyle(t)
	ctx := context.Background()

	same, err := f.service.UpdateRule(ctx, UpdateRuleRequest{Actor: f.actor, StandardID: created.Standard.ID, RuleID: created.Rules[1].ID, Content: " Version your endpoints "})
	require.NoError(t, err)
	assert.False(t, same.Changed)

	result, err := f.service.UpdateRule(ctx, UpdateRuleRequest{Actor: f.actor, StandardID: created.Standard.ID, RuleID: created.Rules[1].ID, Content: "Version every endpoint"})
	require.NoError(t, err)
	require.True(t, result.Changed)
	assert.Equal(t, "Version every endpoint", result.Rules[1].Content)
	require.Len(t, result.RuleMapping, 1)
	_, mapped := result.RuleMapping[created.Rules[1].ID]
	assert.False(t, mapped)
}

func TestUpdateDescription(t *testing.T) {
	f := newFixture(t)
	created := f.createAPIStyle(t)

	result, err := f.service.UpdateDescription(context.Background(), UpdateDescriptionRequest{
		Actor: f.actor, StandardID: created.Standard.ID, Description: "How we design HTTP APIs",
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, "How we design HTTP APIs", result.Standard.Description)
	assert.Equal(t, "How we design HTTP APIs", result.Version.Description)
}

func TestUpdateStandard(t *testing.T) {
	f := newFixture(t)
	created := f.createAPIStyle(t)
	ctx := context.Background()
	scope := "src/api/**"

	keep := created.Rules[1].ID
	result, err := f.service.UpdateStandard(ctx, UpdateStandardRequest{
		Actor:      f.actor,
		StandardID: created.Standard.ID,
		Name:       "API Style",
		Scope:      &scope,
		Rules: []RuleUpdate{
			{ID: &keep, Content: "Version your endpoints"},
			{Content: "Paginate collections"},
		},
	})
	require.NoError(t, err)
	require.True(t, result.Changed)
	assert.Equal(t, []string{"Version your endpoints", "Paginate collections"}, domain.RuleContents(result.Rules))
	assert.Equal(t, map[uuid.UUID]uuid.UUID{keep: result.Rules[0].ID}, result.RuleMapping)
	assert.Equal(t, "src/api/**", domain.ScopeValue(result.Version.Scope))

	unchanged, err := f.service.UpdateStandard(ctx, UpdateStandardRequest{
		Actor:      f.actor,
		StandardID: created.Standard.ID,
		Name:       "API Style",
		Scope:      &scope,
		Rules: []RuleUpdate{
			{ID: &result.Rules[0].ID, Content: "Version your endpoints"},
			{ID: &result.Rules[1].ID, Content: "Paginate collections"},
		},
	})
	require.NoError(t, err)
	assert.False(t, unchanged.Changed)

	stale := created.Rules[0].ID
	_, err = f.service.UpdateStandard(ctx, UpdateStandardRequest{
		Actor: f.actor, StandardID: created.Standard.ID, Name: "API Style",
		Rules: []RuleUpdate{{ID: &stale, Content: "Use REST verbs"}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assertContiguousVersions(t, f, created.Standard.ID)
}

func TestUpdateStandardExampleChangeForgesVersion(t *testing.T) {
	f := newFixture(t)
	created := f.createAPIStyle(t)

	id := created.Rules[0].ID
	other := created.Rules[1].ID
	examples := []ExampleInput{{Lang: "python", Positive: "requests.get('/users')"}}
	result, err := f.service.UpdateStandard(context.Background(), UpdateStandardRequest{
		Actor: f.actor, StandardID: created.Standard.ID, Name: "API Style",
		Rules: []RuleUpdate{
			{ID: &id, Content: "Use REST verbs", Examples: &examples},
			{ID: &other, Content: "Version your endpoints"},
		},
	})
	require.NoError(t, err)
	require.True(t, result.Changed)
	assert.Len(t, result.RuleMapping, 2)

	stored, err := f.store.Examples().FindByRuleID(context.Background(), result.Rules[0].ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "python", stored[0].Lang)
}

func TestResubmittingSameExamplesIsNoop(t *testing.T) {
	f := newFixture(t)
	created := f.createAPIStyle(t)
	ctx := context.Background()

	examples := []ExampleInput{
		{Lang: "go", Positive: "a"},
		{Lang: "python", Positive: "b"},
		{Lang: "java", Positive: "c"},
	}
	edit := func(ids []uuid.UUID) EditResult {
		result, err := f.service.UpdateStandard(ctx, UpdateStandardRequest{
			Actor: f.actor, StandardID: created.Standard.ID, Name: "API Style",
			Rules: []RuleUpdate{
				{ID: &ids[0], Content: "Use REST verbs", Examples: &examples},
				{ID: &ids[1], Content: "Version your endpoints"},
			},
		})
		require.NoError(t, err)
		return result
	}

	first := edit([]uuid.UUID{created.Rules[0].ID, created.Rules[1].ID})
	require.True(t, first.Changed)

	stored, err := f.store.Examples().FindByRuleID(ctx, first.Rules[0].ID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for i, example := range stored {
		assert.Equal(t, i, example.Position)
		assert.Equal(t, examples[i].Lang, example.Lang)
	}

	second := edit([]uuid.UUID{first.Rules[0].ID, first.Rules[1].ID})
	assert.False(t, second.Changed)
	assertContiguousVersions(t, f, created.Standard.ID)
}

func TestEditMissingStandard(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.RenameStandard(context.Background(), RenameStandardRequest{Actor: f.actor, StandardID: uuid.New(), Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditStandardWithoutVersions(t *testing.T) {
	f := newFixture(t)
	standard, err := f.store.Standards().Add(context.Background(), domain.NewStandard(f.spaceID, "Orphan", "orphan", "", nil, nil))
	require.NoError(t, err)

	_, err = f.service.RenameStandard(context.Background(), RenameStandardRequest{Actor: f.actor, StandardID: standard.ID, Name: "y"})
	assert.ErrorIs(t, err, domain.ErrNoVersions)
}

func TestBestEffortIsolation(t *testing.T) {
	f := newFixture(t, WithAssessmentValidation(true))
	f.port.err = errors.New("detection unavailable")
	f.queue.err = errors.New("queue unavailable")
	f.recorder.Fail(errors.New("bus down"))
	created := f.createAPIStyle(t)

	result, err := f.service.AddRule(context.Background(), AddRuleRequest{
		Actor: f.actor, StandardID: created.Standard.ID, Rule: RuleInput{Content: "Document errors"},
	})
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, 2, result.Standard.Version)
	assert.Len(t, f.port.artifacts, 2)
	assert.NotEmpty(t, f.port.refreshed)
}

func TestBestEffortIsolationOnPanic(t *testing.T) {
	f := newFixture(t)
	f.port.panicOnUse = true
	created := f.createAPIStyle(t)

	result, err := f.service.RenameStandard(context.Background(), RenameStandardRequest{
		Actor: f.actor, StandardID: created.Standard.ID, Name: "Renamed",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Version.Version)
}

func TestMigrationSkippedWithoutUser(t *testing.T) {
	f := newFixture(t)
	created := f.createAPIStyle(t)

	importer := Actor{OrganizationID: f.actor.OrganizationID}
	result, err := f.service.RenameStandard(context.Background(), RenameStandardRequest{
		Actor: importer, StandardID: created.Standard.ID, Name: "Imported",
	})
	require.NoError(t, err)
	assert.Len(t, result.RuleMapping, 2)
	assert.Empty(t, f.port.artifacts)
	assert.Nil(t, result.Version.UserID)
	assert.False(t, result.Version.IsInteractive())
}

func TestAssessmentValidationPerLanguage(t *testing.T) {
	f := newFixture(t, WithAssessmentValidation(true))
	_, err := f.service.CreateStandard(context.Background(), CreateStandardRequest{
		Actor: f.actor, SpaceID: f.spaceID, Name: "Errors",
		Rules: []RuleInput{{Content: "Wrap errors", Examples: []ExampleInput{
			{Lang: "go", Positive: "fmt.Errorf(\"x: %w\", err)"},
			{Lang: "golang", Negative: "return err"},
			{Lang: "ts", Positive: "throw new AppError(e)"},
		}}},
	})
	require.NoError(t, err)

	langs := map[string]bool{}
	for _, r := range f.port.refreshed {
		langs[r.Language] = true
	}
	assert.Equal(t, map[string]bool{"go": true, "typescript": true}, langs)
}

func TestConcurrentEditLosesOnVersionConflict(t *testing.T) {
	f := newFixture(t)
	created := f.createAPIStyle(t)
	ctx := context.Background()

	snap, err := f.service.load(ctx, created.Standard.ID)
	require.NoError(t, err)
	_, err = f.service.RenameStandard(ctx, RenameStandardRequest{Actor: f.actor, StandardID: created.Standard.ID, Name: "First"})
	require.NoError(t, err)

	specs, err := f.service.carryForward(ctx, snap.rules)
	require.NoError(t, err)
	p := snap.withRules(specs)
	p.name = "Second"
	_, err = f.service.apply(ctx, f.actor, snap, p, nil)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assertContiguousVersions(t, f, created.Standard.ID)
}

// failingVersions fails the next Add when failNext is set.
type failingVersions struct {
	repository.StandardVersionRepository
	failNext bool
}

func (v *failingVersions) Add(ctx context.Context, version domain.StandardVersion) (domain.StandardVersion, error) {
	if v.failNext {
		v.failNext = false
		return domain.StandardVersion{}, errors.New("db down")
	}
	return v.StandardVersionRepository.Add(ctx, version)
}

func TestEditAfterFailedForgeIsRefused(t *testing.T) {
	store := memstore.New()
	versions := &failingVersions{StandardVersionRepository: store.Versions()}
	service := NewService(store.Standards(), versions, store.Rules(), store.Examples())
	ctx := context.Background()
	actor := Actor{OrganizationID: uuid.New()}

	created, err := service.CreateStandard(ctx, CreateStandardRequest{
		Actor:   actor,
		SpaceID: uuid.New(),
		Name:    "API Style",
		Rules:   []RuleInput{{Content: "Use REST verbs"}},
	})
	require.NoError(t, err)

	versions.failNext = true
	_, err = service.RenameStandard(ctx, RenameStandardRequest{Actor: actor, StandardID: created.Standard.ID, Name: "First"})
	require.Error(t, err)

	_, err = service.RenameStandard(ctx, RenameStandardRequest{Actor: actor, StandardID: created.Standard.ID, Name: "Second"})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	view, err := service.GetStandard(ctx, created.Standard.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Version.Version)

	rows, err := store.Versions().FindByStandardID(ctx, created.Standard.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Version)
}

func TestCreateStandardUsesPreferredSlug(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.CreateStandard(ctx, CreateStandardRequest{Actor: f.actor, SpaceID: f.spaceID, Slug: "api-style", Name: "HTTP API Style"})
	require.NoError(t, err)
	assert.Equal(t, "api-style", first.Standard.Slug)

	second, err := f.service.CreateStandard(ctx, CreateStandardRequest{Actor: f.actor, SpaceID: f.spaceID, Slug: "api-style", Name: "Other"})
	require.NoError(t, err)
	assert.Equal(t, "api-style-1", second.Standard.Slug)
}

func TestReadModel(t *testing.T) {
	f := newFixture(t)
	created := f.createAPIStyle(t)
	ctx := context.Background()
	_, err := f.service.DeleteRule(ctx, DeleteRuleRequest{Actor: f.actor, StandardID: created.Standard.ID, RuleID: created.Rules[1].ID})
	require.NoError(t, err)

	view, err := f.service.GetStandard(ctx, created.Standard.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Version.Version)
	assert.Len(t, view.Rules, 1)

	versions, err := f.service.ListVersions(ctx, created.Standard.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 2)

	v1, err := f.service.GetVersion(ctx, created.Standard.ID, 1)
	require.NoError(t, err)
	assert.Len(t, v1.Rules, 2)
	assert.Len(t, v1.Examples[v1.Rules[0].ID], 1)

	list, err := f.service.ListStandards(ctx, f.spaceID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
