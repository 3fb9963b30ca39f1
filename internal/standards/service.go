package standards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rpattn/standards/internal/detection"
	"github.com/rpattn/standards/internal/domain"
	"github.com/rpattn/standards/internal/enrichment"
	"github.com/rpattn/standards/internal/events"
	"github.com/rpattn/standards/internal/logger"
	"github.com/rpattn/standards/internal/metrics"
	"github.com/rpattn/standards/internal/repository"
	"github.com/rpattn/standards/pkg/validator"
)

// SummaryQueue accepts summary enrichment jobs without waiting for them.
type SummaryQueue interface {
	Submit(ctx context.Context, input enrichment.Input) (uuid.UUID, error)
}

// Service implements the standard edit use cases on top of the VersionForge.
//
// Every content-changing edit runs the same sequence, with no shared
// transaction across repositories:
//
//  1. load the standard, its latest version and rules
//  2. compare the proposed state with the latest version; stop if equal
//  3. bump the standard with an optimistic version check
//  4. forge version N+1 (best-effort detection migration inside)
//  5. emit events, enqueue the summary job, refresh assessments (best-effort)
//
// A failure in 3 or 4 is returned. Nothing compensates a standard bumped in 3
// whose version failed in 4. loadForEdit refuses such a standard with
// ErrVersionConflict until an operator repairs it, so versions stay contiguous.
type Service struct {
	standards repository.StandardRepository
	versions  repository.StandardVersionRepository
	rules     repository.RuleRepository
	examples  repository.RuleExampleRepository

	forge     *VersionForge
	detection detection.Port
	events    events.Sink
	summaries SummaryQueue
	log       *logger.Logger
	now       func() time.Time

	validateAssessments   bool
	assessmentConcurrency int
	forgeOpts             []ForgeOption
}

type Option func(*Service)

// WithDetectionPort enables rule artifact migration and assessment refresh.
func WithDetectionPort(port detection.Port) Option {
	return func(s *Service) {
		s.detection = port
	}
}

func WithEventSink(sink events.Sink) Option {
	return func(s *Service) {
		s.events = sink
	}
}

func WithSummaryQueue(queue SummaryQueue) Option {
	return func(s *Service) {
		s.summaries = queue
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithAssessmentValidation turns on the per-(rule, language) assessment
// refresh after each committed edit. It needs a detection port.
func WithAssessmentValidation(enabled bool) Option {
	return func(s *Service) {
		s.validateAssessments = enabled
	}
}

func WithForgeOptions(opts ...ForgeOption) Option {
	return func(s *Service) {
		s.forgeOpts = append(s.forgeOpts, opts...)
	}
}

func NewService(
	standards repository.StandardRepository,
	versions repository.StandardVersionRepository,
	rules repository.RuleRepository,
	examples repository.RuleExampleRepository,
	opts ...Option,
) *Service {
	service := &Service{
		standards:             standards,
		versions:              versions,
		rules:                 rules,
		examples:              examples,
		log:                   logger.Nop(),
		now:                   time.Now,
		assessmentConcurrency: 4,
	}
	for _, opt := range opts {
		opt(service)
	}

	forgeOpts := []ForgeOption{WithForgeLogger(service.log)}
	if service.detection != nil {
		forgeOpts = append(forgeOpts, WithForgeDetectionPort(service.detection))
	}
	forgeOpts = append(forgeOpts, service.forgeOpts...)
	service.forge = NewVersionForge(versions, rules, examples, forgeOpts...)
	service.log = service.log.With("component", "StandardService")
	return service
}

// CreateStandard creates a standard at version 1 with a unique slug.
func (s *Service) CreateStandard(ctx context.Context, req CreateStandardRequest) (result EditResult, err error) {
	defer func() { s.observe("create_standard", result, err) }()

	res := validator.NewValidationResult()
	if req.SpaceID == uuid.Nil {
		res.Add("spaceId", "space id is required", nil)
	}
	name := res.Name("name", req.Name)
	scope := res.Scope("scope", req.Scope)
	specs := make([]RuleSpec, 0, len(req.Rules))
	for i, rule := range req.Rules {
		specs = append(specs, validateRuleInput(res, fmt.Sprintf("rules[%d]", i), rule))
	}
	if err := res.Err(); err != nil {
		return EditResult{}, err
	}

	slugBase := name
	if strings.TrimSpace(req.Slug) != "" {
		slugBase = req.Slug
	}
	slug, err := s.uniqueSlug(ctx, req.SpaceID, slugBase)
	if err != nil {
		return EditResult{}, err
	}
	standard, err := s.standards.Add(ctx, domain.NewStandard(req.SpaceID, name, slug, req.Description, scope, req.UserID))
	if err != nil {
		return EditResult{}, fmt.Errorf("failed to create standard: %w", err)
	}

	forged, err := s.forge.Forge(ctx, ForgeRequest{
		StandardID:     standard.ID,
		Name:           standard.Name,
		Slug:           standard.Slug,
		Description:    standard.Description,
		Scope:          standard.Scope,
		Summary:        nonBlank(req.Summary),
		Version:        standard.Version,
		OrganizationID: req.OrganizationID,
		UserID:         req.UserID,
		Rules:          specs,
	})
	if err != nil {
		return EditResult{}, err
	}

	ctx = context.WithoutCancel(ctx)
	s.emit(ctx, events.StandardCreated{
		Envelope:          s.envelope(req.Actor, standard.SpaceID),
		StandardID:        standard.ID,
		StandardVersionID: forged.Version.ID,
		Name:              standard.Name,
		Slug:              standard.Slug,
		RuleCount:         len(forged.Rules),
	})
	for _, rule := range forged.Rules {
		s.emitRuleAdded(ctx, req.Actor, standard, forged.Version, rule)
	}
	s.afterCommit(ctx, req.Actor, forged)

	s.log.Info("standard created", "standard_id", standard.ID, "slug", standard.Slug, "rules", len(forged.Rules))
	return EditResult{
		Standard:    standard,
		Version:     forged.Version,
		Rules:       forged.Rules,
		RuleMapping: forged.RuleMapping,
		Changed:     true,
	}, nil
}

// UpdateStandard replaces name, description, scope and the rule list in one
// edit. Rules referenced by id are carried forward; the others are new.
func (s *Service) UpdateStandard(ctx context.Context, req UpdateStandardRequest) (result EditResult, err error) {
	defer func() { s.observe("update_standard", result, err) }()

	res := validator.NewValidationResult()
	name := res.Name("name", req.Name)
	scope := res.Scope("scope", req.Scope)
	if err := res.Err(); err != nil {
		return EditResult{}, err
	}

	snap, err := s.loadForEdit(ctx, req.StandardID)
	if err != nil {
		return EditResult{}, err
	}
	carried, err := s.carryForward(ctx, snap.rules)
	if err != nil {
		return EditResult{}, err
	}
	index := make(map[uuid.UUID]int, len(snap.rules))
	for i, rule := range snap.rules {
		index[rule.ID] = i
	}

	specs := make([]RuleSpec, 0, len(req.Rules))
	seen := make(map[int]bool, len(req.Rules))
	var added []int
	examplesChanged := false
	for i, update := range req.Rules {
		field := fmt.Sprintf("rules[%d]", i)
		content := res.RuleContent(field+".content", update.Content)
		var examples []ExampleSpec
		if update.Examples != nil {
			examples = validateExamples(res, field+".examples", *update.Examples)
		}
		if update.ID == nil {
			added = append(added, len(specs))
			specs = append(specs, RuleSpec{Content: content, Examples: examples})
			continue
		}
		idx, ok := index[*update.ID]
		if !ok {
			res.Add(field+".id", "rule does not belong to the latest version", update.ID.String())
			continue
		}
		if seen[idx] {
			res.Add(field+".id", "rule is referenced more than once", update.ID.String())
			continue
		}
		seen[idx] = true

		spec := carried[idx]
		if update.Examples != nil {
			if !sameExamples(spec.Examples, examples) {
				examplesChanged = true
			}
			spec.Examples = examples
		}
		if content != spec.Content {
			spec.Content = content
			spec.OldRuleID = nil
		}
		specs = append(specs, spec)
	}
	if err := res.Err(); err != nil {
		return EditResult{}, err
	}

	return s.apply(ctx, req.Actor, snap, proposal{
		name:            name,
		description:     req.Description,
		scope:           scope,
		rules:           specs,
		examplesChanged: examplesChanged,
	}, added)
}

// RenameStandard changes the name. The slug is kept.
func (s *Service) RenameStandard(ctx context.Context, req RenameStandardRequest) (result EditResult, err error) {
	defer func() { s.observe("rename_standard", result, err) }()

	res := validator.NewValidationResult()
	name := res.Name("name", req.Name)
	if err := res.Err(); err != nil {
		return EditResult{}, err
	}
	snap, err := s.loadForEdit(ctx, req.StandardID)
	if err != nil {
		return EditResult{}, err
	}
	specs, err := s.carryForward(ctx, snap.rules)
	if err != nil {
		return EditResult{}, err
	}
	p := snap.withRules(specs)
	p.name = name
	return s.apply(ctx, req.Actor, snap, p, nil)
}

func (s *Service) UpdateDescription(ctx context.Context, req UpdateDescriptionRequest) (result EditResult, err error) {
	defer func() { s.observe("update_description", result, err) }()

	snap, err := s.loadForEdit(ctx, req.StandardID)
	if err != nil {
		return EditResult{}, err
	}
	specs, err := s.carryForward(ctx, snap.rules)
	if err != nil {
		return EditResult{}, err
	}
	p := snap.withRules(specs)
	p.description = req.Description
	return s.apply(ctx, req.Actor, snap, p, nil)
}

// AddRule appends a rule to the latest version's rule list.
func (s *Service) AddRule(ctx context.Context, req AddRuleRequest) (result EditResult, err error) {
	defer func() { s.observe("add_rule", result, err) }()

	res := validator.NewValidationResult()
	spec := validateRuleInput(res, "rule", req.Rule)
	if err := res.Err(); err != nil {
		return EditResult{}, err
	}
	snap, err := s.loadForEdit(ctx, req.StandardID)
	if err != nil {
		return EditResult{}, err
	}
	specs, err := s.carryForward(ctx, snap.rules)
	if err != nil {
		return EditResult{}, err
	}
	specs = append(specs, spec)
	return s.apply(ctx, req.Actor, snap, snap.withRules(specs), []int{len(specs) - 1})
}

// UpdateRule replaces the content of one rule. The edited rule gets a new
// identity without a mapping entry; its examples are kept.
func (s *Service) UpdateRule(ctx context.Context, req UpdateRuleRequest) (result EditResult, err error) {
	defer func() { s.observe("update_rule", result, err) }()

	res := validator.NewValidationResult()
	content := res.RuleContent("content", req.Content)
	if err := res.Err(); err != nil {
		return EditResult{}, err
	}
	snap, err := s.loadForEdit(ctx, req.StandardID)
	if err != nil {
		return EditResult{}, err
	}
	idx, err := s.ruleIndex(ctx, snap, req.RuleID)
	if err != nil {
		return EditResult{}, err
	}
	specs, err := s.carryForward(ctx, snap.rules)
	if err != nil {
		return EditResult{}, err
	}
	if specs[idx].Content != content {
		specs[idx].Content = content
		specs[idx].OldRuleID = nil
	}
	return s.apply(ctx, req.Actor, snap, snap.withRules(specs), nil)
}

// DeleteRule forges a version without the given rule.
func (s *Service) DeleteRule(ctx context.Context, req DeleteRuleRequest) (result EditResult, err error) {
	defer func() { s.observe("delete_rule", result, err) }()

	snap, err := s.loadForEdit(ctx, req.StandardID)
	if err != nil {
		return EditResult{}, err
	}
	idx, err := s.ruleIndex(ctx, snap, req.RuleID)
	if err != nil {
		return EditResult{}, err
	}
	specs, err := s.carryForward(ctx, snap.rules)
	if err != nil {
		return EditResult{}, err
	}
	specs = append(specs[:idx], specs[idx+1:]...)
	return s.apply(ctx, req.Actor, snap, snap.withRules(specs), nil)
}

// snapshot is the state an edit starts from.
type snapshot struct {
	standard domain.Standard
	latest   domain.StandardVersion
	rules    []domain.Rule
}

// withRules returns the latest state with the given rules, for edits to modify.
func (snap snapshot) withRules(rules []RuleSpec) proposal {
	return proposal{
		name:        snap.latest.Name,
		description: snap.latest.Description,
		scope:       snap.latest.Scope,
		rules:       rules,
	}
}

type proposal struct {
	name            string
	description     string
	scope           *string
	rules           []RuleSpec
	examplesChanged bool
}

func (p proposal) differsFrom(snap snapshot) bool {
	if p.name != snap.latest.Name || p.description != snap.latest.Description {
		return true
	}
	if !domain.ScopeEqual(p.scope, snap.latest.Scope) || p.examplesChanged {
		return true
	}
	if len(p.rules) != len(snap.rules) {
		return true
	}
	for i, rule := range snap.rules {
		if p.rules[i].Content != rule.Content {
			return true
		}
	}
	return false
}

func (s *Service) load(ctx context.Context, standardID uuid.UUID) (snapshot, error) {
	standard, err := s.standards.GetByID(ctx, standardID)
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to load standard %s: %w", standardID, err)
	}
	latest, err := s.versions.FindLatestByStandardID(ctx, standardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return snapshot{}, fmt.Errorf("standard %s: %w", standardID, domain.ErrNoVersions)
		}
		return snapshot{}, fmt.Errorf("failed to load latest version of %s: %w", standardID, err)
	}
	rules, err := s.rules.FindByStandardVersionID(ctx, latest.ID)
	if err != nil {
		return snapshot{}, fmt.Errorf("failed to load rules of version %s: %w", latest.ID, err)
	}
	return snapshot{standard: standard, latest: latest, rules: rules}, nil
}

// loadForEdit refuses a standard whose counter ran ahead of its version rows,
// since forging on top of it would leave a gap in the version numbers.
func (s *Service) loadForEdit(ctx context.Context, standardID uuid.UUID) (snapshot, error) {
	snap, err := s.load(ctx, standardID)
	if err != nil {
		return snapshot{}, err
	}
	if snap.standard.Version != snap.latest.Version {
		return snapshot{}, fmt.Errorf("standard %s is at version %d but its latest version row is %d: %w",
			standardID, snap.standard.Version, snap.latest.Version, domain.ErrVersionConflict)
	}
	return snap, nil
}

// carryForward turns the current rules into specs linked to their old ids.
func (s *Service) carryForward(ctx context.Context, rules []domain.Rule) ([]RuleSpec, error) {
	specs := make([]RuleSpec, 0, len(rules))
	for _, rule := range rules {
		examples, err := s.examples.FindByRuleID(ctx, rule.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load examples of rule %s: %w", rule.ID, err)
		}
		oldID := rule.ID
		spec := RuleSpec{Content: rule.Content, OldRuleID: &oldID, Examples: make([]ExampleSpec, 0, len(examples))}
		for _, ex := range examples {
			spec.Examples = append(spec.Examples, ExampleSpec{Lang: ex.Lang, Positive: ex.Positive, Negative: ex.Negative})
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// ruleIndex locates ruleID in the latest version. Unknown rules are NotFound;
// rules of older versions fail validation.
func (s *Service) ruleIndex(ctx context.Context, snap snapshot, ruleID uuid.UUID) (int, error) {
	for i, rule := range snap.rules {
		if rule.ID == ruleID {
			return i, nil
		}
	}
	if _, err := s.rules.FindByID(ctx, ruleID); err != nil {
		return -1, fmt.Errorf("failed to load rule %s: %w", ruleID, err)
	}
	return -1, fmt.Errorf("%w: rule %s does not belong to the latest version of standard %s",
		domain.ErrValidation, ruleID, snap.standard.ID)
}

// apply commits p as version N+1 when it differs from the snapshot. added
// holds the indexes of p.rules that are new to the standard.
func (s *Service) apply(ctx context.Context, actor Actor, snap snapshot, p proposal, added []int) (EditResult, error) {
	if !p.differsFrom(snap) {
		return EditResult{
			Standard: snap.standard,
			Version:  snap.latest,
			Rules:    snap.rules,
			Changed:  false,
		}, nil
	}

	next := snap.standard.Version + 1
	bumped := snap.standard.
		WithName(p.name).
		WithDescription(p.description).
		WithScope(p.scope).
		WithVersion(next).
		WithEditor(actor.UserID)
	saved, err := s.standards.Update(ctx, bumped, snap.standard.Version)
	if err != nil {
		return EditResult{}, fmt.Errorf("failed to update standard %s to version %d: %w", snap.standard.ID, next, err)
	}

	forged, err := s.forge.Forge(ctx, ForgeRequest{
		StandardID:     saved.ID,
		Name:           saved.Name,
		Slug:           saved.Slug,
		Description:    saved.Description,
		Scope:          saved.Scope,
		Version:        next,
		OrganizationID: actor.OrganizationID,
		UserID:         actor.UserID,
		Rules:          p.rules,
	})
	if err != nil {
		return EditResult{}, err
	}

	ctx = context.WithoutCancel(ctx)
	for _, i := range added {
		s.emitRuleAdded(ctx, actor, saved, forged.Version, forged.Rules[i])
	}
	s.afterCommit(ctx, actor, forged)

	s.log.Info("standard version committed",
		"standard_id", saved.ID,
		"version", next,
		"rules", len(forged.Rules),
		"carried_forward", len(forged.RuleMapping),
	)
	return EditResult{
		Standard:    saved,
		Version:     forged.Version,
		Rules:       forged.Rules,
		RuleMapping: forged.RuleMapping,
		Changed:     true,
	}, nil
}

func (s *Service) afterCommit(ctx context.Context, actor Actor, forged ForgeResult) {
	s.enqueueSummary(ctx, actor, forged)
	s.refreshAssessments(ctx, actor, forged)
}

func (s *Service) enqueueSummary(ctx context.Context, actor Actor, forged ForgeResult) {
	if s.summaries == nil || forged.Version.HasSummary() {
		return
	}
	bestEffort(ctx, s.log, "enqueue_summary", func(ctx context.Context) error {
		jobID, err := s.summaries.Submit(ctx, enrichment.Input{
			OrganizationID:  actor.OrganizationID,
			UserID:          actor.UserID,
			StandardVersion: forged.Version,
			Rules:           forged.Rules,
		})
		if err != nil {
			return err
		}
		s.log.Debug("summary job queued", "job_id", jobID, "standard_version_id", forged.Version.ID)
		return nil
	}, "standard_id", forged.Version.StandardID, "version", forged.Version.Version)
}

func (s *Service) emitRuleAdded(ctx context.Context, actor Actor, standard domain.Standard, version domain.StandardVersion, rule domain.Rule) {
	s.emit(ctx, events.RuleAdded{
		Envelope:          s.envelope(actor, standard.SpaceID),
		StandardID:        standard.ID,
		StandardVersionID: version.ID,
		RuleID:            rule.ID,
		Version:           version.Version,
	})
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	bestEffort(ctx, s.log, "emit_event", func(ctx context.Context) error {
		return s.events.Emit(ctx, event)
	}, "event", string(event.EventType()), "standard_id", event.Key())
}

func (s *Service) envelope(actor Actor, spaceID uuid.UUID) events.Envelope {
	return events.Envelope{
		OrganizationID: actor.OrganizationID,
		SpaceID:        spaceID,
		UserID:         actor.UserID,
		OriginSkill:    actor.OriginSkill,
		Source:         actor.Source,
		OccurredAt:     s.now().UTC(),
	}
}

func (s *Service) observe(operation string, result EditResult, err error) {
	outcome := "unchanged"
	switch {
	case err != nil:
		outcome = "failed"
	case result.Changed:
		outcome = "changed"
	}
	metrics.EditsTotal.WithLabelValues(operation, outcome).Inc()
	if err != nil {
		s.log.Debug("edit rejected", "operation", operation, "error", err)
	}
}

func validateRuleInput(res *validator.ValidationResult, field string, in RuleInput) RuleSpec {
	return RuleSpec{
		Content:  res.RuleContent(field+".content", in.Content),
		Examples: validateExamples(res, field+".examples", in.Examples),
	}
}

func validateExamples(res *validator.ValidationResult, field string, in []ExampleInput) []ExampleSpec {
	out := make([]ExampleSpec, 0, len(in))
	for i, ex := range in {
		f := fmt.Sprintf("%s[%d]", field, i)
		lang := res.Language(f+".lang", ex.Lang)
		res.Example(f, ex.Positive, ex.Negative)
		out = append(out, ExampleSpec{Lang: lang, Positive: ex.Positive, Negative: ex.Negative})
	}
	return out
}

func sameExamples(a, b []ExampleSpec) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
