package standards

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rpattn/standards/internal/detection"
	"github.com/rpattn/standards/internal/domain"
)

// refreshAssessments asks the detection port to re-assess every (rule,
// language) pair of the new version. Pairs are disjoint so calls run in
// parallel; each one is best-effort.
func (s *Service) refreshAssessments(ctx context.Context, actor Actor, forged ForgeResult) {
	if !s.validateAssessments || s.detection == nil {
		return
	}
	if actor.OrganizationID == uuid.Nil || actor.UserID == nil {
		return
	}

	var g errgroup.Group
	g.SetLimit(s.assessmentConcurrency)
	for _, rule := range forged.Rules {
		for _, lang := range domain.ExampleLanguages(forged.Examples[rule.ID]) {
			req := detection.AssessmentRefresh{
				RuleID:         rule.ID,
				Language:       lang,
				OrganizationID: actor.OrganizationID,
				UserID:         *actor.UserID,
			}
			g.Go(func() error {
				bestEffort(ctx, s.log, "refresh_assessment", func(ctx context.Context) error {
					return s.detection.RefreshAssessment(ctx, req)
				}, "rule_id", req.RuleID, "language", req.Language)
				return nil
			})
		}
	}
	_ = g.Wait()
}
