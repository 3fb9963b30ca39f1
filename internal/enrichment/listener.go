package enrichment

import (
	"context"
	"strings"

	"github.com/rpattn/standards/internal/logger"
	"github.com/rpattn/standards/internal/repository"
)

// SummaryListener writes completed summaries onto their version. Empty
// summaries and failures leave the version untouched.
type SummaryListener struct {
	versions repository.StandardVersionRepository
	log      *logger.Logger
}

func NewSummaryListener(versions repository.StandardVersionRepository, log *logger.Logger) *SummaryListener {
	return &SummaryListener{
		versions: versions,
		log:      logger.OrNop(log).With("component", "SummaryListener"),
	}
}

func (l *SummaryListener) OnCompleted(ctx context.Context, event Completed) {
	version := event.Input.StandardVersion
	summary := strings.TrimSpace(event.Summary)
	if summary == "" {
		l.log.Warn("empty summary, skipping update",
			"job_id", event.JobID,
			"standard_id", version.StandardID,
			"version", version.Version,
		)
		return
	}
	if err := l.versions.UpdateSummary(ctx, version.ID, summary); err != nil {
		l.log.Error("failed to store summary",
			"job_id", event.JobID,
			"standard_version_id", version.ID,
			"error", err,
		)
		return
	}
	l.log.Info("summary stored",
		"job_id", event.JobID,
		"standard_id", version.StandardID,
		"version", version.Version,
	)
}

func (l *SummaryListener) OnFailed(_ context.Context, event Failed) {
	version := event.Input.StandardVersion
	l.log.Error("summary generation failed",
		"job_id", event.JobID,
		"standard_id", version.StandardID,
		"version", version.Version,
		"error", event.Err,
	)
}
