package main

import (
	"bytes"
	"context"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/standards/internal/domain"
	"github.com/rpattn/standards/internal/enrichment"
	"github.com/rpattn/standards/internal/logger"
	"github.com/rpattn/standards/internal/repository/memstore"
	"github.com/rpattn/standards/internal/standards"
)

func newSummarizingApp() *app {
	store := memstore.New()
	st := &stores{
		standards: store.Standards(),
		versions:  store.Versions(),
		rules:     store.Rules(),
		examples:  store.Examples(),
		jobs:      store.EnrichmentJobs(),
		close:     func() {},
	}
	summarizer := enrichment.SummarizerFunc(func(_ context.Context, version domain.StandardVersion, _ []domain.Rule) (string, error) {
		return "summary of " + version.Name, nil
	})
	queue := enrichment.NewQueue(st.jobs, summarizer, enrichment.NewSummaryListener(st.versions, nil))
	return &app{
		log:     logger.Nop(),
		stores:  st,
		queue:   queue,
		service: standards.NewService(st.standards, st.versions, st.rules, st.examples, standards.WithSummaryQueue(queue)),
	}
}

func TestRunImportDrainsSummaryJobs(t *testing.T) {
	a := newSummarizingApp()
	fsys := fstest.MapFS{
		".packmind/standards/errors.md": {Data: []byte("# Errors\n\n## Rules\n\n* Wrap errors\n")},
		".packmind/standards/naming.md": {Data: []byte("# Naming\n\n## Rules\n\n* Use camelCase\n")},
		".packmind/standards/tests.md":  {Data: []byte("# Tests\n\n## Rules\n\n* Table driven\n")},
	}
	space := uuid.New()
	var out bytes.Buffer

	require.NoError(t, runImport(context.Background(), a, fsys, "", uuid.New(), space, &out))

	ctx := context.Background()
	list, err := a.stores.standards.ListBySpace(ctx, space)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, standard := range list {
		latest, err := a.stores.versions.FindLatestByStandardID(ctx, standard.ID)
		require.NoError(t, err)
		require.True(t, latest.HasSummary(), "version of %s has no summary", standard.Slug)
		assert.Equal(t, "summary of "+standard.Name, *latest.Summary)

		jobs, err := a.stores.jobs.ListByStandardVersion(ctx, latest.ID)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, domain.EnrichmentJobStatusCompleted, jobs[0].Status)
	}
	assert.Contains(t, out.String(), "errors")
}
