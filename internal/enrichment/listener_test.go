package enrichment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/standards/internal/domain"
	"github.com/rpattn/standards/internal/repository/memstore"
)

func TestSummaryListenerSkipsEmptySummary(t *testing.T) {
	store := memstore.New()
	version := seedVersion(t, store)
	listener := NewSummaryListener(store.Versions(), nil)

	listener.OnCompleted(context.Background(), Completed{JobID: uuid.New(), Input: Input{StandardVersion: version}, Summary: "   "})

	stored, err := store.Versions().FindByID(context.Background(), version.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Summary)
}

func TestSummaryListenerIgnoresMissingVersion(t *testing.T) {
	store := memstore.New()
	listener := NewSummaryListener(store.Versions(), nil)

	missing := domain.NewStandardVersion(uuid.New(), "x", "x", "", nil, 1, nil, nil)
	assert.NotPanics(t, func() {
		listener.OnCompleted(context.Background(), Completed{Input: Input{StandardVersion: missing}, Summary: "text"})
	})
}
