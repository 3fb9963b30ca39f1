package enrichment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/standards/internal/domain"
	"github.com/rpattn/standards/internal/repository/memstore"
)

func TestJobHandler(t *testing.T) {
	store := memstore.New()
	version := seedVersion(t, store)
	job, err := store.EnrichmentJobs().Create(context.Background(), domain.EnrichmentJob{
		StandardID: version.StandardID, StandardVersionID: version.ID,
	})
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewHTTPHandler(store.EnrichmentJobs()).RegisterHTTPHandlers("/enrichment", mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/enrichment/jobs/"+job.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.EnrichmentJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.EnrichmentJobStatusQueued, got.Status)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/enrichment/jobs?standardVersionId="+version.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.EnrichmentJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/enrichment/jobs/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
