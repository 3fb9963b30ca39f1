package standards

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/standards/internal/domain"
	"github.com/rpattn/standards/internal/events"
	"github.com/rpattn/standards/internal/middleware"
)

func newTestServer(t *testing.T) (*fixture, http.Handler) {
	t.Helper()
	f := newFixture(t)
	mux := http.NewServeMux()
	NewHTTPHandler(f.service, nil).RegisterHTTPHandlers("/standards", mux)
	return f, middleware.AuthHeaders(middleware.DataLoaderMiddleware(f.store.Rules())(mux))
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHTTPCreateEditAndRead(t *testing.T) {
	f, h := newTestServer(t)
	headers := map[string]string{
		middleware.HeaderOrganizationID: f.actor.OrganizationID.String(),
		middleware.HeaderUserID:         f.actor.UserID.String(),
		HeaderOriginSkill:               "editor",
	}

	rec := doJSON(t, h, http.MethodPost, "/standards", map[string]any{
		"spaceId": f.spaceID.String(),
		"name":    "API Style",
		"rules":   []map[string]any{{"content": "Use REST verbs"}, {"content": "Version your endpoints"}},
	}, headers)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created editResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "api-style", created.Standard.Slug)
	require.Len(t, created.Rules, 2)

	createdEvents := f.recorder.OfType(events.TypeStandardCreated)
	require.Len(t, createdEvents, 1)
	env := createdEvents[0].(events.StandardCreated).Envelope
	require.NotNil(t, env.OriginSkill)
	assert.Equal(t, "editor", *env.OriginSkill)
	assert.Equal(t, f.actor.OrganizationID, env.OrganizationID)

	base := "/standards/" + created.Standard.ID.String()
	rec = doJSON(t, h, http.MethodPatch, base+"/name", map[string]string{"name": "API Style"}, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	var same editResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &same))
	assert.False(t, same.Changed)

	rec = doJSON(t, h, http.MethodDelete, base+"/rules/"+created.Rules[0].ID.String(), nil, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var deleted editResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
	assert.Equal(t, 2, deleted.Version.Version)

	rec = doJSON(t, h, http.MethodGet, base+"/versions?include=rules", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var versions []struct {
		Version int           `json:"version"`
		Rules   []domain.Rule `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &versions))
	require.Len(t, versions, 2)
	assert.Len(t, versions[0].Rules, 2)
	assert.Len(t, versions[1].Rules, 1)

	rec = doJSON(t, h, http.MethodGet, base+"/versions/1", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/standards?spaceId="+f.spaceID.String(), nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPErrorMapping(t *testing.T) {
	f, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/standards/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/standards/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/standards", map[string]any{"spaceId": f.spaceID.String(), "name": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/standards/"+uuid.NewString()+"/versions/zero", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
