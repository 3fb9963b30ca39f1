package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/standards/internal/auth"
	"github.com/rpattn/standards/internal/repository/memstore"
)

func TestAuthHeaders(t *testing.T) {
	org, user := uuid.New(), uuid.New()
	var gotOrg uuid.UUID
	var gotUser *uuid.UUID
	handler := AuthHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrg, _ = auth.OrganizationIDFromContext(r.Context())
		gotUser, _ = auth.UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderOrganizationID, org.String())
	req.Header.Set(HeaderUserID, user.String())
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, org, gotOrg)
	require.NotNil(t, gotUser)
	assert.Equal(t, user, *gotUser)

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.Header.Set(HeaderUserID, "nope")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDataLoaderAndLogging(t *testing.T) {
	store := memstore.New()
	var found bool
	handler := LoggingMiddleware(nil)(DataLoaderMiddleware(store.Rules())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		found = RuleLoaderFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, found)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
