package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rpattn/standards/internal/auth"
	"github.com/rpattn/standards/internal/httpx"
)

const (
	HeaderOrganizationID = "X-Organization-ID"
	HeaderUserID         = "X-User-ID"
)

// AuthHeaders moves the organization and user headers set by the gateway into
// the request context. Malformed ids are rejected; absent ones are allowed.
func AuthHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if raw := strings.TrimSpace(r.Header.Get(HeaderOrganizationID)); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				httpx.BadRequest(w, "invalid "+HeaderOrganizationID)
				return
			}
			ctx = auth.ContextWithOrganizationID(ctx, id)
		}
		if raw := strings.TrimSpace(r.Header.Get(HeaderUserID)); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				httpx.BadRequest(w, "invalid "+HeaderUserID)
				return
			}
			ctx = auth.ContextWithUserID(ctx, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
