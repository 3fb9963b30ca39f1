package ingestion

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rpattn/standards/internal/auth"
	"github.com/rpattn/standards/internal/httpx"
)

// Handler exposes markdown import as an HTTP endpoint.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with a POST endpoint.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		httpx.BadRequest(w, fmt.Sprintf("invalid form data: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.BadRequest(w, fmt.Sprintf("file required: %v", err))
		return
	}
	defer file.Close()

	spaceID, err := uuid.Parse(strings.TrimSpace(r.FormValue("spaceId")))
	if err != nil {
		httpx.BadRequest(w, fmt.Sprintf("invalid space id: %v", err))
		return
	}
	orgID, _ := auth.OrganizationIDFromContext(r.Context())
	if raw := strings.TrimSpace(r.FormValue("organizationId")); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpx.BadRequest(w, fmt.Sprintf("invalid organization id: %v", err))
			return
		}
		if err := auth.EnforceOrganizationScope(r.Context(), parsed); err != nil {
			httpx.WriteJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
			return
		}
		orgID = parsed
	}

	req := Request{
		OrganizationID: orgID,
		SpaceID:        spaceID,
		FileName:       header.Filename,
		Data:           file,
	}
	if skill := strings.TrimSpace(r.FormValue("originSkill")); skill != "" {
		req.OriginSkill = &skill
	}

	summary, err := h.service.Import(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}
