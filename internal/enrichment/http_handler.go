package enrichment

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rpattn/standards/internal/domain"
	"github.com/rpattn/standards/internal/httpx"
	"github.com/rpattn/standards/internal/repository"
)

// Handler exposes summary job state for inspection.
type Handler struct {
	jobs repository.EnrichmentJobRepository
}

func NewHTTPHandler(jobs repository.EnrichmentJobRepository) *Handler {
	return &Handler{jobs: jobs}
}

func (h *Handler) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	prefix = strings.TrimSuffix(prefix, "/")

	mux.HandleFunc("GET "+prefix+"/jobs", h.handleList)
	mux.HandleFunc("GET "+prefix+"/jobs/{id}", h.handleGet)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpx.BadRequest(w, "invalid job id")
		return
	}
	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, job)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	versionID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("standardVersionId")))
	if err != nil {
		httpx.BadRequest(w, "invalid standardVersionId")
		return
	}
	jobs, err := h.jobs.ListByStandardVersion(r.Context(), versionID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if jobs == nil {
		jobs = []domain.EnrichmentJob{}
	}
	httpx.WriteJSON(w, http.StatusOK, jobs)
}
