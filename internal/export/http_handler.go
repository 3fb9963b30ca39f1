package export

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rpattn/standards/internal/httpx"
	"github.com/rpattn/standards/internal/logger"
)

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHTTPHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: logger.OrNop(log).With("component", "ExportHTTP")}
}

// RegisterHTTPHandlers mounts the export endpoints under prefix, which is the
// same prefix the standards API uses.
func (h *Handler) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	prefix = strings.TrimSuffix(prefix, "/")

	mux.HandleFunc("GET "+prefix+"/{id}/markdown", h.handleMarkdown)
	mux.HandleFunc("POST "+prefix+"/{id}/publish", h.handlePublish)
	mux.HandleFunc("GET "+prefix+"/{id}/history.xlsx", h.handleHistory)
}

func (h *Handler) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpx.BadRequest(w, "invalid id")
		return
	}
	var version *int
	if raw := strings.TrimSpace(r.URL.Query().Get("version")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httpx.BadRequest(w, "invalid version")
			return
		}
		version = &parsed
	}
	doc, err := h.service.Markdown(r.Context(), id, version)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("X-Standard-Path", doc.Path)
	_, _ = w.Write([]byte(doc.Content))
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpx.BadRequest(w, "invalid id")
		return
	}
	path, err := h.service.Publish(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpx.BadRequest(w, "invalid id")
		return
	}
	var buf bytes.Buffer
	standard, err := h.service.WriteHistory(r.Context(), id, &buf)
	if err != nil {
		h.fail(w, err)
		return
	}
	filename := fmt.Sprintf("%s-history.xlsx", standard.Slug)
	w.Header().Set("Content-Type", WorkbookMimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if httpx.StatusFor(err) == http.StatusInternalServerError {
		h.log.Error("export failed", "error", err)
	}
	httpx.WriteError(w, err)
}
