package standards

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rpattn/standards/internal/auth"
	"github.com/rpattn/standards/internal/domain"
	"github.com/rpattn/standards/internal/httpx"
	"github.com/rpattn/standards/internal/logger"
	"github.com/rpattn/standards/internal/middleware"
)

// HeaderOriginSkill tags edits with the tool that initiated them.
const HeaderOriginSkill = "X-Origin-Skill"

const maxBodySize = 1 << 20

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHTTPHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: logger.OrNop(log).With("component", "StandardsHTTP")}
}

// RegisterHTTPHandlers mounts the standards API under prefix.
func (h *Handler) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	prefix = strings.TrimSuffix(prefix, "/")

	mux.HandleFunc("GET "+prefix, h.handleList)
	mux.HandleFunc("POST "+prefix, h.handleCreate)
	mux.HandleFunc("GET "+prefix+"/{id}", h.handleGet)
	mux.HandleFunc("PUT "+prefix+"/{id}", h.handleUpdate)
	mux.HandleFunc("PATCH "+prefix+"/{id}/name", h.handleRename)
	mux.HandleFunc("PATCH "+prefix+"/{id}/description", h.handleDescription)
	mux.HandleFunc("POST "+prefix+"/{id}/rules", h.handleAddRule)
	mux.HandleFunc("PUT "+prefix+"/{id}/rules/{ruleId}", h.handleUpdateRule)
	mux.HandleFunc("DELETE "+prefix+"/{id}/rules/{ruleId}", h.handleDeleteRule)
	mux.HandleFunc("GET "+prefix+"/{id}/versions", h.handleListVersions)
	mux.HandleFunc("GET "+prefix+"/{id}/versions/{version}", h.handleGetVersion)
}

type createPayload struct {
	SpaceID     string      `json:"spaceId"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Scope       *string     `json:"scope"`
	Summary     *string     `json:"summary"`
	Rules       []RuleInput `json:"rules"`
}

type updatePayload struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Scope       *string      `json:"scope"`
	Rules       []RuleUpdate `json:"rules"`
}

type renamePayload struct {
	Name string `json:"name"`
}

type descriptionPayload struct {
	Description string `json:"description"`
}

type ruleContentPayload struct {
	Content string `json:"content"`
}

type editResponse struct {
	Standard    domain.Standard         `json:"standard"`
	Version     domain.StandardVersion  `json:"version"`
	Rules       []domain.Rule           `json:"rules"`
	RuleMapping map[uuid.UUID]uuid.UUID `json:"ruleMapping,omitempty"`
	Changed     bool                    `json:"changed"`
}

type versionWithRules struct {
	domain.StandardVersion
	Rules []domain.Rule `json:"rules,omitempty"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	spaceID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("spaceId")))
	if err != nil {
		httpx.BadRequest(w, "invalid spaceId")
		return
	}
	list, err := h.service.ListStandards(r.Context(), spaceID)
	if err != nil {
		h.fail(w, "list standards", err)
		return
	}
	if list == nil {
		list = []domain.Standard{}
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload createPayload
	if !decode(w, r, &payload) {
		return
	}
	spaceID, err := uuid.Parse(strings.TrimSpace(payload.SpaceID))
	if err != nil {
		httpx.BadRequest(w, fmt.Sprintf("invalid spaceId: %v", err))
		return
	}
	result, err := h.service.CreateStandard(r.Context(), CreateStandardRequest{
		Actor:       actorFromRequest(r),
		SpaceID:     spaceID,
		Name:        payload.Name,
		Description: payload.Description,
		Scope:       payload.Scope,
		Summary:     payload.Summary,
		Rules:       payload.Rules,
	})
	if err != nil {
		h.fail(w, "create standard", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toEditResponse(result))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	view, err := h.service.GetStandard(r.Context(), id)
	if err != nil {
		h.fail(w, "get standard", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var payload updatePayload
	if !decode(w, r, &payload) {
		return
	}
	result, err := h.service.UpdateStandard(r.Context(), UpdateStandardRequest{
		Actor:       actorFromRequest(r),
		StandardID:  id,
		Name:        payload.Name,
		Description: payload.Description,
		Scope:       payload.Scope,
		Rules:       payload.Rules,
	})
	h.writeEdit(w, "update standard", result, err)
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var payload renamePayload
	if !decode(w, r, &payload) {
		return
	}
	result, err := h.service.RenameStandard(r.Context(), RenameStandardRequest{Actor: actorFromRequest(r), StandardID: id, Name: payload.Name})
	h.writeEdit(w, "rename standard", result, err)
}

func (h *Handler) handleDescription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var payload descriptionPayload
	if !decode(w, r, &payload) {
		return
	}
	result, err := h.service.UpdateDescription(r.Context(), UpdateDescriptionRequest{Actor: actorFromRequest(r), StandardID: id, Description: payload.Description})
	h.writeEdit(w, "update description", result, err)
}

func (h *Handler) handleAddRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var payload RuleInput
	if !decode(w, r, &payload) {
		return
	}
	result, err := h.service.AddRule(r.Context(), AddRuleRequest{Actor: actorFromRequest(r), StandardID: id, Rule: payload})
	h.writeEdit(w, "add rule", result, err)
}

func (h *Handler) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ruleID, ok := pathID(w, r, "ruleId")
	if !ok {
		return
	}
	var payload ruleContentPayload
	if !decode(w, r, &payload) {
		return
	}
	result, err := h.service.UpdateRule(r.Context(), UpdateRuleRequest{Actor: actorFromRequest(r), StandardID: id, RuleID: ruleID, Content: payload.Content})
	h.writeEdit(w, "update rule", result, err)
}

func (h *Handler) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ruleID, ok := pathID(w, r, "ruleId")
	if !ok {
		return
	}
	result, err := h.service.DeleteRule(r.Context(), DeleteRuleRequest{Actor: actorFromRequest(r), StandardID: id, RuleID: ruleID})
	h.writeEdit(w, "delete rule", result, err)
}

// handleListVersions lists versions; include=rules batches the rule lookups
// through the request's rule loader.
func (h *Handler) handleListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	versions, err := h.service.ListVersions(r.Context(), id)
	if err != nil {
		h.fail(w, "list versions", err)
		return
	}
	out := make([]versionWithRules, len(versions))
	for i, v := range versions {
		out[i] = versionWithRules{StandardVersion: v}
	}
	if r.URL.Query().Get("include") == "rules" {
		loader := middleware.RuleLoaderFromContext(r.Context())
		if loader == nil {
			for i := range out {
				rules, err := h.service.GetVersionRules(r.Context(), out[i].ID)
				if err != nil {
					h.fail(w, "list version rules", err)
					return
				}
				out[i].Rules = rules
			}
		} else {
			ids := make([]uuid.UUID, len(versions))
			for i, v := range versions {
				ids[i] = v.ID
			}
			byVersion, err := loader.LoadMany(r.Context(), ids)
			if err != nil {
				h.fail(w, "load version rules", err)
				return
			}
			for i := range out {
				out[i].Rules = byVersion[out[i].ID]
			}
		}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	number, err := strconv.Atoi(r.PathValue("version"))
	if err != nil || number < 1 {
		httpx.BadRequest(w, "invalid version")
		return
	}
	view, err := h.service.GetVersion(r.Context(), id, number)
	if err != nil {
		h.fail(w, "get version", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) writeEdit(w http.ResponseWriter, op string, result EditResult, err error) {
	if err != nil {
		h.fail(w, op, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toEditResponse(result))
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) == http.StatusInternalServerError {
		h.log.Error("request failed", "operation", op, "error", err)
	}
	httpx.WriteError(w, err)
}

func toEditResponse(result EditResult) editResponse {
	rules := result.Rules
	if rules == nil {
		rules = []domain.Rule{}
	}
	return editResponse{
		Standard:    result.Standard,
		Version:     result.Version,
		Rules:       rules,
		RuleMapping: result.RuleMapping,
		Changed:     result.Changed,
	}
}

func actorFromRequest(r *http.Request) Actor {
	actor := Actor{Source: "api"}
	if org, ok := auth.OrganizationIDFromContext(r.Context()); ok {
		actor.OrganizationID = org
	}
	if user, ok := auth.UserIDFromContext(r.Context()); ok {
		actor.UserID = user
	}
	if skill := strings.TrimSpace(r.Header.Get(HeaderOriginSkill)); skill != "" {
		actor.OriginSkill = &skill
	}
	return actor
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		httpx.BadRequest(w, fmt.Sprintf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(dst); err != nil {
		httpx.BadRequest(w, fmt.Sprintf("invalid payload: %v", err))
		return false
	}
	return true
}
