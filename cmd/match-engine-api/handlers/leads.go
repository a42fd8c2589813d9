package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/faqdesk-ai/match-engine/internal/chat"
	"github.com/faqdesk-ai/match-engine/internal/observability"
	"github.com/faqdesk-ai/match-engine/internal/storage"
)

// LeadsHandler serves the widget lead-capture endpoint and the admin
// lead listing.
type LeadsHandler struct {
	logger  *observability.Logger
	service *chat.Service
}

// NewLeadsHandler creates a new leads handler.
func NewLeadsHandler(logger *observability.Logger, service *chat.Service) *LeadsHandler {
	return &LeadsHandler{logger: logger, service: service}
}

// LeadRequestDTO is the widget lead form payload.
type LeadRequestDTO struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone,omitempty"`
	Company             string `json:"company,omitempty"`
	Message             string `json:"message,omitempty"`
	ConversationSnippet string `json:"conversation_snippet,omitempty"`
	SourceURL           string `json:"source_url,omitempty"`
}

// Create handles POST /api/v1/widget/{widgetKey}/leads.
func (h *LeadsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenant, ok := resolveWidgetTenant(w, r, h.service, h.logger)
	if !ok {
		return
	}

	var req LeadRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lead := &storage.Lead{
		Name:   req.Name,
		Email:  req.Email,
		Source: storage.LeadSourceChat,
	}
	if req.Phone != "" {
		lead.Phone = &req.Phone
	}
	if req.Company != "" {
		lead.Company = &req.Company
	}
	if req.Message != "" {
		lead.Message = &req.Message
	}
	if req.ConversationSnippet != "" {
		lead.ConversationSnippet = &req.ConversationSnippet
	}
	if req.SourceURL != "" {
		lead.SourceURL = &req.SourceURL
	}

	if err := h.service.CaptureLead(ctx, tenant, lead); err != nil {
		if errors.Is(err, chat.ErrMissingContact) {
			writeError(w, http.StatusBadRequest, "name and email are required")
			return
		}
		h.logger.Error().Err(err).
			Str("tenant_id", tenant.ID.String()).
			Msg("Lead capture failed")
		writeError(w, http.StatusInternalServerError, "lead capture unavailable")
		return
	}

	writeJSON(w, http.StatusCreated, lead)
}

// List handles GET /api/v1/leads for the authenticated tenant.
func (h *LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	limit := parseLimit(r, 100)
	leads, err := h.service.ListLeads(r.Context(), tenant.ID, limit)
	if err != nil {
		h.logger.Error().Err(err).
			Str("tenant_id", tenant.ID.String()).
			Msg("Lead listing failed")
		writeError(w, http.StatusInternalServerError, "lead listing unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"leads": leads})
}

func parseLimit(r *http.Request, fallback int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return fallback
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit < 1 {
		return fallback
	}
	return limit
}
