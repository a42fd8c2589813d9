package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/faqdesk-ai/match-engine/cmd/match-engine-api/middleware"
	"github.com/faqdesk-ai/match-engine/internal/chat"
	"github.com/faqdesk-ai/match-engine/internal/observability"
	"github.com/faqdesk-ai/match-engine/internal/storage"
)

// adminOperator labels audit events originating from the admin API.
const adminOperator = "admin-api"

// FAQsHandler serves the authenticated tenant admin endpoints: FAQ set
// management, bot settings, conversations, and dashboard stats.
type FAQsHandler struct {
	logger  *observability.Logger
	service *chat.Service
}

// NewFAQsHandler creates a new FAQs handler.
func NewFAQsHandler(logger *observability.Logger, service *chat.Service) *FAQsHandler {
	return &FAQsHandler{logger: logger, service: service}
}

// FAQDTO is the wire shape of one FAQ record.
type FAQDTO struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Category string   `json:"category,omitempty"`
	Triggers []string `json:"triggers"`
}

// ReplaceFAQsRequestDTO is the wholesale FAQ replacement payload. The
// entire set is swapped in one transaction; there is no partial update.
type ReplaceFAQsRequestDTO struct {
	FAQs []FAQDTO `json:"faqs"`
}

// List handles GET /api/v1/faqs.
func (h *FAQsHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	faqs, err := h.service.ListFAQs(r.Context(), tenant.ID)
	if err != nil {
		h.logger.Error().Err(err).
			Str("tenant_id", tenant.ID.String()).
			Msg("FAQ listing failed")
		writeError(w, http.StatusInternalServerError, "faq listing unavailable")
		return
	}

	dtos := make([]FAQDTO, len(faqs))
	for i, faq := range faqs {
		dtos[i] = FAQDTO{
			ID:       faq.ID,
			Question: faq.Question,
			Answer:   faq.Answer,
			Category: faq.Category,
			Triggers: faq.Triggers,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"faqs": dtos})
}

// Replace handles PUT /api/v1/faqs.
func (h *FAQsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	var req ReplaceFAQsRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	faqs := make([]*storage.FAQ, len(req.FAQs))
	for i, dto := range req.FAQs {
		faqs[i] = &storage.FAQ{
			ID:       dto.ID,
			Question: dto.Question,
			Answer:   dto.Answer,
			Category: dto.Category,
			Triggers: dto.Triggers,
		}
	}

	if err := h.service.ReplaceFAQs(r.Context(), tenant, faqs, adminOperator); err != nil {
		if errors.Is(err, storage.ErrInvalidFAQ) {
			writeError(w, http.StatusBadRequest, "each faq needs a question and an answer")
			return
		}
		h.logger.Error().Err(err).
			Str("tenant_id", tenant.ID.String()).
			Msg("FAQ replacement failed")
		writeError(w, http.StatusInternalServerError, "faq replacement unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"replaced": len(faqs)})
}

// GetSettings handles GET /api/v1/settings.
func (h *FAQsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, tenant.Settings)
}

// UpdateSettings handles PUT /api/v1/settings.
func (h *FAQsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	var settings storage.BotSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.UpdateSettings(r.Context(), tenant, settings, adminOperator); err != nil {
		h.logger.Error().Err(err).
			Str("tenant_id", tenant.ID.String()).
			Msg("Settings update failed")
		writeError(w, http.StatusInternalServerError, "settings update unavailable")
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// Conversations handles GET /api/v1/conversations.
func (h *FAQsHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	limit := parseLimit(r, 100)
	conversations, err := h.service.ListConversations(r.Context(), tenant.ID, limit)
	if err != nil {
		h.logger.Error().Err(err).
			Str("tenant_id", tenant.ID.String()).
			Msg("Conversation listing failed")
		writeError(w, http.StatusInternalServerError, "conversation listing unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"conversations": conversations})
}

// Stats handles GET /api/v1/stats.
func (h *FAQsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	tenant, ok := requireTenant(w, r)
	if !ok {
		return
	}

	stats, err := h.service.TenantStats(r.Context(), tenant.ID)
	if err != nil {
		h.logger.Error().Err(err).
			Str("tenant_id", tenant.ID.String()).
			Msg("Stats computation failed")
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func requireTenant(w http.ResponseWriter, r *http.Request) (*storage.Tenant, bool) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return tenant, true
}
