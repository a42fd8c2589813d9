// Package handlers provides HTTP handlers for the match engine API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/faqdesk-ai/match-engine/internal/chat"
	"github.com/faqdesk-ai/match-engine/internal/matching"
	"github.com/faqdesk-ai/match-engine/internal/observability"
	"github.com/faqdesk-ai/match-engine/internal/storage"
)

// ChatHandler serves the public widget chat endpoints.
type ChatHandler struct {
	logger  *observability.Logger
	service *chat.Service
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(logger *observability.Logger, service *chat.Service) *ChatHandler {
	return &ChatHandler{logger: logger, service: service}
}

// ChatRequestDTO is the widget chat request body.
type ChatRequestDTO struct {
	Message string `json:"message"`
}

// ChatResponseDTO is the tagged chat result. Exactly the fields for the
// returned kind are populated.
type ChatResponseDTO struct {
	Kind           string   `json:"kind"`
	Message        string   `json:"message,omitempty"`
	FAQID          string   `json:"faq_id,omitempty"`
	Answer         string   `json:"answer,omitempty"`
	Confidence     float64  `json:"confidence,omitempty"`
	Method         string   `json:"method,omitempty"`
	ExtractedEmail string   `json:"extracted_email,omitempty"`
	Suggestions    []string `json:"suggestions,omitempty"`
}

// WidgetConfigDTO is the public widget bootstrap payload. It never
// includes the tenant's API key.
type WidgetConfigDTO struct {
	TenantName     string `json:"tenant_name"`
	WelcomeMessage string `json:"welcome_message"`
	LeadPrompt     string `json:"lead_prompt"`
}

// Message handles POST /api/v1/widget/{widgetKey}/chat.
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenant, ok := h.resolveTenant(w, r)
	if !ok {
		return
	}

	var req ChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.HandleMessage(ctx, tenant, req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}
		h.logger.Error().Err(err).
			Str("tenant_id", tenant.ID.String()).
			Msg("Chat turn failed")
		writeError(w, http.StatusInternalServerError, "chat unavailable")
		return
	}

	writeJSON(w, http.StatusOK, toChatResponseDTO(result))
}

// Config handles GET /api/v1/widget/{widgetKey}/config.
func (h *ChatHandler) Config(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.resolveTenant(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, WidgetConfigDTO{
		TenantName:     tenant.Name,
		WelcomeMessage: tenant.Settings.WelcomeMessage,
		LeadPrompt:     tenant.Settings.LeadPrompt,
	})
}

func (h *ChatHandler) resolveTenant(w http.ResponseWriter, r *http.Request) (*storage.Tenant, bool) {
	return resolveWidgetTenant(w, r, h.service, h.logger)
}

// resolveWidgetTenant looks up the tenant owning the widget key in the
// URL. Writes the error response itself when the lookup fails.
func resolveWidgetTenant(w http.ResponseWriter, r *http.Request, service *chat.Service, logger *observability.Logger) (*storage.Tenant, bool) {
	widgetKey := chi.URLParam(r, "widgetKey")
	if widgetKey == "" {
		writeError(w, http.StatusBadRequest, "widget key is required")
		return nil, false
	}

	tenant, err := service.TenantByWidgetKey(r.Context(), widgetKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown widget key")
			return nil, false
		}
		logger.Error().Err(err).Msg("Widget tenant lookup failed")
		writeError(w, http.StatusInternalServerError, "service unavailable")
		return nil, false
	}
	return tenant, true
}

func toChatResponseDTO(result *matching.MatchResult) ChatResponseDTO {
	dto := ChatResponseDTO{Kind: string(result.Kind)}
	switch result.Kind {
	case matching.ResultLead:
		dto.Message = result.Message
		dto.ExtractedEmail = result.ExtractedEmail
	case matching.ResultFAQ:
		dto.FAQID = result.FAQID
		dto.Answer = result.Answer
		dto.Confidence = result.Confidence
		dto.Method = result.Method
	default:
		dto.Message = result.Message
		dto.Suggestions = result.Suggestions
	}
	return dto
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
