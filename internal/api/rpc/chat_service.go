// Package rpc provides the Connect service surface for server-to-server
// chat matching. Unlike the widget HTTP routes, callers here are other
// backends holding an admin API key and addressing tenants by ID.
package rpc

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/faqdesk-ai/match-engine/internal/chat"
	"github.com/faqdesk-ai/match-engine/internal/matching"
	"github.com/faqdesk-ai/match-engine/internal/observability"
	"github.com/faqdesk-ai/match-engine/internal/storage"
)

// MatchProcedure is the Connect route the chat service mounts at.
const MatchProcedure = "/rpc/faqdesk.v1.ChatService/Match"

// ChatService implements the Connect chat matching service.
type ChatService struct {
	logger  *observability.Logger
	service *chat.Service
}

// NewChatService creates a new chat RPC service.
func NewChatService(logger *observability.Logger, service *chat.Service) *ChatService {
	return &ChatService{logger: logger, service: service}
}

// MatchRequest is the Connect request message.
type MatchRequest struct {
	TenantID string `json:"tenant_id"`
	Message  string `json:"message"`
}

// MatchResponse is the Connect response message. Kind tags which of the
// optional field groups is populated.
type MatchResponse struct {
	Kind           string   `json:"kind"`
	Message        string   `json:"message,omitempty"`
	FAQID          string   `json:"faq_id,omitempty"`
	Answer         string   `json:"answer,omitempty"`
	Confidence     float64  `json:"confidence,omitempty"`
	Method         string   `json:"method,omitempty"`
	ExtractedEmail string   `json:"extracted_email,omitempty"`
	Suggestions    []string `json:"suggestions,omitempty"`
}

// Match runs one chat turn for a tenant addressed by ID.
func (s *ChatService) Match(ctx context.Context, req *connect.Request[MatchRequest]) (*connect.Response[MatchResponse], error) {
	msg := req.Msg

	if msg.TenantID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("tenant_id is required"))
	}
	if msg.Message == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("message is required"))
	}

	tenantID, err := uuid.Parse(msg.TenantID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invalid tenant_id format"))
	}

	tenant, err := s.service.TenantByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, errors.New("unknown tenant"))
		}
		s.logger.Error().Err(err).Str("tenant_id", msg.TenantID).Msg("RPC tenant lookup failed")
		return nil, connect.NewError(connect.CodeUnavailable, errors.New("tenant lookup failed"))
	}

	result, err := s.service.HandleMessage(ctx, tenant, msg.Message)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("message is empty after sanitization"))
		}
		s.logger.Error().Err(err).Str("tenant_id", msg.TenantID).Msg("RPC chat turn failed")
		return nil, connect.NewError(connect.CodeInternal, errors.New("chat turn failed"))
	}

	return connect.NewResponse(toMatchResponse(result)), nil
}

// Handler returns the Connect unary handler for mounting on an HTTP mux.
func (s *ChatService) Handler() (string, http.Handler) {
	return MatchProcedure, connect.NewUnaryHandler(MatchProcedure, s.Match)
}

func toMatchResponse(result *matching.MatchResult) *MatchResponse {
	resp := &MatchResponse{Kind: string(result.Kind)}
	switch result.Kind {
	case matching.ResultLead:
		resp.Message = result.Message
		resp.ExtractedEmail = result.ExtractedEmail
	case matching.ResultFAQ:
		resp.FAQID = result.FAQID
		resp.Answer = result.Answer
		resp.Confidence = result.Confidence
		resp.Method = result.Method
	default:
		resp.Message = result.Message
		resp.Suggestions = result.Suggestions
	}
	return resp
}
