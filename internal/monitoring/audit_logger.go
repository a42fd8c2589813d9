// Package monitoring provides audit event logging for tenant-facing actions.
package monitoring

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/faqdesk-ai/match-engine/internal/cache"
	"github.com/faqdesk-ai/match-engine/internal/observability"
	"github.com/faqdesk-ai/match-engine/internal/storage"
)

// LeadCapturedChannel is the Redis channel lead events publish to.
const LeadCapturedChannel = "leads.captured"

// AuditAction classifies what happened to a resource.
type AuditAction string

const (
	AuditActionCreated  AuditAction = "created"
	AuditActionUpdated  AuditAction = "updated"
	AuditActionReplaced AuditAction = "replaced"
)

// AuditLogger records auditable actions through the structured logger
// and optionally publishes lead events to Redis.
type AuditLogger struct {
	logger      *observability.Logger
	redisClient *cache.RedisClient
}

// AuditEvent represents an auditable action.
type AuditEvent struct {
	ID           uuid.UUID              `json:"id"`
	TenantID     uuid.UUID              `json:"tenant_id"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Action       AuditAction            `json:"action"`
	Operator     string                 `json:"operator"`
	Payload      map[string]interface{} `json:"payload,omitempty"`
	OccurredAt   time.Time              `json:"occurred_at"`
}

// NewAuditLogger creates a new audit logger. redisClient may be nil;
// publishing is then skipped.
func NewAuditLogger(logger *observability.Logger, redisClient *cache.RedisClient) *AuditLogger {
	return &AuditLogger{
		logger:      logger,
		redisClient: redisClient,
	}
}

// LogEvent records an audit event.
func (a *AuditLogger) LogEvent(ctx context.Context, event AuditEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	a.logger.Info().
		Str("event_id", event.ID.String()).
		Str("tenant_id", event.TenantID.String()).
		Str("resource_type", event.ResourceType).
		Str("resource_id", event.ResourceID).
		Str("action", string(event.Action)).
		Str("operator", event.Operator).
		Interface("payload", event.Payload).
		Msg("Audit event")

	return nil
}

// LogChatTurn records one widget chat exchange.
func (a *AuditLogger) LogChatTurn(ctx context.Context, tenantID, conversationID uuid.UUID, method storage.MatchMethod, matched bool, confidence float64, latencyMs int64) error {
	return a.LogEvent(ctx, AuditEvent{
		TenantID:     tenantID,
		ResourceType: "conversation",
		ResourceID:   conversationID.String(),
		Action:       AuditActionCreated,
		Operator:     "widget",
		Payload: map[string]interface{}{
			"method":     string(method),
			"matched":    matched,
			"confidence": confidence,
			"latency_ms": latencyMs,
		},
	})
}

// LogFAQReplace records a wholesale FAQ set replacement.
func (a *AuditLogger) LogFAQReplace(ctx context.Context, tenantID uuid.UUID, operator string, count int) error {
	return a.LogEvent(ctx, AuditEvent{
		TenantID:     tenantID,
		ResourceType: "faq_set",
		ResourceID:   tenantID.String(),
		Action:       AuditActionReplaced,
		Operator:     operator,
		Payload: map[string]interface{}{
			"faq_count": count,
		},
	})
}

// LogSettingsUpdate records a bot settings change.
func (a *AuditLogger) LogSettingsUpdate(ctx context.Context, tenantID uuid.UUID, operator string) error {
	return a.LogEvent(ctx, AuditEvent{
		TenantID:     tenantID,
		ResourceType: "bot_settings",
		ResourceID:   tenantID.String(),
		Action:       AuditActionUpdated,
		Operator:     operator,
	})
}

// LogLeadCaptured records a captured lead and publishes it for live
// dashboard updates.
func (a *AuditLogger) LogLeadCaptured(ctx context.Context, lead *storage.Lead) error {
	err := a.LogEvent(ctx, AuditEvent{
		TenantID:     lead.TenantID,
		ResourceType: "lead",
		ResourceID:   lead.ID.String(),
		Action:       AuditActionCreated,
		Operator:     "widget",
		Payload: map[string]interface{}{
			"name":   lead.Name,
			"email":  lead.Email,
			"source": string(lead.Source),
		},
	})
	if err != nil {
		return err
	}

	return a.PublishLeadCaptured(ctx, lead)
}

// PublishLeadCaptured publishes a lead event to Redis. A nil Redis
// client makes this a no-op.
func (a *AuditLogger) PublishLeadCaptured(ctx context.Context, lead *storage.Lead) error {
	if a.redisClient == nil {
		return nil
	}

	if err := a.redisClient.Publish(ctx, LeadCapturedChannel, lead); err != nil {
		a.logger.Warn().Err(err).Str("lead_id", lead.ID.String()).Msg("Lead event publish failed")
		return err
	}

	return nil
}
