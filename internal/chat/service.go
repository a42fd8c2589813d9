// Package chat wires storage, caching, auditing, and the matching
// pipeline into the per-turn chat flow shared by the HTTP handlers and
// the RPC service.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/faqdesk-ai/match-engine/internal/cache"
	"github.com/faqdesk-ai/match-engine/internal/matching"
	"github.com/faqdesk-ai/match-engine/internal/monitoring"
	"github.com/faqdesk-ai/match-engine/internal/observability"
	"github.com/faqdesk-ai/match-engine/internal/storage"
)

// Common errors
var (
	ErrEmptyMessage   = errors.New("empty message")
	ErrMissingContact = errors.New("lead name and email required")
)

// TenantStore is the tenant access the service needs.
type TenantStore interface {
	GetByWidgetKey(ctx context.Context, widgetKey string) (*storage.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*storage.Tenant, error)
	UpdateSettings(ctx context.Context, tenantID uuid.UUID, settings storage.BotSettings) error
}

// FAQStore is the FAQ access the service needs.
type FAQStore interface {
	ReplaceAll(ctx context.Context, tenantID uuid.UUID, faqs []*storage.FAQ) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*storage.FAQ, error)
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
}

// LeadStore is the lead access the service needs.
type LeadStore interface {
	Create(ctx context.Context, lead *storage.Lead) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*storage.Lead, error)
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
}

// ConversationStore is the conversation access the service needs.
type ConversationStore interface {
	Create(ctx context.Context, conv *storage.Conversation) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*storage.Conversation, error)
	CountMatched(ctx context.Context, tenantID uuid.UUID) (matched, total int, err error)
}

// Stores bundles the storage surfaces the service runs on.
type Stores struct {
	Tenants       TenantStore
	FAQs          FAQStore
	Leads         LeadStore
	Conversations ConversationStore
}

// StoresFromRepositories adapts the SQL repositories.
func StoresFromRepositories(repos *storage.Repositories) Stores {
	return Stores{
		Tenants:       repos.Tenants,
		FAQs:          repos.FAQs,
		Leads:         repos.Leads,
		Conversations: repos.Conversations,
	}
}

// Config tunes the service. Zero values select the defaults.
type Config struct {
	// SettingsTTL bounds how stale a cached tenant record may get.
	SettingsTTL time.Duration
	// MaxMessageLen caps sanitized widget messages, in runes.
	MaxMessageLen int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		SettingsTTL:   5 * time.Minute,
		MaxMessageLen: DefaultMaxMessageLen,
	}
}

// Service runs the per-turn chat flow and the tenant admin operations.
// Tenant records are cached per widget key; FAQ sets are read fresh on
// every turn so a PUT takes effect on the next message.
type Service struct {
	stores Stores
	router *matching.Router
	cache  cache.Client
	audit  *monitoring.AuditLogger
	logger *observability.Logger
	config Config
}

// NewService creates a chat service. The cache client and audit logger
// may be nil; caching and audit events are then skipped.
func NewService(stores Stores, router *matching.Router, cacheClient cache.Client, audit *monitoring.AuditLogger, logger *observability.Logger, config Config) *Service {
	if config.SettingsTTL <= 0 {
		config.SettingsTTL = 5 * time.Minute
	}
	if config.MaxMessageLen <= 0 {
		config.MaxMessageLen = DefaultMaxMessageLen
	}
	if logger == nil {
		logger = observability.DefaultLogger()
	}

	return &Service{
		stores: stores,
		router: router,
		cache:  cacheClient,
		audit:  audit,
		logger: logger,
		config: config,
	}
}

// RouterMetrics exposes the matching pipeline's outcome counters.
func (s *Service) RouterMetrics() *matching.RouterMetrics {
	return s.router.Metrics()
}

// TenantByWidgetKey resolves the tenant owning a widget key, consulting
// the cache first. The cached copy never includes the API key; admin
// authentication always reads the database.
func (s *Service) TenantByWidgetKey(ctx context.Context, widgetKey string) (*storage.Tenant, error) {
	key := cache.WidgetCacheKey(widgetKey, "tenant")

	if s.cache != nil {
		data, err := s.cache.Get(ctx, key)
		if err == nil {
			tenant := &storage.Tenant{}
			if err := json.Unmarshal(data, tenant); err == nil {
				return tenant, nil
			}
			s.logger.Warn().Str("key", key).Msg("Dropping undecodable cached tenant")
		} else if err != cache.ErrCacheMiss {
			s.logger.Debug().Err(err).Str("key", key).Msg("Cache get error")
		}
	}

	tenant, err := s.stores.Tenants.GetByWidgetKey(ctx, widgetKey)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(tenant); err == nil {
			if err := s.cache.Set(ctx, key, data, s.config.SettingsTTL); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("Failed to cache tenant")
			}
		}
	}
	return tenant, nil
}

// TenantByID resolves a tenant by ID. Used by the RPC surface, which
// addresses tenants directly; reads the database every time since admin
// callers expect fresh settings.
func (s *Service) TenantByID(ctx context.Context, id uuid.UUID) (*storage.Tenant, error) {
	return s.stores.Tenants.GetByID(ctx, id)
}

// InvalidateTenant drops the cached record for a widget key. The next
// widget request reads the database.
func (s *Service) InvalidateTenant(ctx context.Context, widgetKey string) {
	if s.cache == nil {
		return
	}
	key := cache.WidgetCacheKey(widgetKey, "tenant")
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to invalidate cached tenant")
	}
}

// HandleMessage runs one widget chat turn: sanitize, load the tenant's
// FAQ set, match, log the conversation. Storage failures on the read
// path are returned; a failed conversation write is logged and the
// reply still goes out.
func (s *Service) HandleMessage(ctx context.Context, tenant *storage.Tenant, message string) (*matching.MatchResult, error) {
	start := time.Now()

	message = SanitizeMessage(message, s.config.MaxMessageLen)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	faqs, err := s.stores.FAQs.ListByTenant(ctx, tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("load faqs: %w", err)
	}

	result := s.router.Match(ctx, &matching.MatchRequest{
		Message:         message,
		FAQs:            matchingFAQs(faqs),
		LeadTriggers:    tenant.Settings.LeadTriggers,
		LeadPrompt:      tenant.Settings.LeadPrompt,
		FallbackMessage: tenant.Settings.FallbackMessage,
		AIEnabled:       tenant.Settings.AIEnabled,
	})

	conv := &storage.Conversation{
		TenantID:    tenant.ID,
		UserMessage: message,
		BotResponse: botResponse(result),
		Matched:     result.Kind == matching.ResultFAQ,
		Method:      matchMethod(result),
		Confidence:  result.Confidence,
	}
	if result.FAQID != "" {
		faqID := result.FAQID
		conv.FAQID = &faqID
	}

	if err := s.stores.Conversations.Create(ctx, conv); err != nil {
		s.logger.Warn().Err(err).
			Str("tenant_id", tenant.ID.String()).
			Msg("Failed to log conversation")
	} else if s.audit != nil {
		if err := s.audit.LogChatTurn(ctx, tenant.ID, conv.ID, conv.Method, conv.Matched, conv.Confidence, time.Since(start).Milliseconds()); err != nil {
			s.logger.Warn().Err(err).Msg("Chat turn audit failed")
		}
	}

	return result, nil
}

// CaptureLead validates and stores a lead submitted through the widget
// form. The tenant ID is taken from the resolved tenant, never from the
// payload.
func (s *Service) CaptureLead(ctx context.Context, tenant *storage.Tenant, lead *storage.Lead) error {
	if strings.TrimSpace(lead.Name) == "" || strings.TrimSpace(lead.Email) == "" {
		return ErrMissingContact
	}
	lead.TenantID = tenant.ID

	if err := s.stores.Leads.Create(ctx, lead); err != nil {
		return fmt.Errorf("create lead: %w", err)
	}

	if s.audit != nil {
		if err := s.audit.LogLeadCaptured(ctx, lead); err != nil {
			s.logger.Warn().Err(err).Str("lead_id", lead.ID.String()).Msg("Lead audit failed")
		}
	}
	return nil
}

// ReplaceFAQs swaps a tenant's entire FAQ set.
func (s *Service) ReplaceFAQs(ctx context.Context, tenant *storage.Tenant, faqs []*storage.FAQ, operator string) error {
	if err := s.stores.FAQs.ReplaceAll(ctx, tenant.ID, faqs); err != nil {
		return err
	}
	if s.audit != nil {
		if err := s.audit.LogFAQReplace(ctx, tenant.ID, operator, len(faqs)); err != nil {
			s.logger.Warn().Err(err).Msg("FAQ replace audit failed")
		}
	}
	return nil
}

// UpdateSettings stores new bot settings and drops the tenant's cached
// record so widgets pick the change up immediately.
func (s *Service) UpdateSettings(ctx context.Context, tenant *storage.Tenant, settings storage.BotSettings, operator string) error {
	if err := s.stores.Tenants.UpdateSettings(ctx, tenant.ID, settings); err != nil {
		return err
	}
	tenant.Settings = settings
	s.InvalidateTenant(ctx, tenant.WidgetKey)

	if s.audit != nil {
		if err := s.audit.LogSettingsUpdate(ctx, tenant.ID, operator); err != nil {
			s.logger.Warn().Err(err).Msg("Settings audit failed")
		}
	}
	return nil
}

// ListFAQs returns a tenant's FAQ set in authoring order.
func (s *Service) ListFAQs(ctx context.Context, tenantID uuid.UUID) ([]*storage.FAQ, error) {
	return s.stores.FAQs.ListByTenant(ctx, tenantID)
}

// ListLeads returns a tenant's captured leads, newest first.
func (s *Service) ListLeads(ctx context.Context, tenantID uuid.UUID, limit int) ([]*storage.Lead, error) {
	return s.stores.Leads.ListByTenant(ctx, tenantID, limit)
}

// ListConversations returns a tenant's logged chat turns, newest first.
func (s *Service) ListConversations(ctx context.Context, tenantID uuid.UUID, limit int) ([]*storage.Conversation, error) {
	return s.stores.Conversations.ListByTenant(ctx, tenantID, limit)
}

// Stats summarizes a tenant's dashboard numbers. MatchRate is the
// matched fraction of all logged conversations, 0 when none exist.
type Stats struct {
	FAQCount      int     `json:"faq_count"`
	Conversations int     `json:"conversations"`
	Matched       int     `json:"matched"`
	MatchRate     float64 `json:"match_rate"`
	Leads         int     `json:"leads"`
}

// TenantStats computes the dashboard summary for a tenant.
func (s *Service) TenantStats(ctx context.Context, tenantID uuid.UUID) (*Stats, error) {
	faqCount, err := s.stores.FAQs.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count faqs: %w", err)
	}
	matched, total, err := s.stores.Conversations.CountMatched(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count conversations: %w", err)
	}
	leads, err := s.stores.Leads.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}

	stats := &Stats{
		FAQCount:      faqCount,
		Conversations: total,
		Matched:       matched,
		Leads:         leads,
	}
	if total > 0 {
		stats.MatchRate = float64(matched) / float64(total)
	}
	return stats, nil
}

func matchingFAQs(faqs []*storage.FAQ) []*matching.FAQ {
	out := make([]*matching.FAQ, len(faqs))
	for i, faq := range faqs {
		out[i] = &matching.FAQ{
			ID:       faq.ID,
			Question: faq.Question,
			Answer:   faq.Answer,
			Category: faq.Category,
			Triggers: faq.Triggers,
		}
	}
	return out
}

func botResponse(result *matching.MatchResult) string {
	if result.Kind == matching.ResultFAQ {
		return result.Answer
	}
	return result.Message
}

func matchMethod(result *matching.MatchResult) storage.MatchMethod {
	switch result.Kind {
	case matching.ResultLead:
		return storage.MatchMethodLead
	case matching.ResultFAQ:
		return storage.MatchMethod(result.Method)
	default:
		return storage.MatchMethodFallback
	}
}

var (
	_ TenantStore       = (*storage.TenantRepository)(nil)
	_ FAQStore          = (*storage.FAQRepository)(nil)
	_ LeadStore         = (*storage.LeadRepository)(nil)
	_ ConversationStore = (*storage.ConversationRepository)(nil)
)
