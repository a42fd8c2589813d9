package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faqdesk-ai/match-engine/internal/cache"
	"github.com/faqdesk-ai/match-engine/internal/chat"
	"github.com/faqdesk-ai/match-engine/internal/matching"
	"github.com/faqdesk-ai/match-engine/internal/monitoring"
	"github.com/faqdesk-ai/match-engine/internal/observability"
	"github.com/faqdesk-ai/match-engine/internal/storage"
)

// newTestService wires the full chat stack against containerized
// Postgres and Redis, matching the API binary's production assembly
// minus the AI client.
func newTestService(t *testing.T, setup *TestContainerSetup) (*chat.Service, *storage.Repositories) {
	t.Helper()

	db := setup.OpenDB(t)
	repos := storage.NewRepositories(db)

	redisClient, err := cache.NewRedisClient(cache.RedisConfig{Addr: setup.RedisAddr})
	require.NoError(t, err)
	t.Cleanup(func() { redisClient.Close() })

	logger := observability.NewLogger(observability.LogConfig{Level: "warn", Format: "console", ServiceName: "integration-test"})
	router := matching.NewRouter(matching.DefaultRouterConfig(), nil, logger)
	audit := monitoring.NewAuditLogger(logger, redisClient)

	service := chat.NewService(chat.StoresFromRepositories(repos), router, redisClient, audit, logger, chat.Config{
		SettingsTTL: time.Minute,
	})
	return service, repos
}

func seedChatTenant(t *testing.T, repos *storage.Repositories) *storage.Tenant {
	t.Helper()
	ctx := context.Background()

	tenant := &storage.Tenant{Name: "Chat Flow Co"}
	require.NoError(t, repos.Tenants.Create(ctx, tenant))

	faqs := []*storage.FAQ{
		{ID: "hours", Question: "What are your hours?", Answer: "We are open 9-5, Monday to Friday.", Triggers: []string{"hours", "open"}},
		{ID: "pricing", Question: "How much does it cost?", Answer: "Plans start at $19/month.", Triggers: []string{"pricing", "cost"}},
	}
	require.NoError(t, repos.FAQs.ReplaceAll(ctx, tenant.ID, faqs))
	return tenant
}

func TestWidgetChatFlow(t *testing.T) {
	setup := SetupTestContainers(t)
	defer setup.Cleanup()
	service, repos := newTestService(t, setup)
	ctx := context.Background()

	tenant := seedChatTenant(t, repos)

	// A plain FAQ question matches and logs a conversation row.
	result, err := service.HandleMessage(ctx, tenant, "What are your hours?")
	require.NoError(t, err)
	assert.Equal(t, matching.ResultFAQ, result.Kind)
	assert.Equal(t, "hours", result.FAQID)
	assert.Equal(t, matching.MethodSmartKeyword, result.Method)
	assert.GreaterOrEqual(t, result.Confidence, 0.15)

	// Lead triggers win over FAQ matches, even strong ones.
	result, err = service.HandleMessage(ctx, tenant, "what are your hours? also connect me to sales")
	require.NoError(t, err)
	assert.Equal(t, matching.ResultLead, result.Kind)

	// No overlap at all falls back to the canned response.
	result, err = service.HandleMessage(ctx, tenant, "zebra xylophone")
	require.NoError(t, err)
	assert.Equal(t, matching.ResultFallback, result.Kind)

	// HTML in widget input is stripped before matching.
	result, err = service.HandleMessage(ctx, tenant, "<b>what</b> are your <i>hours</i>?")
	require.NoError(t, err)
	assert.Equal(t, matching.ResultFAQ, result.Kind)
	assert.Equal(t, "hours", result.FAQID)

	matched, total, err := repos.Conversations.CountMatched(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, matched)
	assert.Equal(t, 4, total)
}

func TestFAQReplaceTakesEffectNextTurn(t *testing.T) {
	setup := SetupTestContainers(t)
	defer setup.Cleanup()
	service, repos := newTestService(t, setup)
	ctx := context.Background()

	tenant := seedChatTenant(t, repos)

	result, err := service.HandleMessage(ctx, tenant, "how much does it cost")
	require.NoError(t, err)
	assert.Equal(t, "pricing", result.FAQID)

	// FAQ sets are read fresh every turn, so a replace is visible
	// immediately with no cache invalidation involved.
	newSet := []*storage.FAQ{
		{ID: "shipping", Question: "Do you ship internationally?", Answer: "Yes, worldwide.", Triggers: []string{"shipping", "international"}},
	}
	require.NoError(t, service.ReplaceFAQs(ctx, tenant, newSet, "test"))

	result, err = service.HandleMessage(ctx, tenant, "how much does it cost")
	require.NoError(t, err)
	assert.Equal(t, matching.ResultFallback, result.Kind)

	result, err = service.HandleMessage(ctx, tenant, "do you offer international shipping")
	require.NoError(t, err)
	assert.Equal(t, matching.ResultFAQ, result.Kind)
	assert.Equal(t, "shipping", result.FAQID)
}

func TestTenantCacheInvalidation(t *testing.T) {
	setup := SetupTestContainers(t)
	defer setup.Cleanup()
	service, repos := newTestService(t, setup)
	ctx := context.Background()

	tenant := seedChatTenant(t, repos)

	// Prime the cache through the widget lookup path.
	cached, err := service.TenantByWidgetKey(ctx, tenant.WidgetKey)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, cached.ID)

	// Settings updates must be visible on the next widget lookup, not
	// after TTL expiry.
	settings := tenant.Settings
	settings.FallbackMessage = "Updated fallback."
	require.NoError(t, service.UpdateSettings(ctx, tenant, settings, "test"))

	fresh, err := service.TenantByWidgetKey(ctx, tenant.WidgetKey)
	require.NoError(t, err)
	assert.Equal(t, "Updated fallback.", fresh.Settings.FallbackMessage)

	// The database agrees.
	stored, err := repos.Tenants.GetByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated fallback.", stored.Settings.FallbackMessage)
}

func TestLeadCapturePublishesEvent(t *testing.T) {
	setup := SetupTestContainers(t)
	defer setup.Cleanup()
	service, repos := newTestService(t, setup)
	ctx := context.Background()

	tenant := seedChatTenant(t, repos)

	redisClient, err := cache.NewRedisClient(cache.RedisConfig{Addr: setup.RedisAddr})
	require.NoError(t, err)
	defer redisClient.Close()

	events, unsubscribe, err := redisClient.Subscribe(ctx, monitoring.LeadCapturedChannel)
	require.NoError(t, err)
	defer unsubscribe()

	lead := &storage.Lead{Name: "Jane Doe", Email: "jane@example.com"}
	require.NoError(t, service.CaptureLead(ctx, tenant, lead))

	select {
	case payload := <-events:
		assert.Contains(t, string(payload), "jane@example.com")
	case <-time.After(5 * time.Second):
		t.Fatal("no lead event published")
	}

	leads, err := repos.Leads.ListByTenant(ctx, tenant.ID, 10)
	require.NoError(t, err)
	require.Len(t, leads, 1)
}
