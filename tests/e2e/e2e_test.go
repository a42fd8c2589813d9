// Package e2e drives the full engine stack in-process on SQLite: the
// same repositories, chat service, and matching pipeline the API binary
// assembles, without containers or network.
package e2e

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faqdesk-ai/match-engine/internal/cache"
	"github.com/faqdesk-ai/match-engine/internal/chat"
	"github.com/faqdesk-ai/match-engine/internal/matching"
	"github.com/faqdesk-ai/match-engine/internal/observability"
	"github.com/faqdesk-ai/match-engine/internal/storage"
)

func openEngine(t *testing.T) (*chat.Service, *storage.Repositories) {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	script, err := os.ReadFile(filepath.Join("..", "..", "db", "migrations", "0001_init_sqlite.sql"))
	require.NoError(t, err)
	_, err = db.Exec(string(script))
	require.NoError(t, err)

	logger := observability.NewLogger(observability.LogConfig{Level: "warn", Format: "console", ServiceName: "e2e-test"})
	router := matching.NewRouter(matching.DefaultRouterConfig(), nil, logger)

	repos := storage.NewRepositories(db)
	service := chat.NewService(chat.StoresFromRepositories(repos), router, cache.NewMemoryClient(100), nil, logger, chat.DefaultConfig())
	return service, repos
}

func seedTenant(t *testing.T, repos *storage.Repositories) *storage.Tenant {
	t.Helper()
	ctx := context.Background()

	tenant := &storage.Tenant{Name: "E2E Bakery"}
	require.NoError(t, repos.Tenants.Create(ctx, tenant))

	faqs := []*storage.FAQ{
		{ID: "hours", Question: "What are your business hours?", Answer: "Open daily 7am to 7pm.", Triggers: []string{"hours", "open", "anytime"}},
		{ID: "gluten", Question: "Do you have gluten free bread?", Answer: "Yes, baked fresh on Tuesdays and Fridays.", Triggers: []string{"gluten", "allergy"}},
		{ID: "custom", Question: "Can you make custom cakes?", Answer: "We love custom orders, give us a week's notice.", Triggers: []string{"custom", "cake", "birthday"}},
	}
	require.NoError(t, repos.FAQs.ReplaceAll(ctx, tenant.ID, faqs))
	return tenant
}

func TestEndToEndChatTurns(t *testing.T) {
	service, repos := openEngine(t)
	tenant := seedTenant(t, repos)
	ctx := context.Background()

	// FAQ match.
	result, err := service.HandleMessage(ctx, tenant, "do you sell gluten free bread?")
	require.NoError(t, err)
	assert.Equal(t, matching.ResultFAQ, result.Kind)
	assert.Equal(t, "gluten", result.FAQID)

	// The documented "anytime" regression: a temporal filler word alone
	// must not drag a query into the hours FAQ, even though "anytime"
	// is listed as a trigger.
	result, err = service.HandleMessage(ctx, tenant, "can I order custom cakes anytime?")
	require.NoError(t, err)
	assert.Equal(t, matching.ResultFAQ, result.Kind)
	assert.Equal(t, "custom", result.FAQID)

	// Lead trigger beats matching.
	result, err = service.HandleMessage(ctx, tenant, "I want to talk to a human about cakes")
	require.NoError(t, err)
	assert.Equal(t, matching.ResultLead, result.Kind)

	// An email address alone signals lead intent and is extracted.
	result, err = service.HandleMessage(ctx, tenant, "reach me at jane@example.com please")
	require.NoError(t, err)
	assert.Equal(t, matching.ResultLead, result.Kind)
	assert.Equal(t, "jane@example.com", result.ExtractedEmail)

	// Nothing in common with any FAQ: canned fallback.
	result, err = service.HandleMessage(ctx, tenant, "quantum chromodynamics")
	require.NoError(t, err)
	assert.Equal(t, matching.ResultFallback, result.Kind)
	assert.NotEmpty(t, result.Message)

	// Every turn above was logged.
	_, total, err := repos.Conversations.CountMatched(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestEndToEndLeadCaptureAndStats(t *testing.T) {
	service, repos := openEngine(t)
	tenant := seedTenant(t, repos)
	ctx := context.Background()

	_, err := service.HandleMessage(ctx, tenant, "what are your hours")
	require.NoError(t, err)
	_, err = service.HandleMessage(ctx, tenant, "completely unrelated gibberish")
	require.NoError(t, err)

	require.NoError(t, service.CaptureLead(ctx, tenant, &storage.Lead{
		Name:  "Sam Baker",
		Email: "sam@example.com",
	}))

	// Leads missing contact details are rejected before storage.
	err = service.CaptureLead(ctx, tenant, &storage.Lead{Name: "   "})
	assert.ErrorIs(t, err, chat.ErrMissingContact)

	stats, err := service.TenantStats(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.FAQCount)
	assert.Equal(t, 2, stats.Conversations)
	assert.Equal(t, 1, stats.Matched)
	assert.InDelta(t, 0.5, stats.MatchRate, 0.001)
	assert.Equal(t, 1, stats.Leads)
}

func TestEndToEndReplaceFAQsMidSession(t *testing.T) {
	service, repos := openEngine(t)
	tenant := seedTenant(t, repos)
	ctx := context.Background()

	result, err := service.HandleMessage(ctx, tenant, "do you make custom birthday cakes")
	require.NoError(t, err)
	assert.Equal(t, "custom", result.FAQID)

	require.NoError(t, service.ReplaceFAQs(ctx, tenant, []*storage.FAQ{
		{ID: "delivery", Question: "Do you deliver?", Answer: "Within 10 miles, yes.", Triggers: []string{"deliver", "delivery"}},
	}, "e2e"))

	// The old set is gone on the very next message.
	result, err = service.HandleMessage(ctx, tenant, "do you make custom birthday cakes")
	require.NoError(t, err)
	assert.Equal(t, matching.ResultFallback, result.Kind)

	result, err = service.HandleMessage(ctx, tenant, "can you deliver to my office")
	require.NoError(t, err)
	assert.Equal(t, "delivery", result.FAQID)
}
