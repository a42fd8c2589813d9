package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faqdesk-ai/match-engine/internal/storage"
)

func TestTenantLifecycle(t *testing.T) {
	setup := SetupTestContainers(t)
	defer setup.Cleanup()
	db := setup.OpenDB(t)
	ctx := context.Background()

	repos := storage.NewRepositories(db)

	tenant := &storage.Tenant{Name: "Acme Plumbing"}
	require.NoError(t, repos.Tenants.Create(ctx, tenant))

	// Creation fills in keys and default settings.
	assert.NotEmpty(t, tenant.WidgetKey)
	assert.NotEmpty(t, tenant.APIKey)
	assert.NotEmpty(t, tenant.Settings.LeadTriggers)
	assert.NotEmpty(t, tenant.Settings.FallbackMessage)

	byWidget, err := repos.Tenants.GetByWidgetKey(ctx, tenant.WidgetKey)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, byWidget.ID)
	assert.Equal(t, tenant.Settings.LeadTriggers, byWidget.Settings.LeadTriggers)

	byAPIKey, err := repos.Tenants.GetByAPIKey(ctx, tenant.APIKey)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, byAPIKey.ID)

	_, err = repos.Tenants.GetByWidgetKey(ctx, "wk_nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Settings round-trip through the JSON column.
	settings := byWidget.Settings
	settings.LeadTriggers = []string{"quote", "estimate"}
	settings.AIEnabled = true
	require.NoError(t, repos.Tenants.UpdateSettings(ctx, tenant.ID, settings))

	updated, err := repos.Tenants.GetByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"quote", "estimate"}, updated.Settings.LeadTriggers)
	assert.True(t, updated.Settings.AIEnabled)
}

func TestFAQReplaceAllSemantics(t *testing.T) {
	setup := SetupTestContainers(t)
	defer setup.Cleanup()
	db := setup.OpenDB(t)
	ctx := context.Background()

	repos := storage.NewRepositories(db)

	tenant := &storage.Tenant{Name: "Replace Co"}
	require.NoError(t, repos.Tenants.Create(ctx, tenant))

	first := []*storage.FAQ{
		{ID: "hours", Question: "What are your hours?", Answer: "9-5", Triggers: []string{"hours", "open"}},
		{ID: "pricing", Question: "How much does it cost?", Answer: "$19", Triggers: []string{"pricing", "", "cost"}},
	}
	require.NoError(t, repos.FAQs.ReplaceAll(ctx, tenant.ID, first))

	listed, err := repos.FAQs.ListByTenant(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Authoring order is preserved; it is the scorer's tie-break.
	assert.Equal(t, "hours", listed[0].ID)
	assert.Equal(t, "pricing", listed[1].ID)

	// Blank triggers are dropped, category defaulted.
	assert.Equal(t, []string{"pricing", "cost"}, listed[1].Triggers)
	assert.Equal(t, "General", listed[0].Category)

	// A save is whole-set: nothing from the first save survives.
	second := []*storage.FAQ{
		{ID: "trial", Question: "Is there a trial?", Answer: "14 days", Triggers: []string{"trial"}},
	}
	require.NoError(t, repos.FAQs.ReplaceAll(ctx, tenant.ID, second))

	listed, err = repos.FAQs.ListByTenant(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "trial", listed[0].ID)

	count, err := repos.FAQs.CountByTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// A FAQ without an answer rejects the whole save; the previous set
	// stays intact.
	bad := []*storage.FAQ{
		{ID: "ok", Question: "Fine?", Answer: "Yes", Triggers: nil},
		{ID: "broken", Question: "No answer?", Answer: "  "},
	}
	err = repos.FAQs.ReplaceAll(ctx, tenant.ID, bad)
	assert.ErrorIs(t, err, storage.ErrInvalidFAQ)

	listed, err = repos.FAQs.ListByTenant(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "trial", listed[0].ID)
}

func TestLeadAndConversationPersistence(t *testing.T) {
	setup := SetupTestContainers(t)
	defer setup.Cleanup()
	db := setup.OpenDB(t)
	ctx := context.Background()

	repos := storage.NewRepositories(db)

	tenant := &storage.Tenant{Name: "Lead Co"}
	require.NoError(t, repos.Tenants.Create(ctx, tenant))

	phone := "+1-555-0100"
	lead := &storage.Lead{
		TenantID: tenant.ID,
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Phone:    &phone,
		Source:   storage.LeadSourceChat,
	}
	require.NoError(t, repos.Leads.Create(ctx, lead))

	leads, err := repos.Leads.ListByTenant(ctx, tenant.ID, 10)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "jane@example.com", leads[0].Email)
	require.NotNil(t, leads[0].Phone)
	assert.Equal(t, phone, *leads[0].Phone)

	faqID := "hours"
	convs := []*storage.Conversation{
		{TenantID: tenant.ID, UserMessage: "what are your hours", BotResponse: "9-5", Matched: true, Method: storage.MatchMethodKeyword, FAQID: &faqID, Confidence: 0.82},
		{TenantID: tenant.ID, UserMessage: "do you ship to mars", BotResponse: "not sure", Method: storage.MatchMethodFallback},
	}
	for _, conv := range convs {
		require.NoError(t, repos.Conversations.Create(ctx, conv))
	}

	matched, total, err := repos.Conversations.CountMatched(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, matched)
	assert.Equal(t, 2, total)

	listed, err := repos.Conversations.ListByTenant(ctx, tenant.ID, 10)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}
