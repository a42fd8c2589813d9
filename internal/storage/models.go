// Package storage provides database models and repositories for the match engine.
package storage

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MatchMethod identifies which pipeline stage produced a chat response.
type MatchMethod string

const (
	MatchMethodKeyword  MatchMethod = "smart_keyword"
	MatchMethodAI       MatchMethod = "ai"
	MatchMethodLead     MatchMethod = "lead"
	MatchMethodFallback MatchMethod = "fallback"
)

// LeadSource identifies how a lead entered the system.
type LeadSource string

const (
	LeadSourceChat   LeadSource = "chat"
	LeadSourceForm   LeadSource = "form"
	LeadSourceImport LeadSource = "import"
)

// BotSettings holds per-tenant bot behavior, stored as JSON on the tenant row.
type BotSettings struct {
	LeadTriggers    []string `json:"lead_triggers"`
	FallbackMessage string   `json:"fallback_message"`
	LeadPrompt      string   `json:"lead_prompt"`
	WelcomeMessage  string   `json:"welcome_message,omitempty"`
	AIEnabled       bool     `json:"ai_enabled"`
}

// DefaultBotSettings returns the settings assigned to newly created tenants.
func DefaultBotSettings() BotSettings {
	return BotSettings{
		LeadTriggers:    []string{"contact", "sales", "pricing", "demo", "agent", "human"},
		FallbackMessage: "I'm not sure about that. Type 'contact' to speak with our team!",
		LeadPrompt:      "I'd be happy to connect you with our team! To help us serve you better, may I have your name?",
		WelcomeMessage:  "Hi! How can I help you today?",
		AIEnabled:       false,
	}
}

// Tenant represents a customer account owning a FAQ set and widget.
type Tenant struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	WidgetKey    string      `json:"widget_key" db:"widget_key"`
	APIKey       string      `json:"-" db:"api_key"`
	ContactEmail *string     `json:"contact_email,omitempty" db:"contact_email"`
	Settings     BotSettings `json:"settings" db:"settings"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// FAQ represents one question/answer pair with its matching hints.
// The ID is author-supplied and unique only within a tenant. Position
// preserves authoring order so that scoring ties resolve to the
// first-listed FAQ.
type FAQ struct {
	TenantID  uuid.UUID `json:"-" db:"tenant_id"`
	ID        string    `json:"id" db:"id"`
	Question  string    `json:"question" db:"question"`
	Answer    string    `json:"answer" db:"answer"`
	Category  string    `json:"category" db:"category"`
	Triggers  []string  `json:"triggers" db:"triggers"`
	Position  int       `json:"-" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Lead represents a captured contact request.
type Lead struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	TenantID            uuid.UUID  `json:"-" db:"tenant_id"`
	Name                string     `json:"name" db:"name"`
	Email               string     `json:"email" db:"email"`
	Phone               *string    `json:"phone,omitempty" db:"phone"`
	Company             *string    `json:"company,omitempty" db:"company"`
	Message             *string    `json:"message,omitempty" db:"message"`
	ConversationSnippet *string    `json:"conversation_snippet,omitempty" db:"conversation_snippet"`
	SourceURL           *string    `json:"source_url,omitempty" db:"source_url"`
	Source              LeadSource `json:"source" db:"source"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
}

// Conversation represents one logged chat turn.
type Conversation struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	TenantID    uuid.UUID   `json:"-" db:"tenant_id"`
	UserMessage string      `json:"user_message" db:"user_message"`
	BotResponse string      `json:"bot_response" db:"bot_response"`
	Matched     bool        `json:"matched" db:"matched"`
	Method      MatchMethod `json:"method" db:"method"`
	FAQID       *string     `json:"faq_id,omitempty" db:"faq_id"`
	Confidence  float64     `json:"confidence" db:"confidence"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// NewWidgetKey generates a public widget key for embedding the chat widget.
func NewWidgetKey() string {
	return "wk_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewAPIKey generates a secret API key for the tenant admin API.
func NewAPIKey() string {
	return "sk_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
