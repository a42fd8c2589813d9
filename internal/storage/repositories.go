// Package storage provides database models and repositories for the match engine.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrConflict      = errors.New("record conflict")
	ErrInvalidTenant = errors.New("invalid tenant")
	ErrInvalidFAQ    = errors.New("invalid faq")
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// TxDB is a DB that can also open transactions. *sql.DB satisfies it.
type TxDB interface {
	DB
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// execer is the subset of DB needed by the insert helpers, satisfied by
// both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// TenantRepository handles tenant CRUD operations.
type TenantRepository struct {
	db DB
}

// NewTenantRepository creates a new tenant repository.
func NewTenantRepository(db DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// Create creates a new tenant. Missing keys and settings are filled with
// generated defaults.
func (r *TenantRepository) Create(ctx context.Context, tenant *Tenant) error {
	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}
	if tenant.WidgetKey == "" {
		tenant.WidgetKey = NewWidgetKey()
	}
	if tenant.APIKey == "" {
		tenant.APIKey = NewAPIKey()
	}
	if len(tenant.Settings.LeadTriggers) == 0 && tenant.Settings.FallbackMessage == "" {
		tenant.Settings = DefaultBotSettings()
	}
	tenant.CreatedAt = time.Now()
	tenant.UpdatedAt = time.Now()

	settings, err := json.Marshal(tenant.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	query := `
		INSERT INTO tenants (id, name, widget_key, api_key, contact_email, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		tenant.ID, tenant.Name, tenant.WidgetKey, tenant.APIKey,
		tenant.ContactEmail, settings, tenant.CreatedAt, tenant.UpdatedAt,
	)
	return err
}

const tenantColumns = `id, name, widget_key, api_key, contact_email, settings, created_at, updated_at`

func scanTenant(row *sql.Row) (*Tenant, error) {
	tenant := &Tenant{}
	var settings []byte
	err := row.Scan(
		&tenant.ID, &tenant.Name, &tenant.WidgetKey, &tenant.APIKey,
		&tenant.ContactEmail, &settings, &tenant.CreatedAt, &tenant.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(settings, &tenant.Settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return tenant, nil
}

// GetByID retrieves a tenant by ID.
func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return scanTenant(r.db.QueryRowContext(ctx, query, id))
}

// GetByWidgetKey retrieves a tenant by its public widget key.
func (r *TenantRepository) GetByWidgetKey(ctx context.Context, widgetKey string) (*Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE widget_key = $1`
	return scanTenant(r.db.QueryRowContext(ctx, query, widgetKey))
}

// GetByAPIKey retrieves a tenant by its secret API key.
func (r *TenantRepository) GetByAPIKey(ctx context.Context, apiKey string) (*Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE api_key = $1`
	return scanTenant(r.db.QueryRowContext(ctx, query, apiKey))
}

// GetByName retrieves a tenant by name.
func (r *TenantRepository) GetByName(ctx context.Context, name string) (*Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE name = $1`
	return scanTenant(r.db.QueryRowContext(ctx, query, name))
}

// List lists all tenants ordered by name.
func (r *TenantRepository) List(ctx context.Context) ([]*Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*Tenant
	for rows.Next() {
		tenant := &Tenant{}
		var settings []byte
		if err := rows.Scan(
			&tenant.ID, &tenant.Name, &tenant.WidgetKey, &tenant.APIKey,
			&tenant.ContactEmail, &settings, &tenant.CreatedAt, &tenant.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(settings, &tenant.Settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}

// UpdateSettings replaces a tenant's bot settings.
func (r *TenantRepository) UpdateSettings(ctx context.Context, tenantID uuid.UUID, settings BotSettings) error {
	encoded, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	query := `UPDATE tenants SET settings = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, encoded, time.Now(), tenantID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// FAQRepository handles FAQ set operations.
type FAQRepository struct {
	db TxDB
}

// NewFAQRepository creates a new FAQ repository.
func NewFAQRepository(db TxDB) *FAQRepository {
	return &FAQRepository{db: db}
}

// ReplaceAll atomically replaces a tenant's entire FAQ set. Saves are
// whole-set: the previous rows are deleted and the new set inserted in
// authoring order, so there is no partial-update path to reason about.
func (r *FAQRepository) ReplaceAll(ctx context.Context, tenantID uuid.UUID, faqs []*FAQ) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin faq replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM faqs WHERE tenant_id = $1`, tenantID); err != nil {
		return fmt.Errorf("clear faqs: %w", err)
	}

	now := time.Now()
	for i, faq := range faqs {
		if faq.ID == "" || strings.TrimSpace(faq.Question) == "" || strings.TrimSpace(faq.Answer) == "" {
			return fmt.Errorf("faq at position %d: %w", i, ErrInvalidFAQ)
		}

		faq.TenantID = tenantID
		faq.Position = i
		faq.Triggers = cleanTriggers(faq.Triggers)
		if faq.Category == "" {
			faq.Category = "General"
		}
		if faq.CreatedAt.IsZero() {
			faq.CreatedAt = now
		}
		faq.UpdatedAt = now

		if err := insertFAQ(ctx, tx, faq); err != nil {
			return fmt.Errorf("insert faq %s: %w", faq.ID, err)
		}
	}

	return tx.Commit()
}

// cleanTriggers drops blank entries so they never reach the weight table.
func cleanTriggers(triggers []string) []string {
	cleaned := make([]string, 0, len(triggers))
	for _, trigger := range triggers {
		if strings.TrimSpace(trigger) == "" {
			continue
		}
		cleaned = append(cleaned, trigger)
	}
	return cleaned
}

func insertFAQ(ctx context.Context, ex execer, faq *FAQ) error {
	if faq.Triggers == nil {
		faq.Triggers = []string{}
	}
	triggers, err := json.Marshal(faq.Triggers)
	if err != nil {
		return fmt.Errorf("encode triggers: %w", err)
	}

	query := `
		INSERT INTO faqs (tenant_id, id, question, answer, category, triggers, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = ex.ExecContext(ctx, query,
		faq.TenantID, faq.ID, faq.Question, faq.Answer, faq.Category,
		triggers, faq.Position, faq.CreatedAt, faq.UpdatedAt,
	)
	return err
}

// ListByTenant retrieves a tenant's FAQ set in authoring order.
func (r *FAQRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*FAQ, error) {
	query := `
		SELECT tenant_id, id, question, answer, category, triggers, position, created_at, updated_at
		FROM faqs
		WHERE tenant_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var faqs []*FAQ
	for rows.Next() {
		faq := &FAQ{}
		var triggers []byte
		if err := rows.Scan(
			&faq.TenantID, &faq.ID, &faq.Question, &faq.Answer, &faq.Category,
			&triggers, &faq.Position, &faq.CreatedAt, &faq.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(triggers, &faq.Triggers); err != nil {
			return nil, fmt.Errorf("decode triggers for faq %s: %w", faq.ID, err)
		}
		faqs = append(faqs, faq)
	}
	return faqs, rows.Err()
}

// GetByID retrieves one FAQ by its author-supplied ID with tenant scoping.
func (r *FAQRepository) GetByID(ctx context.Context, tenantID uuid.UUID, faqID string) (*FAQ, error) {
	query := `
		SELECT tenant_id, id, question, answer, category, triggers, position, created_at, updated_at
		FROM faqs
		WHERE tenant_id = $1 AND id = $2
	`
	faq := &FAQ{}
	var triggers []byte
	err := r.db.QueryRowContext(ctx, query, tenantID, faqID).Scan(
		&faq.TenantID, &faq.ID, &faq.Question, &faq.Answer, &faq.Category,
		&triggers, &faq.Position, &faq.CreatedAt, &faq.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(triggers, &faq.Triggers); err != nil {
		return nil, fmt.Errorf("decode triggers for faq %s: %w", faq.ID, err)
	}
	return faq, nil
}

// CountByTenant returns the number of FAQs in a tenant's set.
func (r *FAQRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM faqs WHERE tenant_id = $1`, tenantID).Scan(&count)
	return count, err
}

// LeadRepository handles lead capture operations.
type LeadRepository struct {
	db DB
}

// NewLeadRepository creates a new lead repository.
func NewLeadRepository(db DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create stores a captured lead.
func (r *LeadRepository) Create(ctx context.Context, lead *Lead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	if lead.Source == "" {
		lead.Source = LeadSourceChat
	}
	lead.CreatedAt = time.Now()

	query := `
		INSERT INTO leads (id, tenant_id, name, email, phone, company, message,
			conversation_snippet, source_url, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		lead.ID, lead.TenantID, lead.Name, lead.Email, lead.Phone, lead.Company,
		lead.Message, lead.ConversationSnippet, lead.SourceURL, lead.Source, lead.CreatedAt,
	)
	return err
}

// ListByTenant retrieves a tenant's leads, newest first.
func (r *LeadRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*Lead, error) {
	query := `
		SELECT id, tenant_id, name, email, phone, company, message,
			conversation_snippet, source_url, source, created_at
		FROM leads
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`
	args := []interface{}{tenantID}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*Lead
	for rows.Next() {
		lead := &Lead{}
		if err := rows.Scan(
			&lead.ID, &lead.TenantID, &lead.Name, &lead.Email, &lead.Phone, &lead.Company,
			&lead.Message, &lead.ConversationSnippet, &lead.SourceURL, &lead.Source, &lead.CreatedAt,
		); err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// CountByTenant returns the number of captured leads for a tenant.
func (r *LeadRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads WHERE tenant_id = $1`, tenantID).Scan(&count)
	return count, err
}

// ConversationRepository handles chat-turn logging.
type ConversationRepository struct {
	db DB
}

// NewConversationRepository creates a new conversation repository.
func NewConversationRepository(db DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create logs one chat turn.
func (r *ConversationRepository) Create(ctx context.Context, conv *Conversation) error {
	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}
	conv.CreatedAt = time.Now()

	query := `
		INSERT INTO conversations (id, tenant_id, user_message, bot_response, matched,
			method, faq_id, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		conv.ID, conv.TenantID, conv.UserMessage, conv.BotResponse, conv.Matched,
		conv.Method, conv.FAQID, conv.Confidence, conv.CreatedAt,
	)
	return err
}

// ListByTenant retrieves a tenant's logged turns, newest first.
func (r *ConversationRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]*Conversation, error) {
	query := `
		SELECT id, tenant_id, user_message, bot_response, matched, method, faq_id, confidence, created_at
		FROM conversations
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`
	args := []interface{}{tenantID}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []*Conversation
	for rows.Next() {
		conv := &Conversation{}
		if err := rows.Scan(
			&conv.ID, &conv.TenantID, &conv.UserMessage, &conv.BotResponse, &conv.Matched,
			&conv.Method, &conv.FAQID, &conv.Confidence, &conv.CreatedAt,
		); err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

// CountMatched returns how many logged turns resolved to a FAQ answer.
func (r *ConversationRepository) CountMatched(ctx context.Context, tenantID uuid.UUID) (matched, total int, err error) {
	query := `
		SELECT
			COUNT(CASE WHEN matched THEN 1 END),
			COUNT(*)
		FROM conversations
		WHERE tenant_id = $1
	`
	err = r.db.QueryRowContext(ctx, query, tenantID).Scan(&matched, &total)
	return matched, total, err
}

// Repositories bundles all repositories together.
type Repositories struct {
	Tenants       *TenantRepository
	FAQs          *FAQRepository
	Leads         *LeadRepository
	Conversations *ConversationRepository
}

// NewRepositories creates all repositories with the given database connection.
func NewRepositories(db TxDB) *Repositories {
	return &Repositories{
		Tenants:       NewTenantRepository(db),
		FAQs:          NewFAQRepository(db),
		Leads:         NewLeadRepository(db),
		Conversations: NewConversationRepository(db),
	}
}
