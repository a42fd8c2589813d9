// Package engine is the embeddable matching facade. Applications that
// keep FAQ storage on their side can run the full matching pipeline
// in-process: pass the message, the tenant's FAQ set, and the lead
// trigger list, and get the tagged result back. No database, cache, or
// HTTP surface is involved.
package engine

import (
	"context"

	"github.com/faqdesk-ai/match-engine/internal/matching"
	"github.com/faqdesk-ai/match-engine/internal/observability"
)

// FAQ is one question/answer record with its matching hints.
type FAQ struct {
	ID       string
	Question string
	Answer   string
	Category string
	Triggers []string
}

// ResultKind tags which pipeline stage produced the response.
type ResultKind string

const (
	ResultLead     ResultKind = ResultKind(matching.ResultLead)
	ResultFAQ      ResultKind = ResultKind(matching.ResultFAQ)
	ResultFallback ResultKind = ResultKind(matching.ResultFallback)
)

// Result is the tagged outcome of one chat turn.
type Result struct {
	Kind           ResultKind
	FAQID          string
	Answer         string
	Confidence     float64
	Method         string
	ExtractedEmail string
	Message        string
	Suggestions    []string
}

// AIMatcher asks an external model to pick the best FAQ for a message.
// Optional; without one the pipeline goes straight from keyword scoring
// to the canned fallback.
type AIMatcher = matching.AIMatcher

// Options configures a Matcher. Zero values select the tuned defaults.
type Options struct {
	// ConfidenceThreshold is the minimum keyword score for a match.
	// Default 0.15.
	ConfidenceThreshold float64
	// AIConfidenceThreshold gates AI-suggested matches. Default 0.5.
	AIConfidenceThreshold float64
	// FallbackMessage overrides the default canned response.
	FallbackMessage string
	// AIMatcher enables the AI fallback stage when non-nil.
	AIMatcher AIMatcher
	// Logger receives pipeline logs; defaults to a stderr logger.
	Logger *observability.Logger
}

// Matcher runs the matching pipeline. Safe for concurrent use; each
// Match call works only on its arguments.
type Matcher struct {
	router *matching.Router
}

// New creates a Matcher.
func New(opts Options) *Matcher {
	router := matching.NewRouter(matching.RouterConfig{
		ConfidenceThreshold:   opts.ConfidenceThreshold,
		AIConfidenceThreshold: opts.AIConfidenceThreshold,
		FallbackMessage:       opts.FallbackMessage,
	}, opts.AIMatcher, opts.Logger)
	return &Matcher{router: router}
}

// Match runs one chat turn. The message should already be sanitized;
// faqs and leadTriggers must not be mutated during the call.
func (m *Matcher) Match(ctx context.Context, message string, faqs []FAQ, leadTriggers []string) *Result {
	internal := make([]*matching.FAQ, len(faqs))
	for i := range faqs {
		internal[i] = &matching.FAQ{
			ID:       faqs[i].ID,
			Question: faqs[i].Question,
			Answer:   faqs[i].Answer,
			Category: faqs[i].Category,
			Triggers: faqs[i].Triggers,
		}
	}

	result := m.router.Match(ctx, &matching.MatchRequest{
		Message:      message,
		FAQs:         internal,
		LeadTriggers: leadTriggers,
		AIEnabled:    true,
	})

	return &Result{
		Kind:           ResultKind(result.Kind),
		FAQID:          result.FAQID,
		Answer:         result.Answer,
		Confidence:     result.Confidence,
		Method:         result.Method,
		ExtractedEmail: result.ExtractedEmail,
		Message:        result.Message,
		Suggestions:    result.Suggestions,
	}
}

// Metrics returns the pipeline's outcome counters since construction.
func (m *Matcher) Metrics() map[string]int64 {
	return m.router.Metrics().Snapshot()
}
