// Package matching implements the chat message matching pipeline:
// lead-intent detection, weighted keyword scoring against a tenant's
// FAQ set, an optional AI fallback, and the canned fallback response.
//
// The pipeline is stateless across turns. Each call recomputes keyword
// extraction and tag weights from the arguments passed in, so it is
// safe under concurrent invocation as long as the FAQ set is not
// mutated mid-call.
package matching

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/faqdesk-ai/match-engine/internal/observability"
)

// ResultKind tags which pipeline stage produced the response.
type ResultKind string

const (
	ResultLead     ResultKind = "lead"
	ResultFAQ      ResultKind = "faq"
	ResultFallback ResultKind = "fallback"
)

// Match methods reported on FAQ results.
const (
	MethodSmartKeyword = "smart_keyword"
	MethodAI           = "ai"
)

// DefaultAIConfidenceThreshold gates AI-suggested matches. The model
// reports its own confidence; anything at or below this is discarded.
const DefaultAIConfidenceThreshold = 0.5

// MatchRequest carries one chat turn's inputs. The message is expected
// to be sanitized by the caller; FAQs and lead triggers come from the
// tenant's stored configuration, read once per turn.
type MatchRequest struct {
	Message         string
	FAQs            []*FAQ
	LeadTriggers    []string
	LeadPrompt      string
	FallbackMessage string
	AIEnabled       bool
}

// MatchResult is the tagged outcome of one chat turn. Exactly one kind
// is set; the caller persists the conversation log and picks the wire
// shape.
type MatchResult struct {
	Kind ResultKind

	// FAQ results
	FAQID      string
	Answer     string
	Confidence float64
	Method     string

	// Lead results
	ExtractedEmail string

	// Lead and fallback results
	Message     string
	Suggestions []string
}

// AIDecision is the parsed verdict from an AI matcher. Matched reports
// whether the model named a FAQ at all; the confidence gate is applied
// by the router, not the adapter.
type AIDecision struct {
	Matched    bool
	FAQID      string
	Confidence float64
	Reason     string
}

// AIMatcher asks an external model to pick the best FAQ for a message.
// Implementations must return an error for transport or parse failures
// and a non-matched decision when the model declines; the router treats
// the two differently only in logs and metrics.
type AIMatcher interface {
	MatchFAQ(ctx context.Context, message string, faqs []*FAQ) (*AIDecision, error)
}

// RouterConfig configures the matching pipeline.
type RouterConfig struct {
	ConfidenceThreshold   float64
	AIConfidenceThreshold float64
	FallbackMessage       string
	MaxSuggestions        int
}

// DefaultRouterConfig returns the tuned production defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		ConfidenceThreshold:   DefaultConfidenceThreshold,
		AIConfidenceThreshold: DefaultAIConfidenceThreshold,
		FallbackMessage:       DefaultFallbackMessage,
		MaxSuggestions:        DefaultMaxSuggestions,
	}
}

// RouterMetrics counts pipeline outcomes. AI failures (transport or
// parse errors) are tracked separately from the model declining to
// match; both degrade to the fallback but mean different things when
// watching a deployment.
type RouterMetrics struct {
	LeadResults    atomic.Int64
	KeywordMatches atomic.Int64
	AIMatches      atomic.Int64
	AINoMatches    atomic.Int64
	AIFailures     atomic.Int64
	Fallbacks      atomic.Int64
}

// Snapshot returns the current counters for reporting.
func (m *RouterMetrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"lead_results":    m.LeadResults.Load(),
		"keyword_matches": m.KeywordMatches.Load(),
		"ai_matches":      m.AIMatches.Load(),
		"ai_no_matches":   m.AINoMatches.Load(),
		"ai_failures":     m.AIFailures.Load(),
		"fallbacks":       m.Fallbacks.Load(),
	}
}

// Router sequences the matching pipeline for one chat turn: lead check,
// then local weighted match, then AI fallback, then canned fallback.
// Cheapest and most predictable checks run first; the network-bound AI
// call runs last and only when everything else came up empty.
type Router struct {
	config   RouterConfig
	scorer   *Scorer
	fallback *FallbackBuilder
	ai       AIMatcher
	logger   *observability.Logger
	metrics  *RouterMetrics
}

// NewRouter creates a router. The AI matcher may be nil, which disables
// the AI stage regardless of per-request flags.
func NewRouter(config RouterConfig, ai AIMatcher, logger *observability.Logger) *Router {
	if config.ConfidenceThreshold <= 0 {
		config.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if config.AIConfidenceThreshold <= 0 {
		config.AIConfidenceThreshold = DefaultAIConfidenceThreshold
	}
	if config.FallbackMessage == "" {
		config.FallbackMessage = DefaultFallbackMessage
	}
	if config.MaxSuggestions <= 0 {
		config.MaxSuggestions = DefaultMaxSuggestions
	}
	if logger == nil {
		logger = observability.DefaultLogger()
	}

	scorer := NewScorerWithThreshold(config.ConfidenceThreshold)
	return &Router{
		config:   config,
		scorer:   scorer,
		fallback: NewFallbackBuilder(scorer, config.MaxSuggestions),
		ai:       ai,
		logger:   logger,
		metrics:  &RouterMetrics{},
	}
}

// Metrics exposes the router's outcome counters.
func (r *Router) Metrics() *RouterMetrics {
	return r.metrics
}

// Match runs one chat turn through the pipeline. It never returns an
// error: AI failures and any other internal problem degrade to the
// fallback response, so the end user always gets an answer shape.
func (r *Router) Match(ctx context.Context, req *MatchRequest) *MatchResult {
	start := time.Now()

	if DetectLeadIntent(req.Message, req.LeadTriggers) {
		email, _ := ExtractEmail(req.Message)
		r.metrics.LeadResults.Add(1)
		r.logger.Info().
			Bool("email_extracted", email != "").
			Dur("latency", time.Since(start)).
			Msg("Lead intent detected")

		prompt := req.LeadPrompt
		if prompt == "" {
			prompt = DefaultLeadPrompt
		}
		return &MatchResult{Kind: ResultLead, ExtractedEmail: email, Message: prompt}
	}

	if faq, confidence := r.scorer.FindBestMatch(req.Message, req.FAQs); faq != nil {
		r.metrics.KeywordMatches.Add(1)
		r.logger.Debug().
			Str("faq_id", faq.ID).
			Float64("confidence", confidence).
			Dur("latency", time.Since(start)).
			Msg("Keyword match found")

		return &MatchResult{
			Kind:       ResultFAQ,
			FAQID:      faq.ID,
			Answer:     faq.Answer,
			Confidence: confidence,
			Method:     MethodSmartKeyword,
		}
	}

	if req.AIEnabled && r.ai != nil {
		if result := r.matchWithAI(ctx, req); result != nil {
			return result
		}
	}

	r.metrics.Fallbacks.Add(1)
	result := r.fallback.Build(req.Message, req.FAQs, r.fallbackMessage(req))
	r.logger.Debug().
		Int("suggestions", len(result.Suggestions)).
		Dur("latency", time.Since(start)).
		Msg("No match, returning fallback")
	return result
}

func (r *Router) fallbackMessage(req *MatchRequest) string {
	if req.FallbackMessage != "" {
		return req.FallbackMessage
	}
	return r.config.FallbackMessage
}

// matchWithAI runs the AI stage and returns nil when it produced
// nothing usable, for any reason.
func (r *Router) matchWithAI(ctx context.Context, req *MatchRequest) *MatchResult {
	decision, err := r.ai.MatchFAQ(ctx, req.Message, req.FAQs)
	if err != nil {
		r.metrics.AIFailures.Add(1)
		r.logger.Warn().Err(err).Msg("AI match call failed")
		return nil
	}
	if decision == nil || !decision.Matched {
		r.metrics.AINoMatches.Add(1)
		r.logger.Debug().Msg("AI declined to match")
		return nil
	}
	if decision.Confidence <= r.config.AIConfidenceThreshold {
		r.metrics.AINoMatches.Add(1)
		r.logger.Debug().
			Str("faq_id", decision.FAQID).
			Float64("confidence", decision.Confidence).
			Msg("AI match below confidence gate")
		return nil
	}

	for _, faq := range req.FAQs {
		if faq.ID == decision.FAQID {
			r.metrics.AIMatches.Add(1)
			r.logger.Info().
				Str("faq_id", faq.ID).
				Float64("confidence", decision.Confidence).
				Str("reason", decision.Reason).
				Msg("AI match found")

			return &MatchResult{
				Kind:       ResultFAQ,
				FAQID:      faq.ID,
				Answer:     faq.Answer,
				Confidence: decision.Confidence,
				Method:     MethodAI,
			}
		}
	}

	r.metrics.AINoMatches.Add(1)
	r.logger.Warn().
		Str("faq_id", decision.FAQID).
		Msg("AI returned a FAQ ID outside the candidate set")
	return nil
}
