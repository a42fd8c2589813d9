package matching

import "strings"

// Canned response texts used when a tenant has not configured its own.
const (
	DefaultFallbackMessage = "I'm not sure about that. Type 'contact' to speak with our team!"
	DefaultLeadPrompt      = "I'd be happy to connect you with our team! To help us serve you better, may I have your name?"
)

// DefaultMaxSuggestions caps how many related questions a fallback
// response offers.
const DefaultMaxSuggestions = 3

// FallbackBuilder assembles the terminal fallback response. When the
// query grazed some FAQs without clearing the match threshold, the
// response lists their questions as related topics instead of the plain
// canned message.
type FallbackBuilder struct {
	scorer         *Scorer
	maxSuggestions int
}

// NewFallbackBuilder creates a fallback builder sharing the router's
// scorer so suggestion ranking matches scoring behavior.
func NewFallbackBuilder(scorer *Scorer, maxSuggestions int) *FallbackBuilder {
	if scorer == nil {
		scorer = NewScorer()
	}
	if maxSuggestions <= 0 {
		maxSuggestions = DefaultMaxSuggestions
	}
	return &FallbackBuilder{scorer: scorer, maxSuggestions: maxSuggestions}
}

// Build constructs the fallback result for a query that matched
// nothing. customMessage overrides the default canned text; it is not
// used when related questions are available.
func (b *FallbackBuilder) Build(query string, faqs []*FAQ, customMessage string) *MatchResult {
	message := customMessage
	if message == "" {
		message = DefaultFallbackMessage
	}

	candidates := b.scorer.TopCandidates(query, faqs, b.maxSuggestions)
	if len(candidates) == 0 {
		return &MatchResult{Kind: ResultFallback, Message: message}
	}

	questions := make([]string, len(candidates))
	for i, faq := range candidates {
		questions[i] = faq.Question
	}

	var sb strings.Builder
	sb.WriteString("I'm not sure about that exact question, but here are some related topics:\n\n")
	for _, q := range questions {
		sb.WriteString("• ")
		sb.WriteString(q)
		sb.WriteString("\n")
	}
	sb.WriteString("\nOr type 'contact' to speak with our team!")

	return &MatchResult{Kind: ResultFallback, Message: sb.String(), Suggestions: questions}
}
