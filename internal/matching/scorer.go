package matching

import (
	"sort"
	"strings"
)

// DefaultConfidenceThreshold is the minimum final score for a match.
// Tunable per tenant deployment; 0.15 is the tuned production default.
const DefaultConfidenceThreshold = 0.15

// Blend weights for the final score. Normalized tag weight dominates,
// coverage keeps the scorer honest about how much of the query was
// actually accounted for. Tuned against production FAQ sets; changing
// them changes match behavior for existing tenants.
const (
	normalizedBlendWeight = 0.7
	coverageBlendWeight   = 0.3
)

// FAQ is one question/answer entry in a tenant's set. Triggers are
// author-supplied matching hints; the question text is also mined for
// implicit keywords.
type FAQ struct {
	ID       string
	Question string
	Answer   string
	Category string
	Triggers []string
}

// Scorer finds the best-matching FAQ for a chat message using weighted
// keyword overlap.
type Scorer struct {
	threshold float64
}

// NewScorer creates a scorer with the default confidence threshold.
func NewScorer() *Scorer {
	return NewScorerWithThreshold(DefaultConfidenceThreshold)
}

// NewScorerWithThreshold creates a scorer with a custom confidence
// threshold. Non-positive thresholds fall back to the default.
func NewScorerWithThreshold(threshold float64) *Scorer {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &Scorer{threshold: threshold}
}

// Threshold returns the configured confidence threshold.
func (s *Scorer) Threshold() float64 {
	return s.threshold
}

// FindBestMatch scores every FAQ against the query and returns the
// highest-scoring one with its rounded score, or (nil, 0.0) when
// nothing clears the confidence threshold.
//
// Per FAQ: the tag universe is the union of its lowercased triggers and
// the keywords mined from its question. The score blends the weighted
// fraction of the universe the query hit with the fraction of query
// keywords accounted for. Ties keep the first-seen FAQ, so iteration
// order over the set (authoring order) is part of the contract.
//
// The scorer holds no state between calls; tag weights are recomputed
// from the passed-in set every time.
func (s *Scorer) FindBestMatch(query string, faqs []*FAQ) (*FAQ, float64) {
	queryKeywords := ExtractKeywords(query)
	if len(queryKeywords) == 0 || len(faqs) == 0 {
		return nil, 0.0
	}

	weights := ComputeTagWeights(faqs)

	var best *FAQ
	bestScore := 0.0
	for _, faq := range faqs {
		score := scoreFAQ(faq, queryKeywords, weights)
		if score > bestScore {
			bestScore = score
			best = faq
		}
	}

	if best == nil || bestScore < s.threshold {
		return nil, 0.0
	}
	return best, round2(bestScore)
}

// TopCandidates returns up to limit FAQs with any keyword overlap,
// highest score first, ignoring the confidence threshold. Used to offer
// related questions when nothing matched outright.
func (s *Scorer) TopCandidates(query string, faqs []*FAQ, limit int) []*FAQ {
	queryKeywords := ExtractKeywords(query)
	if len(queryKeywords) == 0 || len(faqs) == 0 || limit <= 0 {
		return nil
	}

	weights := ComputeTagWeights(faqs)

	type scoredFAQ struct {
		faq   *FAQ
		score float64
	}
	var candidates []scoredFAQ
	for _, faq := range faqs {
		if score := scoreFAQ(faq, queryKeywords, weights); score > 0 {
			candidates = append(candidates, scoredFAQ{faq: faq, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	result := make([]*FAQ, len(candidates))
	for i, c := range candidates {
		result[i] = c.faq
	}
	return result
}

func scoreFAQ(faq *FAQ, queryKeywords []string, weights map[string]float64) float64 {
	universe := tagUniverse(faq)
	if len(universe) == 0 {
		return 0
	}

	var matched []string
	for _, kw := range queryKeywords {
		if universe[kw] {
			matched = append(matched, kw)
		}
	}
	if len(matched) == 0 {
		return 0
	}

	var matchedWeight, maxPossible float64
	for tag := range universe {
		maxPossible += weightFor(tag, weights)
	}
	for _, tag := range matched {
		matchedWeight += weightFor(tag, weights)
	}
	if maxPossible == 0 {
		return 0
	}

	normalized := matchedWeight / maxPossible
	coverage := float64(len(matched)) / float64(len(queryKeywords))
	return normalizedBlendWeight*normalized + coverageBlendWeight*coverage
}

// tagUniverse builds a FAQ's scoring candidate set: lowercased explicit
// triggers plus keywords extracted from the question text. Triggers go
// in verbatim, so multi-word trigger phrases stay intact (they widen
// the universe but can only be hit by single-token query keywords).
func tagUniverse(faq *FAQ) map[string]bool {
	universe := make(map[string]bool, len(faq.Triggers))
	for _, trigger := range faq.Triggers {
		tag := strings.ToLower(trigger)
		if tag == "" {
			continue
		}
		universe[tag] = true
	}
	for _, kw := range ExtractKeywords(faq.Question) {
		universe[kw] = true
	}
	return universe
}
