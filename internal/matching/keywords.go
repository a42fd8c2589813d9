package matching

import (
	"regexp"
	"strings"
)

// minKeywordLen drops very short tokens that carry no matching signal.
const minKeywordLen = 3

var tokenPattern = regexp.MustCompile(`[a-z]+`)

// stopWords are tokens stripped before matching. The temporal fillers
// matter most: words like "anytime" used to fire hours/scheduling FAQs
// on nearly every message that mentioned timing at all.
var stopWords = map[string]bool{
	// articles and determiners
	"a": true, "an": true, "the": true, "this": true, "that": true,
	"these": true, "those": true, "all": true, "any": true, "both": true,
	"each": true, "few": true, "more": true, "most": true, "other": true,
	"some": true, "such": true, "same": true, "own": true, "no": true,
	"nor": true, "not": true,

	// pronouns and interrogatives
	"i": true, "me": true, "my": true, "mine": true, "myself": true,
	"you": true, "your": true, "yours": true, "yourself": true,
	"he": true, "him": true, "his": true, "she": true, "her": true,
	"hers": true, "it": true, "its": true, "we": true, "us": true,
	"our": true, "ours": true, "they": true, "them": true, "their": true,
	"theirs": true, "what": true, "which": true, "who": true, "whom": true,
	"whose": true, "when": true, "where": true, "why": true, "how": true,

	// auxiliary and modal verbs
	"am": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true, "do": true, "does": true,
	"did": true, "doing": true, "have": true, "has": true, "had": true,
	"having": true, "will": true, "would": true, "shall": true,
	"should": true, "can": true, "could": true, "may": true,
	"might": true, "must": true, "ought": true,

	// prepositions and conjunctions
	"and": true, "or": true, "but": true, "if": true, "then": true,
	"else": true, "so": true, "as": true, "of": true, "at": true,
	"by": true, "for": true, "with": true, "about": true, "against": true,
	"between": true, "into": true, "through": true, "during": true,
	"before": true, "after": true, "above": true, "below": true,
	"to": true, "from": true, "up": true, "down": true, "in": true,
	"out": true, "on": true, "off": true, "over": true, "under": true,
	"again": true, "further": true, "than": true, "because": true,
	"while": true, "until": true,

	// generic adverbs
	"please": true, "just": true, "very": true, "really": true,
	"also": true, "too": true, "only": true, "there": true,
	"here": true, "once": true,

	// temporal fillers
	"now": true, "today": true, "tomorrow": true, "yesterday": true,
	"anytime": true, "always": true, "never": true, "soon": true,
	"later": true, "yet": true, "still": true, "ever": true,
}

// ExtractKeywords returns the distinct meaningful keywords in text.
// The input is lowercased and split on anything outside [a-z], so
// digits, punctuation, and symbols never produce tokens ("24/7" yields
// nothing). Stop words and tokens shorter than three characters are
// dropped. No stemming is applied, so "customize" and "customization"
// stay distinct. The result is a set; the slice preserves first-seen
// order only to keep logs stable.
func ExtractKeywords(text string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)

	seen := make(map[string]bool, len(tokens))
	var keywords []string
	for _, tok := range tokens {
		if len(tok) < minKeywordLen {
			continue
		}
		if stopWords[tok] {
			continue
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		keywords = append(keywords, tok)
	}
	return keywords
}
