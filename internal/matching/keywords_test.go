package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords_StripsStopWordsAndCase(t *testing.T) {
	// "what", "are", "your" are stop words; only "hours" survives.
	keywords := ExtractKeywords("What are your HOURS?")

	assert.Equal(t, []string{"hours"}, keywords)
}

func TestExtractKeywords_TemporalFillers(t *testing.T) {
	// "can" (modal), "i" (pronoun, also too short), and "anytime"
	// (temporal filler) are all dropped.
	keywords := ExtractKeywords("Can I modify FAQs anytime?")

	assert.Equal(t, []string{"modify", "faqs"}, keywords)
}

func TestExtractKeywords_DigitsAndSymbolsAreSeparators(t *testing.T) {
	// Digits never form tokens, so "24/7" contributes nothing.
	assert.Empty(t, ExtractKeywords("24/7"))

	// "we're" splits into "we" and "re", both dropped; "open" stays.
	keywords := ExtractKeywords("We're open 24/7!!")
	assert.Equal(t, []string{"open"}, keywords)
}

func TestExtractKeywords_ShortTokensDropped(t *testing.T) {
	assert.Empty(t, ExtractKeywords("go ok hi"))
}

func TestExtractKeywords_NoStemming(t *testing.T) {
	// Related word forms stay distinct tokens.
	keywords := ExtractKeywords("customize customization")

	assert.Equal(t, []string{"customize", "customization"}, keywords)
}

func TestExtractKeywords_Deduplicates(t *testing.T) {
	keywords := ExtractKeywords("billing billing BILLING")

	assert.Equal(t, []string{"billing"}, keywords)
}

func TestExtractKeywords_EmptyInput(t *testing.T) {
	assert.Empty(t, ExtractKeywords(""))
	assert.Empty(t, ExtractKeywords("   \t\n"))
}

func TestExtractKeywords_AllStopWords(t *testing.T) {
	assert.Empty(t, ExtractKeywords("what is the"))
}
