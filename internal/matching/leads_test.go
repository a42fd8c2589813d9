package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLeadIntent_TriggerSubstring(t *testing.T) {
	triggers := []string{"contact", "sales", "pricing", "demo"}

	assert.True(t, DetectLeadIntent("I want to see PRICING options", triggers))
	assert.True(t, DetectLeadIntent("can I book a demo?", triggers))
	assert.False(t, DetectLeadIntent("tell me about your features", triggers))
}

func TestDetectLeadIntent_CaseInsensitiveTriggers(t *testing.T) {
	assert.True(t, DetectLeadIntent("i need a HUMAN please", []string{"Human"}))
}

func TestDetectLeadIntent_EmailSignalsIntent(t *testing.T) {
	// An email address signals lead intent even with no trigger words.
	assert.True(t, DetectLeadIntent("reach me at jane@example.com", nil))
	assert.False(t, DetectLeadIntent("reach me whenever works", nil))
}

func TestDetectLeadIntent_SkipsEmptyTriggers(t *testing.T) {
	// An empty trigger string is a substring of everything; it must not
	// turn every message into a lead.
	assert.False(t, DetectLeadIntent("hello there", []string{"", "  "}))
}

func TestExtractEmail_Exact(t *testing.T) {
	email, found := ExtractEmail("contact me at jane@example.com")

	assert.True(t, found)
	assert.Equal(t, "jane@example.com", email)
}

func TestExtractEmail_FirstOfMany(t *testing.T) {
	email, found := ExtractEmail("a@example.com or b@example.org")

	assert.True(t, found)
	assert.Equal(t, "a@example.com", email)
}

func TestExtractEmail_NoEmail(t *testing.T) {
	email, found := ExtractEmail("no address here")

	assert.False(t, found)
	assert.Empty(t, email)
}

func TestExtractEmail_ValidShapes(t *testing.T) {
	email, found := ExtractEmail("it's first.last+tag@sub.domain.co")

	assert.True(t, found)
	assert.Equal(t, "first.last+tag@sub.domain.co", email)

	// Single-letter TLDs don't qualify.
	_, found = ExtractEmail("weird@host.x")
	assert.False(t, found)
}
