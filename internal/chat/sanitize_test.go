package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeMessage_StripsHTMLTags(t *testing.T) {
	got := SanitizeMessage(`<b>hello</b> <a href="https://evil.example">world</a>`, 0)

	assert.Equal(t, "hello world", got)
}

func TestSanitizeMessage_ScriptContentSurvivesWithoutTags(t *testing.T) {
	// Only the tags are removed; the text between them is kept.
	got := SanitizeMessage("<script>alert(1)</script> hours", 0)

	assert.Equal(t, "alert(1) hours", got)
}

func TestSanitizeMessage_BareAngleBracketIsNotATag(t *testing.T) {
	assert.Equal(t, "5 < 6 but 7 > 2", SanitizeMessage("5 < 6 but 7 > 2", 0))
}

func TestSanitizeMessage_CollapsesWhitespace(t *testing.T) {
	got := SanitizeMessage("  what\t\tare \n your   hours  ", 0)

	assert.Equal(t, "what are your hours", got)
}

func TestSanitizeMessage_CapsAtMaxRunes(t *testing.T) {
	got := SanitizeMessage("héllo wörld", 7)

	assert.Equal(t, "héllo w", got)
}

func TestSanitizeMessage_CapCountsWhitespace(t *testing.T) {
	// The cap applies before whitespace collapses, so padding eats into it.
	got := SanitizeMessage("a    b", 3)

	assert.Equal(t, "a", got)
}

func TestSanitizeMessage_DefaultCap(t *testing.T) {
	got := SanitizeMessage(strings.Repeat("a", DefaultMaxMessageLen+100), 0)

	assert.Equal(t, strings.Repeat("a", DefaultMaxMessageLen), got)
}

func TestSanitizeMessage_EmptyResults(t *testing.T) {
	assert.Empty(t, SanitizeMessage("", 0))
	assert.Empty(t, SanitizeMessage("   \n\t ", 0))
	assert.Empty(t, SanitizeMessage("<div></div>", 0))
}
