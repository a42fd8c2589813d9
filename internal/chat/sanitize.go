package chat

import (
	"regexp"
	"strings"
)

// DefaultMaxMessageLen caps widget messages after tag stripping, in runes.
const DefaultMaxMessageLen = 500

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// SanitizeMessage normalizes a raw widget message before it reaches the
// matching pipeline: HTML tags are stripped, the remainder is capped at
// maxLen runes, and whitespace runs collapse to single spaces. maxLen
// values of zero or less select DefaultMaxMessageLen. The result may be
// empty; callers decide whether that is an error.
func SanitizeMessage(message string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxMessageLen
	}

	message = htmlTagPattern.ReplaceAllString(message, "")
	if runes := []rune(message); len(runes) > maxLen {
		message = string(runes[:maxLen])
	}
	return strings.Join(strings.Fields(message), " ")
}
