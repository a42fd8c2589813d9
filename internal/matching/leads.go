package matching

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// DetectLeadIntent reports whether a message asks for human or sales
// contact. Triggers are checked in list order as case-insensitive
// substrings and the first hit short-circuits; independently, a message
// containing an email address always signals lead intent. A positive
// result takes priority over any FAQ match for that turn.
func DetectLeadIntent(message string, leadTriggers []string) bool {
	messageLower := strings.ToLower(message)

	for _, trigger := range leadTriggers {
		trigger = strings.ToLower(strings.TrimSpace(trigger))
		if trigger == "" {
			continue
		}
		if strings.Contains(messageLower, trigger) {
			return true
		}
	}

	return emailPattern.MatchString(message)
}

// ExtractEmail returns the first email address found in the message,
// for pre-filling a lead form. The second return reports whether one
// was found.
func ExtractEmail(message string) (string, bool) {
	email := emailPattern.FindString(message)
	return email, email != ""
}
