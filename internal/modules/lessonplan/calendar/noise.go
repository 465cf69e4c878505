package calendar

import (
	"strings"
	"unicode/utf8"
)

var noisePhrases = []string{"small group", "song of the week", "weekly"}

// IsMetadataNoise reports calendar furniture that must never be taken for a
// subject or a content span.
func IsMetadataNoise(s string) bool {
	t := strings.ToLower(strings.TrimSpace(s))
	if utf8.RuneCountInString(t) < 2 {
		return true
	}
	for _, p := range noisePhrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}
