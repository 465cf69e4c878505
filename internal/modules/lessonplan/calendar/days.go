package calendar

import (
	"strings"
	"unicode"
)

// DayKeys are the canonical day names in week order.
var DayKeys = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var dayAbbrev = map[string]string{
	"mon": "monday",
	"tue": "tuesday",
	"wed": "wednesday",
	"thu": "thursday",
	"fri": "friday",
	"sat": "saturday",
	"sun": "sunday",
}

// IsDayKey reports whether s is one of DayKeys.
func IsDayKey(s string) bool {
	for _, d := range DayKeys {
		if s == d {
			return true
		}
	}
	return false
}

// MatchDay maps a whole token to its day key. Full names are tried before
// the three-letter abbreviations; surrounding punctuation is ignored.
func MatchDay(token string) (string, bool) {
	t := strings.ToLower(trimPunct(token))
	if t == "" {
		return "", false
	}
	if IsDayKey(t) {
		return t, true
	}
	if d, ok := dayAbbrev[t]; ok {
		return d, true
	}
	return "", false
}

// daysInWords returns the distinct days named by whole words, in order of
// first appearance, with the index of that first word.
func daysInWords(words []string) ([]string, []int) {
	var days []string
	var idx []int
	seen := map[string]bool{}
	for i, w := range words {
		d, ok := MatchDay(w)
		if !ok || seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
		idx = append(idx, i)
	}
	return days, idx
}

func trimPunct(s string) string {
	return strings.TrimFunc(strings.TrimSpace(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
