// Package match resolves a day's noisy calendar text against the games
// catalog and the mind-map of learning targets.
package match

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/calendar"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/lists"
)

const minTokenLen = 3

// FallbackGameDescription is used when no catalog entry overlaps.
const FallbackGameDescription = "A short, active classroom game that reinforces today's content."

// GameMatch is the resolved game for a day.
type GameMatch struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Matched     bool   `json:"matched"`
	Overlap     int    `json:"overlap"`
}

// Tokens splits s into the set of lowercase words of at least three runes.
func Tokens(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if utf8.RuneCountInString(f) >= minTokenLen {
			set[f] = struct{}{}
		}
	}
	return set
}

// Game picks the catalog entry sharing the most tokens with noisy. Entries
// are visited in catalog order and only a strictly larger overlap replaces
// the current best, so the first maximum wins.
func Game(noisy string, cat *lists.Catalog) GameMatch {
	want := Tokens(noisy)
	best := GameMatch{}
	if len(want) > 0 {
		for _, g := range cat.Entries() {
			n := 0
			for tok := range Tokens(g.Name) {
				if _, ok := want[tok]; ok {
					n++
				}
			}
			if n > best.Overlap {
				best = GameMatch{Name: g.Name, Description: g.Description, Matched: true, Overlap: n}
			}
		}
	}
	if best.Matched {
		return best
	}
	return GameMatch{Name: calendar.CleanText(noisy), Description: FallbackGameDescription}
}

// Targets collects the mind-map entries for day, restricted to week when a
// week label is known. Matches are joined in key order. With no match the
// generic "Learning targets for <content>" line is returned.
func Targets(mm *lists.MindMap, day, week, content string) string {
	fallback := "Learning targets for " + strings.TrimSpace(content)
	key, ok := calendar.MatchDay(day)
	if !ok || mm == nil {
		return fallback
	}
	week = strings.ToLower(strings.Join(strings.Fields(week), " "))

	var hits []string
	for _, k := range mm.Keys() {
		if !hasWord(k, key) {
			continue
		}
		if week != "" && !hasWeek(k, week) {
			continue
		}
		if v := strings.TrimSpace(mm.Data[k]); v != "" {
			hits = append(hits, v)
		}
	}
	if len(hits) == 0 {
		return fallback
	}
	return strings.Join(hits, "\n")
}

// hasWeek reports whether key carries the week label as a whole label, so
// "week 1" does not match a "week 10" key.
func hasWeek(key, week string) bool {
	for from := 0; ; {
		i := strings.Index(key[from:], week)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(week)
		before := start == 0 || key[start-1] == ' '
		after := end == len(key) || key[end] == ' ' || key[end] == ':'
		if before && after {
			return true
		}
		from = start + 1
	}
}

func hasWord(key, word string) bool {
	for _, f := range strings.Fields(key) {
		if f == word {
			return true
		}
	}
	return false
}
