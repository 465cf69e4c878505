// Package lists parses the plain-text documents that feed the matcher: the
// mind-map of learning targets, the games catalog and the spiral-review list.
package lists

import (
	"regexp"
	"strings"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/calendar"
)

var bulletRe = regexp.MustCompile(`^(?:[-*>•·●▪◦]+\s*|\(?\d{1,3}[.)]\s+)`)

// StripBullet removes a leading list marker ("- ", "* ", "3. ", "(2) ").
func StripBullet(line string) string {
	return strings.TrimSpace(bulletRe.ReplaceAllString(strings.TrimSpace(line), ""))
}

// cleanLines normalizes text and strips list markers, dropping lines left
// empty.
func cleanLines(text string) []string {
	raw := calendar.NormalizeLines(text)
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if s := StripBullet(l); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// splitLabel splits "label: rest" (or "label - rest") at the first
// separator. ok is false when the line has none.
func splitLabel(line string) (string, string, bool) {
	if i := strings.Index(line, ":"); i >= 0 {
		return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
	}
	for _, sep := range []string{" - ", " – ", " — "} {
		if i := strings.Index(line, sep); i >= 0 {
			return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+len(sep):]), true
		}
	}
	return line, "", false
}
