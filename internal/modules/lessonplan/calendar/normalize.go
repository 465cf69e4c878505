package calendar

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/ocr"
)

// OCR engines emit table rules and list glyphs as words of their own.
var glyphReplacer = strings.NewReplacer(
	"\u00a0", " ",
	"|", " ",
	"•", " ",
	"●", " ",
	"▪", " ",
	"■", " ",
	"□", " ",
	"◦", " ",
	"¦", " ",
)

// CleanText applies NFKC folding, drops control characters, removes table
// glyphs and collapses whitespace.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFKC, runes.Remove(runes.Predicate(func(r rune) bool {
		return unicode.IsControl(r) && r != '\t' && r != '\n'
	})))
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	s = glyphReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeWords cleans token text, drops tokens left empty and repairs
// inverted boxes. Input order is preserved.
func NormalizeWords(words []ocr.WordToken) []ocr.WordToken {
	out := make([]ocr.WordToken, 0, len(words))
	for _, w := range words {
		text := CleanText(w.Text)
		if text == "" {
			continue
		}
		b := w.BBox
		if b.X1 < b.X0 {
			b.X0, b.X1 = b.X1, b.X0
		}
		if b.Y1 < b.Y0 {
			b.Y0, b.Y1 = b.Y1, b.Y0
		}
		out = append(out, ocr.WordToken{Text: text, BBox: b})
	}
	return out
}

// NormalizeLines splits text into cleaned, non-empty lines.
func NormalizeLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if c := CleanText(l); c != "" {
			out = append(out, c)
		}
	}
	return out
}
