// Package calendar recovers a weekly day -> subject/content/game table from
// OCR output of a scanned calendar.
//
// Positioned words go through row clustering, header/column detection and
// column-based content extraction. Plain text, or positioned input without a
// recognizable header row, goes through a line-based fallback. Misses never
// fail: the result degrades to whatever text could be attributed.
package calendar

import (
	"strings"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/ocr"
)

// Parse dispatches on the OCR variant. It is pure and never fails.
func Parse(out ocr.Output) *Result {
	res := NewResult()
	switch v := out.(type) {
	case ocr.Positioned:
		parsePositioned([]ocr.WordToken(v), res)
	case ocr.PlainText:
		parsePlain(string(v), res)
	}
	return res
}

func parsePositioned(words []ocr.WordToken, res *Result) {
	rows := ClusterRows(NormalizeWords(words))
	lines := rowLines(rows)
	res.Week = FindWeek(strings.Join(lines, "\n"), rowTokens(rows))

	start, end, found := headerZone(rows)
	if found {
		cols := DetectColumns(rows[start:end])
		data, song := extractColumns(rows, end, cols)
		res.Data = data
		if song = strings.TrimSpace(song); len(song) > minSongLen {
			res.Song = song
		}
	}
	if len(res.Data) == 0 {
		res.Data = parseLines(lines)
	}
	if !found {
		if s := songFromLines(lines); s != "" {
			res.Song = s
		}
	}
	fillLastResort(res, lines)
}

func parsePlain(text string, res *Result) {
	lines := NormalizeLines(text)
	var tokens []string
	for _, l := range lines {
		tokens = append(tokens, strings.Fields(l)...)
	}
	res.Week = FindWeek(strings.Join(lines, "\n"), tokens)
	res.Data = parseLines(lines)
	if s := songFromLines(lines); s != "" {
		res.Song = s
	}
	fillLastResort(res, lines)
}

// Flatten renders any OCR output as cleaned multi-line text, with positioned
// words grouped into rows.
func Flatten(out ocr.Output) string {
	switch v := out.(type) {
	case ocr.Positioned:
		return strings.Join(rowLines(ClusterRows(NormalizeWords([]ocr.WordToken(v)))), "\n")
	case ocr.PlainText:
		return strings.Join(NormalizeLines(string(v)), "\n")
	default:
		return ""
	}
}
