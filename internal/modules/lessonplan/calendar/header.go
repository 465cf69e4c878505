package calendar

import (
	"regexp"
	"sort"
	"strings"
)

const (
	headerMinDays  = 2
	weekScanWindow = 3
)

var weekRe = regexp.MustCompile(`(?i)week\s*(\d+)`)

func rowDays(r Row) int {
	words := make([]string, 0, len(r.Words))
	for _, w := range r.Words {
		words = append(words, w.Text)
	}
	days, _ := daysInWords(words)
	return len(days)
}

func isHeaderRow(r Row) bool { return rowDays(r) >= headerMinDays }

// headerZone finds the first row naming at least two days plus any directly
// following rows that do too. end is exclusive.
func headerZone(rows []Row) (start, end int, ok bool) {
	for i, r := range rows {
		if !isHeaderRow(r) {
			continue
		}
		end = i + 1
		for end < len(rows) && isHeaderRow(rows[end]) {
			end++
		}
		return i, end, true
	}
	return 0, 0, false
}

func isSongToken(s string) bool {
	return strings.Contains(strings.ToLower(s), "song")
}

// DetectColumns turns the header zone into day columns.
//
// Header words are read left to right. A day word (or the first word
// containing "song") opens a column; any other word is header prose of the
// most recently opened column and widens it. Columns are then sorted by
// XMin and their shared boundaries closed by bisection, so the result covers
// the whole x-axis without gaps or overlaps.
func DetectColumns(header []Row) []Column {
	type tok struct {
		text   string
		x0, x1 float64
	}
	var toks []tok
	for _, r := range header {
		for _, w := range r.Words {
			toks = append(toks, tok{text: w.Text, x0: w.BBox.X0, x1: w.BBox.X1})
		}
	}
	sort.SliceStable(toks, func(i, j int) bool { return toks[i].x0 < toks[j].x0 })

	var cols []Column
	seen := map[string]bool{}
	cur := -1
	for _, t := range toks {
		if day, ok := MatchDay(t.text); ok {
			if seen[day] {
				continue
			}
			seen[day] = true
			cols = append(cols, Column{Day: day, XMin: t.x0, XMax: t.x1})
			cur = len(cols) - 1
			continue
		}
		if isSongToken(t.text) && !seen[SongColumn] {
			seen[SongColumn] = true
			cols = append(cols, Column{Day: SongColumn, XMin: t.x0, XMax: t.x1})
			cur = len(cols) - 1
			continue
		}
		if cur < 0 {
			continue
		}
		c := &cols[cur]
		if c.SubjectText == "" {
			c.SubjectText = t.text
		} else {
			c.SubjectText += " " + t.text
		}
		if t.x1 > c.XMax {
			c.XMax = t.x1
		}
	}
	return closeBoundaries(cols)
}

func closeBoundaries(cols []Column) []Column {
	if len(cols) == 0 {
		return cols
	}
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].XMin < cols[j].XMin })
	starts := make([]float64, len(cols))
	for i, c := range cols {
		starts[i] = c.XMin
	}
	for i := 0; i < len(cols)-1; i++ {
		mid := (cols[i].XMax + starts[i+1]) / 2
		if mid < starts[i] {
			mid = starts[i]
		}
		if mid > starts[i+1] {
			mid = starts[i+1]
		}
		cols[i].XMax = mid
		cols[i+1].XMin = mid
	}
	cols[0].XMin = openMin
	cols[len(cols)-1].XMax = openMax
	return cols
}

func columnFor(cols []Column, x float64) int {
	for i, c := range cols {
		if c.Contains(x) {
			return i
		}
	}
	return -1
}

// FindWeek recovers a "WEEK <n>" label. The full text is searched first;
// failing that, a token containing "week" followed within a few tokens by a
// bare digit 1-8 is accepted.
func FindWeek(text string, tokens []string) string {
	if m := weekRe.FindStringSubmatch(text); m != nil {
		return "WEEK " + m[1]
	}
	for i, t := range tokens {
		if !strings.Contains(strings.ToLower(t), "week") {
			continue
		}
		for j := i + 1; j < len(tokens) && j <= i+weekScanWindow; j++ {
			d := trimPunct(tokens[j])
			if len(d) == 1 && d[0] >= '1' && d[0] <= '8' {
				return "WEEK " + d
			}
		}
	}
	return ""
}
