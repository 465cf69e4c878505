package calendar

import "strings"

const (
	maxContentRows  = 4
	maxContentLines = 4
	minSongLen      = 3
)

// extractColumns assigns words from the rows below the header zone to
// columns by horizontal midpoint. Only a few rows are read, and reading
// stops at the next header row, so one week's block does not bleed into the
// next. Noise is dropped row by row; a day column is kept while any row
// carries content. The song column's span is returned separately.
func extractColumns(rows []Row, headerEnd int, cols []Column) (map[string]DayRecord, string) {
	data := map[string]DayRecord{}
	if len(cols) == 0 {
		return data, ""
	}
	parts := make([][]string, len(cols))
	read := 0
	for i := headerEnd; i < len(rows) && read < maxContentRows; i++ {
		if isHeaderRow(rows[i]) {
			break
		}
		read++
		cells := make([][]string, len(cols))
		for _, w := range rows[i].Words {
			if ci := columnFor(cols, w.BBox.MidX()); ci >= 0 {
				cells[ci] = append(cells[ci], w.Text)
			}
		}
		for ci, cell := range cells {
			if len(cell) == 0 {
				continue
			}
			text := strings.Join(cell, " ")
			if cols[ci].Day != SongColumn && IsMetadataNoise(text) {
				continue
			}
			parts[ci] = append(parts[ci], text)
		}
	}

	song := ""
	for i, c := range cols {
		content := strings.Join(parts[i], " ")
		if c.Day == SongColumn {
			song = content
			continue
		}
		if len(parts[i]) == 0 {
			continue
		}
		subject := strings.TrimSpace(c.SubjectText)
		if IsMetadataNoise(subject) {
			subject = DefaultSubject
		}
		data[c.Day] = DayRecord{Subject: subject, Content: content, Game: content}
	}
	return data, song
}

// singleDay returns the day named by a line when it names exactly one, and
// the line without that day word.
func singleDay(line string) (string, string, bool) {
	words := strings.Fields(line)
	days, idx := daysInWords(words)
	if len(days) != 1 {
		return "", "", false
	}
	rest := make([]string, 0, len(words))
	for i, w := range words {
		if i == idx[0] {
			continue
		}
		rest = append(rest, w)
	}
	subject := strings.TrimSpace(strings.Trim(strings.Join(rest, " "), ":-–— "))
	return days[0], subject, true
}

func namesDay(line string) bool {
	days, _ := daysInWords(strings.Fields(line))
	return len(days) > 0
}

func isDayLine(line string) bool {
	_, _, ok := singleDay(line)
	return ok
}

// parseLines is the text-only path: each line naming a single day starts
// that day's block. The remainder of the line is the subject (the next line
// stands in when it is noise) and up to four following non-trivial lines
// form the content.
func parseLines(lines []string) map[string]DayRecord {
	data := map[string]DayRecord{}
	for i := 0; i < len(lines); i++ {
		day, subject, ok := singleDay(lines[i])
		if !ok {
			continue
		}
		if _, dup := data[day]; dup {
			continue
		}
		j := i + 1
		if IsMetadataNoise(subject) {
			subject = ""
			for j < len(lines) && subject == "" {
				if isDayLine(lines[j]) {
					break
				}
				if !IsMetadataNoise(lines[j]) {
					subject = lines[j]
				}
				j++
			}
		}
		var content []string
		for ; j < len(lines) && len(content) < maxContentLines; j++ {
			if isDayLine(lines[j]) {
				break
			}
			if IsMetadataNoise(lines[j]) {
				continue
			}
			content = append(content, lines[j])
		}
		if subject == "" {
			subject = DefaultSubject
		}
		joined := strings.Join(content, " ")
		data[day] = DayRecord{Subject: subject, Content: joined, Game: joined}
	}
	return data
}

// songFromLines looks for a "song of the week" line and takes the text after
// the label, or the next line when the label stands alone.
func songFromLines(lines []string) string {
	for i, l := range lines {
		rest, ok := songLabelRest(l)
		if !ok {
			continue
		}
		rest = strings.TrimSpace(strings.Trim(rest, ":-–— "))
		if len(rest) <= minSongLen && i+1 < len(lines) && !namesDay(lines[i+1]) {
			rest = lines[i+1]
		}
		if len(strings.TrimSpace(rest)) > minSongLen {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// songLabelRest reports whether line carries the song label and returns the
// text after it. The label is "song of the week" anywhere in the line or a
// line opening with "song"; a lesson that merely mentions a song is not one.
func songLabelRest(line string) (string, bool) {
	low := strings.ToLower(line)
	if k := strings.Index(low, "song of the week"); k >= 0 {
		return line[k+len("song of the week"):], true
	}
	trimmed := strings.TrimLeft(low, " \t")
	if strings.HasPrefix(trimmed, "song") {
		at := len(low) - len(trimmed)
		return line[at+len("song"):], true
	}
	return "", false
}

// fillLastResort guarantees a renderable result: when nothing was populated
// the whole text goes to every day it mentions, or to monday.
func fillLastResort(res *Result, lines []string) {
	if len(res.Data) > 0 {
		return
	}
	raw := strings.TrimSpace(strings.Join(lines, "\n"))
	if raw == "" {
		return
	}
	var words []string
	for _, l := range lines {
		words = append(words, strings.Fields(l)...)
	}
	days, _ := daysInWords(words)
	for _, d := range days {
		res.Data[d] = DayRecord{Subject: DefaultSubject, Content: raw, Game: raw}
	}
	if len(res.Data) == 0 {
		res.Data["monday"] = DayRecord{Subject: DefaultSubject, Content: raw, Game: raw}
	}
}
