package lists

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/calendar"
)

var (
	weekLineRe = regexp.MustCompile(`(?i)^week\s*(\d+)`)
	dateRe     = regexp.MustCompile(`(?i)\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+\d{1,2}\b`)
)

// MindMap maps "<week line> <day>" keys to learning-target text.
type MindMap struct {
	Data map[string]string `json:"data"`
	Date string            `json:"date"`
}

// Keys returns the entry keys in sorted order.
func (m *MindMap) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m.Data))
	for k := range m.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseMindMap reads a mind-map export.
//
// A line starting with "week <n>" sets the current week label: "week <n>",
// followed by ": <title>" when the line names a theme. When a day follows the
// week number on the same line, that day's entry opens right away. A line
// starting with a day name opens an entry keyed by the week label and the
// day; the remainder of the line is its first target line. Any other
// line continues the open entry. Lines before the first day are ignored.
func ParseMindMap(text string) *MindMap {
	mm := &MindMap{Data: map[string]string{}}
	if m := dateRe.FindString(text); m != "" {
		mm.Date = strings.Join(strings.Fields(m), " ")
	}

	week := ""
	key := ""
	for _, line := range cleanLines(text) {
		if m := weekLineRe.FindStringSubmatchIndex(line); m != nil {
			week = "week " + line[m[2]:m[3]]
			key = ""
			rest := strings.TrimSpace(strings.TrimLeft(line[m[1]:], ":-–— \t"))
			if day, tail, ok := leadingDay(rest); ok {
				key = week + " " + day
				appendTarget(mm.Data, key, tail)
			} else if rest != "" {
				week += ": " + strings.ToLower(strings.Join(strings.Fields(rest), " "))
			}
			continue
		}
		if day, rest, ok := leadingDay(line); ok {
			key = strings.TrimSpace(week + " " + day)
			appendTarget(mm.Data, key, rest)
			continue
		}
		if key != "" {
			appendTarget(mm.Data, key, line)
		}
	}
	return mm
}

func appendTarget(data map[string]string, key, line string) {
	line = strings.TrimSpace(line)
	prev, ok := data[key]
	switch {
	case !ok:
		data[key] = line
	case line == "":
	case prev == "":
		data[key] = line
	default:
		data[key] = prev + "\n" + line
	}
}

// leadingDay matches "Monday: ...", "Tue - ..." and "Wednesday ...".
func leadingDay(line string) (string, string, bool) {
	label, rest, ok := splitLabel(line)
	if ok {
		if day, isDay := calendar.MatchDay(label); isDay {
			return day, rest, true
		}
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", "", false
	}
	day, isDay := calendar.MatchDay(fields[0])
	if !isDay {
		return "", "", false
	}
	return day, strings.Join(fields[1:], " "), true
}
