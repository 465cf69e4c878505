package calendar

import (
	"math"
	"strings"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/ocr"
)

const (
	// DefaultSong is reported when no song of the week was recovered.
	DefaultSong = "Song of the Week"
	// DefaultSubject replaces subjects that are missing or metadata noise.
	DefaultSubject = "Vocabulary"
	// SongColumn is the pseudo-day of the song-of-the-week column.
	SongColumn = "song"
)

var (
	openMin = math.Inf(-1)
	openMax = math.Inf(1)
)

// Row is a horizontal band of words ordered by X0.
type Row struct {
	Words []ocr.WordToken
	YMin  float64
	YMax  float64
}

// Text joins the row's words with single spaces.
func (r Row) Text() string {
	parts := make([]string, 0, len(r.Words))
	for _, w := range r.Words {
		if t := strings.TrimSpace(w.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Column is the x-range attributed to one day (or the song slot).
// Adjacent columns share their boundary; the outer edges are infinite.
type Column struct {
	Day         string
	XMin        float64
	XMax        float64
	SubjectText string
}

// Contains reports whether x falls in [XMin, XMax).
func (c Column) Contains(x float64) bool {
	return x >= c.XMin && x < c.XMax
}

// DayRecord is what one calendar day resolves to. Content and Game hold the
// same extracted span; the game is re-resolved against the catalog later.
type DayRecord struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
	Game    string `json:"game"`
}

// Result is one parsed weekly calendar.
type Result struct {
	Data map[string]DayRecord `json:"data"`
	Song string               `json:"song"`
	Week string               `json:"week"`
}

// NewResult returns an empty result with defaults applied.
func NewResult() *Result {
	return &Result{Data: map[string]DayRecord{}, Song: DefaultSong}
}

// Day looks up a record by any day spelling ("Mon", "monday", ...).
func (r *Result) Day(day string) (DayRecord, bool) {
	if r == nil {
		return DayRecord{}, false
	}
	key, ok := MatchDay(day)
	if !ok {
		return DayRecord{}, false
	}
	rec, ok := r.Data[key]
	return rec, ok
}

// Days lists populated day keys in week order.
func (r *Result) Days() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Data))
	for _, d := range DayKeys {
		if _, ok := r.Data[d]; ok {
			out = append(out, d)
		}
	}
	return out
}
