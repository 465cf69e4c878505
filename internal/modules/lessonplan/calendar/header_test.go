package calendar

import (
	"math"
	"testing"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/ocr"
)

func TestMatchDay(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Monday", "monday", true},
		{"SUNDAY:", "sunday", true},
		{"Mon.", "monday", true},
		{"thu", "thursday", true},
		{"Sunny", "", false},
		{"thurs", "", false},
		{"Monday's", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := MatchDay(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("MatchDay(%q): want=(%q,%v) got=(%q,%v)", tc.in, tc.want, tc.ok, got, ok)
		}
	}
}

func TestDetectColumnsAttachesHeaderProse(t *testing.T) {
	header := []Row{{
		Words: []ocr.WordToken{
			word("Monday", 0, 0, 50, 20),
			word("Science", 60, 0, 110, 20),
			word("Tuesday", 200, 0, 260, 20),
			word("Art", 270, 0, 300, 20),
		},
		YMin: 0,
		YMax: 20,
	}}
	cols := DetectColumns(header)
	if len(cols) != 2 {
		t.Fatalf("columns: want=2 got=%d", len(cols))
	}
	if cols[0].Day != "monday" || cols[0].SubjectText != "Science" {
		t.Fatalf("col 0: got=%+v", cols[0])
	}
	if cols[1].Day != "tuesday" || cols[1].SubjectText != "Art" {
		t.Fatalf("col 1: got=%+v", cols[1])
	}
	if cols[0].XMax != 155 || cols[1].XMin != 155 {
		t.Fatalf("boundary: want=155 got=%v/%v", cols[0].XMax, cols[1].XMin)
	}
	if !math.IsInf(cols[0].XMin, -1) || !math.IsInf(cols[1].XMax, 1) {
		t.Fatalf("outer edges must be open: got=%v %v", cols[0].XMin, cols[1].XMax)
	}
}

func TestDetectColumnsPartitionsAxis(t *testing.T) {
	cases := []struct {
		name  string
		words []ocr.WordToken
		want  int
	}{
		{
			name: "abbreviations with song",
			words: []ocr.WordToken{
				word("Fri", 400, 0, 430, 10),
				word("Mon", 0, 0, 30, 10),
				word("Wed", 200, 0, 240, 10),
				word("Song", 600, 0, 640, 10),
				word("Tue", 100, 0, 130, 10),
				word("Thu", 300, 0, 330, 10),
			},
			want: 6,
		},
		{
			name: "overlapping boxes",
			words: []ocr.WordToken{
				word("Monday", 0, 0, 120, 10),
				word("Tuesday", 100, 0, 180, 10),
				word("Wednesday", 150, 0, 260, 10),
			},
			want: 3,
		},
		{
			name: "duplicate day ignored",
			words: []ocr.WordToken{
				word("Monday", 0, 0, 50, 10),
				word("Monday", 100, 0, 150, 10),
				word("Tuesday", 200, 0, 250, 10),
			},
			want: 2,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cols := DetectColumns([]Row{{Words: tc.words}})
			if len(cols) != tc.want {
				t.Fatalf("columns: want=%d got=%d", tc.want, len(cols))
			}
			if !math.IsInf(cols[0].XMin, -1) || !math.IsInf(cols[len(cols)-1].XMax, 1) {
				t.Fatalf("outer edges must be open")
			}
			for i := 0; i+1 < len(cols); i++ {
				if cols[i].XMax != cols[i+1].XMin {
					t.Fatalf("gap between %d and %d: %v != %v", i, i+1, cols[i].XMax, cols[i+1].XMin)
				}
				if cols[i].XMin > cols[i].XMax {
					t.Fatalf("column %d inverted: %+v", i, cols[i])
				}
			}
			for _, x := range []float64{-1e9, 0, 99.5, 150, 255, 1e9} {
				hits := 0
				for _, c := range cols {
					if c.Contains(x) {
						hits++
					}
				}
				if hits != 1 {
					t.Fatalf("x=%v covered by %d columns", x, hits)
				}
			}
		})
	}
}

func TestFindWeek(t *testing.T) {
	cases := []struct {
		text   string
		tokens []string
		want   string
	}{
		{"Calendar Week 12 Monday", nil, "WEEK 12"},
		{"WEEK3", nil, "WEEK 3"},
		{"Week: of 4", []string{"Week:", "of", "4"}, "WEEK 4"},
		{"Week: a b c 4", []string{"Week:", "a", "b", "c", "4"}, ""},
		{"Week: 9", []string{"Week:", "9"}, ""},
		{"Monday", []string{"Monday"}, ""},
	}
	for _, tc := range cases {
		if got := FindWeek(tc.text, tc.tokens); got != tc.want {
			t.Fatalf("FindWeek(%q): want=%q got=%q", tc.text, tc.want, got)
		}
	}
}
