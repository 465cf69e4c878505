// Package state holds the planner's application state and its persisted
// document layout.
package state

import (
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/calendar"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/lists"
)

// Document names within a set.
const (
	DocCalendar     = "calendar"
	DocMindMap      = "mindmap"
	DocGames        = "games"
	DocSpiralReview = "spiral_review"
	DocSpiralCursor = "spiral_cursor"
	DocTemplate     = "template"
	DocConfig       = "config"

	DefaultSet = "default"
)

// Docs lists every document of a set.
var Docs = []string{DocCalendar, DocMindMap, DocGames, DocSpiralReview, DocSpiralCursor, DocTemplate, DocConfig}

type Config struct {
	Teacher  string `json:"teacher" yaml:"teacher"`
	Class    string `json:"class" yaml:"class"`
	Provider string `json:"provider" yaml:"provider"`
}

// Template is an uploaded template file. Data is base64 in JSON.
type Template struct {
	Name   string `json:"name"`
	Format string `json:"format"`
	Data   []byte `json:"data"`
}

// AppState is everything a generation run reads. Nil documents have not
// been uploaded.
type AppState struct {
	Calendar     *calendar.Result `json:"calendar"`
	MindMap      *lists.MindMap   `json:"mindmap"`
	Games        *lists.Catalog   `json:"games"`
	SpiralReview []string         `json:"spiralReview"`
	SpiralCursor int              `json:"spiralCursor"`
	Template     *Template        `json:"template"`
	Config       Config           `json:"config"`
}

func New() *AppState {
	return &AppState{}
}

// Clone copies the state deeply enough that mutating the copy's maps,
// slices or pointers leaves the original untouched.
func (s *AppState) Clone() *AppState {
	if s == nil {
		return New()
	}
	out := *s
	if s.Calendar != nil {
		c := *s.Calendar
		c.Data = make(map[string]calendar.DayRecord, len(s.Calendar.Data))
		for k, v := range s.Calendar.Data {
			c.Data[k] = v
		}
		out.Calendar = &c
	}
	if s.MindMap != nil {
		m := lists.MindMap{Date: s.MindMap.Date, Data: make(map[string]string, len(s.MindMap.Data))}
		for k, v := range s.MindMap.Data {
			m.Data[k] = v
		}
		out.MindMap = &m
	}
	if s.Games != nil {
		g := lists.NewCatalog()
		for _, e := range s.Games.Entries() {
			g.Add(e.Name, e.Description)
		}
		out.Games = g
	}
	out.SpiralReview = append([]string(nil), s.SpiralReview...)
	if s.Template != nil {
		t := *s.Template
		t.Data = append([]byte(nil), s.Template.Data...)
		out.Template = &t
	}
	return &out
}

// Summary describes which documents are present.
type Summary struct {
	Set          string   `json:"set"`
	CalendarDays []string `json:"calendarDays"`
	Week         string   `json:"week"`
	Song         string   `json:"song"`
	MindMapKeys  int      `json:"mindMapKeys"`
	MindMapDate  string   `json:"mindMapDate"`
	Games        int      `json:"games"`
	SpiralReview int      `json:"spiralReview"`
	SpiralCursor int      `json:"spiralCursor"`
	Template     string   `json:"template"`
	Config       Config   `json:"config"`
}

func (s *AppState) Summarize(set string) Summary {
	out := Summary{Set: set, Config: s.Config, SpiralCursor: s.SpiralCursor, SpiralReview: len(s.SpiralReview)}
	if s.Calendar != nil {
		out.CalendarDays = s.Calendar.Days()
		out.Week = s.Calendar.Week
		out.Song = s.Calendar.Song
	}
	if s.MindMap != nil {
		out.MindMapKeys = len(s.MindMap.Data)
		out.MindMapDate = s.MindMap.Date
	}
	if s.Games != nil {
		out.Games = s.Games.Len()
	}
	if s.Template != nil {
		out.Template = s.Template.Name
	}
	return out
}
