package state

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/calendar"
	"github.com/yungbote/lessonplan-backend/internal/modules/lessonplan/lists"
)

// Stored calendars and mind-maps come in two shapes: the current one wraps
// entries under "data", older snapshots stored the entry map bare.

type CalendarDoc struct {
	Legacy  map[string]calendar.DayRecord
	Current *calendar.Result
}

// DecodeCalendar reads either stored calendar shape.
func DecodeCalendar(raw []byte) (CalendarDoc, error) {
	wrapped, err := isWrapped(raw)
	if err != nil {
		return CalendarDoc{}, fmt.Errorf("decode calendar: %w", err)
	}
	if wrapped {
		res := calendar.NewResult()
		if err := json.Unmarshal(raw, res); err != nil {
			return CalendarDoc{}, fmt.Errorf("decode calendar: %w", err)
		}
		return CalendarDoc{Current: res}, nil
	}
	var legacy map[string]calendar.DayRecord
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return CalendarDoc{}, fmt.Errorf("decode legacy calendar: %w", err)
	}
	return CalendarDoc{Legacy: legacy}, nil
}

// Upgrade returns the current shape. Legacy day names are canonicalized,
// unknown keys dropped and a missing game copied from the content.
func (d CalendarDoc) Upgrade() *calendar.Result {
	if d.Current != nil {
		if d.Current.Data == nil {
			d.Current.Data = map[string]calendar.DayRecord{}
		}
		if strings.TrimSpace(d.Current.Song) == "" {
			d.Current.Song = calendar.DefaultSong
		}
		return d.Current
	}
	keys := make([]string, 0, len(d.Legacy))
	for k := range d.Legacy {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	res := calendar.NewResult()
	for _, k := range keys {
		rec := d.Legacy[k]
		day, ok := calendar.MatchDay(k)
		if !ok {
			continue
		}
		if rec.Game == "" {
			rec.Game = rec.Content
		}
		res.Data[day] = rec
	}
	return res
}

type MindMapDoc struct {
	Legacy  map[string]string
	Current *lists.MindMap
}

// DecodeMindMap reads either stored mind-map shape.
func DecodeMindMap(raw []byte) (MindMapDoc, error) {
	wrapped, err := isWrapped(raw)
	if err != nil {
		return MindMapDoc{}, fmt.Errorf("decode mindmap: %w", err)
	}
	if wrapped {
		var mm lists.MindMap
		if err := json.Unmarshal(raw, &mm); err != nil {
			return MindMapDoc{}, fmt.Errorf("decode mindmap: %w", err)
		}
		return MindMapDoc{Current: &mm}, nil
	}
	var legacy map[string]string
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return MindMapDoc{}, fmt.Errorf("decode legacy mindmap: %w", err)
	}
	return MindMapDoc{Legacy: legacy}, nil
}

// Upgrade returns the current shape. Legacy keys are lowercased; they carry
// no date.
func (d MindMapDoc) Upgrade() *lists.MindMap {
	if d.Current != nil {
		if d.Current.Data == nil {
			d.Current.Data = map[string]string{}
		}
		return d.Current
	}
	keys := make([]string, 0, len(d.Legacy))
	for k := range d.Legacy {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	mm := &lists.MindMap{Data: make(map[string]string, len(d.Legacy))}
	for _, k := range keys {
		v := d.Legacy[k]
		key := strings.ToLower(strings.Join(strings.Fields(k), " "))
		if key == "" {
			continue
		}
		if prev, ok := mm.Data[key]; ok && prev != "" {
			v = prev + "\n" + v
		}
		mm.Data[key] = v
	}
	return mm
}

// isWrapped reports whether raw is an object whose "data" member is itself
// an object.
func isWrapped(raw []byte) (bool, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false, err
	}
	data, ok := probe["data"]
	if !ok {
		return false, nil
	}
	trimmed := strings.TrimSpace(string(data))
	return strings.HasPrefix(trimmed, "{") || trimmed == "null", nil
}
