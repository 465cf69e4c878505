package lists

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestParseMindMap(t *testing.T) {
	text := strings.Join([]string{
		"Farm Animals - October 14",
		"Week 1",
		"Monday: I can name farm animals",
		"Tuesday - I can count to 5",
		"  - I can clap syllables",
		"WEEK 2",
		"Mon: I can sort by size",
		"Wednesday",
		"I can retell a story",
	}, "\n")
	mm := ParseMindMap(text)

	if mm.Date != "October 14" {
		t.Fatalf("date: want=%q got=%q", "October 14", mm.Date)
	}
	want := map[string]string{
		"week 1 monday":    "I can name farm animals",
		"week 1 tuesday":   "I can count to 5\nI can clap syllables",
		"week 2 monday":    "I can sort by size",
		"week 2 wednesday": "I can retell a story",
	}
	if !reflect.DeepEqual(mm.Data, want) {
		t.Fatalf("data: want=%v got=%v", want, mm.Data)
	}
	if keys := mm.Keys(); keys[0] != "week 1 monday" || len(keys) != 4 {
		t.Fatalf("keys: got=%v", keys)
	}
}

func TestParseMindMapWithoutWeek(t *testing.T) {
	mm := ParseMindMap("intro line\nFriday: I can hop")
	if got := mm.Data["friday"]; got != "I can hop" {
		t.Fatalf("friday: want=%q got=%q", "I can hop", got)
	}
	if len(mm.Data) != 1 {
		t.Fatalf("lines before a day must be ignored: %v", mm.Data)
	}
	if mm.Date != "" {
		t.Fatalf("date: want empty got=%q", mm.Date)
	}
}

func TestParseMindMapDayOnWeekLine(t *testing.T) {
	mm := ParseMindMap("Week 1 Monday: count to ten\nTuesday: hop\nWeek 2: Apples\nFri - pick apples")
	want := map[string]string{
		"week 1 monday":         "count to ten",
		"week 1 tuesday":        "hop",
		"week 2: apples friday": "pick apples",
	}
	if !reflect.DeepEqual(mm.Data, want) {
		t.Fatalf("data: want=%v got=%v", want, mm.Data)
	}
}

func TestParseGames(t *testing.T) {
	text := strings.Join([]string{
		"1. Bee Hunt: find the hidden bees",
		"* Leaf Toss - toss leaves into a basket",
		"Freeze Dance",
		"bee hunt: find bees around the room",
	}, "\n")
	cat := ParseGames(text)

	want := []Game{
		{Name: "bee hunt", Description: "find bees around the room"},
		{Name: "leaf toss", Description: "toss leaves into a basket"},
		{Name: "freeze dance", Description: ""},
	}
	if got := cat.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("entries: want=%v got=%v", want, got)
	}
	if d, ok := cat.Lookup("  BEE   Hunt "); !ok || d != "find bees around the room" {
		t.Fatalf("lookup: got=%q ok=%v", d, ok)
	}
}

func TestCatalogJSON(t *testing.T) {
	cat := NewCatalog()
	cat.Add("Zip Zap", "pass the clap")
	cat.Add("Animal Freeze", "freeze like an animal")

	b, err := json.Marshal(cat)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Catalog
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back.Entries(), cat.Entries()) {
		t.Fatalf("order lost: want=%v got=%v", cat.Entries(), back.Entries())
	}

	var legacy Catalog
	if err := json.Unmarshal([]byte(`{"zip zap":"a","animal freeze":"b"}`), &legacy); err != nil {
		t.Fatalf("unmarshal legacy: %v", err)
	}
	if got := legacy.Entries()[0].Name; got != "animal freeze" {
		t.Fatalf("legacy order: want=%q got=%q", "animal freeze", got)
	}
}

func TestParseSpiralReview(t *testing.T) {
	got := ParseSpiralReview("- The cat sat.\n\n2) A dog ran.\n   \nWe go up.\r\n")
	want := []string{"The cat sat.", "A dog ran.", "We go up."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want=%v got=%v", want, got)
	}
	if got := ParseSpiralReview(""); len(got) != 0 {
		t.Fatalf("empty: got=%v", got)
	}
}
