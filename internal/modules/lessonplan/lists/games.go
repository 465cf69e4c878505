package lists

import (
	"encoding/json"
	"sort"
	"strings"
)

// Game is one catalog entry.
type Game struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog is the games list keyed by lowercased, trimmed name. Iteration
// follows first insertion; re-adding a name replaces its description in
// place.
type Catalog struct {
	names []string
	desc  map[string]string
}

func NewCatalog() *Catalog {
	return &Catalog{desc: map[string]string{}}
}

// NormalizeName is the key form used for every catalog lookup.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func (c *Catalog) Add(name, description string) {
	key := NormalizeName(name)
	if key == "" {
		return
	}
	if c.desc == nil {
		c.desc = map[string]string{}
	}
	if _, ok := c.desc[key]; !ok {
		c.names = append(c.names, key)
	}
	c.desc[key] = strings.TrimSpace(description)
}

func (c *Catalog) Lookup(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	d, ok := c.desc[NormalizeName(name)]
	return d, ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Entries returns the games in catalog order.
func (c *Catalog) Entries() []Game {
	if c == nil {
		return nil
	}
	out := make([]Game, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, Game{Name: n, Description: c.desc[n]})
	}
	return out
}

// MarshalJSON writes the ordered entry list.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	entries := c.Entries()
	if entries == nil {
		entries = []Game{}
	}
	return json.Marshal(entries)
}

// UnmarshalJSON accepts the ordered entry list, or a plain name→description
// object as older snapshots stored it (sorted by name, since objects carry
// no order).
func (c *Catalog) UnmarshalJSON(b []byte) error {
	*c = Catalog{desc: map[string]string{}}
	var entries []Game
	if err := json.Unmarshal(b, &entries); err == nil {
		for _, g := range entries {
			c.Add(g.Name, g.Description)
		}
		return nil
	}
	var flat map[string]string
	if err := json.Unmarshal(b, &flat); err != nil {
		return err
	}
	names := make([]string, 0, len(flat))
	for n := range flat {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		c.Add(n, flat[n])
	}
	return nil
}

// ParseGames reads "name: description" lines. A line without a separator is
// a game with no description.
func ParseGames(text string) *Catalog {
	cat := NewCatalog()
	for _, line := range cleanLines(text) {
		name, desc, _ := splitLabel(line)
		cat.Add(name, desc)
	}
	return cat
}
