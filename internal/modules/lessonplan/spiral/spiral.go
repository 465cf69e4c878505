// Package spiral picks the two spiral-review sentences for a lesson: the
// next one in a deterministic oldest-first sweep and a random one from the
// newest fifth of the list.
package spiral

import "math/rand"

// NoItems is the text reported for an empty review list.
const NoItems = "No spiral review items"

// recentDivisor sets the recent window to the newest fifth, rounded up.
const recentDivisor = 5

// Rand is the subset of *rand.Rand the selector needs.
type Rand interface {
	Intn(n int) int
}

// Selection is one pick.
type Selection struct {
	Oldest     string `json:"oldest"`
	Recent     string `json:"recent"`
	NextCursor int    `json:"nextCursor"`
	Empty      bool   `json:"empty"`
}

// Select returns list[L-1-(cursor mod L)] as Oldest and a uniform pick from
// list[0:ceil(0.2L)] as Recent. An empty list yields the NoItems sentinel
// and a zero NextCursor; callers must not persist it.
func Select(list []string, cursor int, rng Rand) Selection {
	n := len(list)
	if n == 0 {
		return Selection{Oldest: NoItems, Recent: NoItems, Empty: true}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	step := cursor % n
	if step < 0 {
		step += n
	}
	window := (n + recentDivisor - 1) / recentDivisor
	return Selection{
		Oldest:     list[n-1-step],
		Recent:     list[rng.Intn(window)],
		NextCursor: cursor + 1,
	}
}
