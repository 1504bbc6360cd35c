package scenario

import (
	"cmp"
	"slices"
	"sync/atomic"
)

// Catalog is the read-only set of scenarios sessions are played against.
// Reloading replaces the whole set at once; readers never observe a
// partially updated catalog.
type Catalog struct {
	current atomic.Pointer[catalogSnapshot]
}

type catalogSnapshot struct {
	byID  map[string]*Scenario
	order []string
}

// NewCatalog builds a catalog from the given scenarios.
func NewCatalog(scenarios ...*Scenario) *Catalog {
	c := &Catalog{}
	c.Replace(scenarios)
	return c
}

// Replace swaps in a new scenario set. Later duplicates of an ID win.
func (c *Catalog) Replace(scenarios []*Scenario) {
	snap := &catalogSnapshot{byID: make(map[string]*Scenario, len(scenarios))}
	for _, s := range scenarios {
		if s == nil || s.ID == "" {
			continue
		}
		if _, dup := snap.byID[s.ID]; !dup {
			snap.order = append(snap.order, s.ID)
		}
		snap.byID[s.ID] = s
	}
	c.current.Store(snap)
}

// Lookup returns the scenario with the given ID.
func (c *Catalog) Lookup(id string) (*Scenario, bool) {
	snap := c.current.Load()
	if snap == nil {
		return nil, false
	}
	s, ok := snap.byID[id]
	return s, ok
}

// List returns summaries ordered by difficulty, then by load order.
func (c *Catalog) List() []Summary {
	snap := c.current.Load()
	if snap == nil {
		return []Summary{}
	}
	out := make([]Summary, 0, len(snap.order))
	for _, id := range snap.order {
		out = append(out, snap.byID[id].Summary())
	}
	slices.SortStableFunc(out, func(a, b Summary) int {
		return cmp.Compare(difficultyRank(a.Difficulty), difficultyRank(b.Difficulty))
	})
	return out
}

// Len returns the number of scenarios loaded.
func (c *Catalog) Len() int {
	snap := c.current.Load()
	if snap == nil {
		return 0
	}
	return len(snap.order)
}

func difficultyRank(d Difficulty) int {
	switch d {
	case DifficultyBeginner:
		return 0
	case DifficultyIntermediate:
		return 1
	case DifficultyAdvanced:
		return 2
	}
	return 3
}
