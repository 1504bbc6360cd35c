package grading

import (
	"sync/atomic"
	"time"

	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

// Badge IDs the engine knows how to award.
const (
	BadgeVPNMaster           = "vpn_master"
	BadgeNetworkDetective    = "network_detective"
	BadgePatientProfessional = "patient_professional"
	BadgePerfectScore        = "perfect_score"
	BadgeSecurityAware       = "security_aware"
)

// SecurityAwareRiskLimit is the exclusive risk ceiling for security_aware.
const SecurityAwareRiskLimit = 20

// BadgeLookup resolves badge metadata by ID.
type BadgeLookup interface {
	Lookup(id string) (state.Badge, bool)
}

// BadgeCatalog is a hot-swappable BadgeLookup. Replace swaps the whole set.
type BadgeCatalog struct {
	current atomic.Pointer[badgeSet]
}

type badgeSet struct {
	byID  map[string]state.Badge
	order []string
}

// NewBadgeCatalog builds a catalog from the given badges.
func NewBadgeCatalog(badges ...state.Badge) *BadgeCatalog {
	c := &BadgeCatalog{}
	c.Replace(badges)
	return c
}

// Replace swaps in a new badge set.
func (c *BadgeCatalog) Replace(badges []state.Badge) {
	set := &badgeSet{byID: make(map[string]state.Badge, len(badges))}
	for _, b := range badges {
		if b.ID == "" {
			continue
		}
		if _, dup := set.byID[b.ID]; !dup {
			set.order = append(set.order, b.ID)
		}
		b.EarnedAt = nil
		set.byID[b.ID] = b
	}
	c.current.Store(set)
}

// Lookup implements BadgeLookup.
func (c *BadgeCatalog) Lookup(id string) (state.Badge, bool) {
	set := c.current.Load()
	if set == nil {
		return state.Badge{}, false
	}
	b, ok := set.byID[id]
	return b, ok
}

// List returns every badge in load order.
func (c *BadgeCatalog) List() []state.Badge {
	set := c.current.Load()
	if set == nil {
		return []state.Badge{}
	}
	out := make([]state.Badge, 0, len(set.order))
	for _, id := range set.order {
		out = append(out, set.byID[id])
	}
	return out
}

// Award unlocks badge id on gs unless it is already held, stamping it with
// now. Metadata comes from badges; an ID missing from the catalog is
// awarded bare. It reports whether the badge was newly added.
func Award(gs *state.GameSession, badges BadgeLookup, id string, now time.Time) bool {
	if gs.HasBadge(id) {
		return false
	}
	b := state.Badge{ID: id}
	if badges != nil {
		if meta, ok := badges.Lookup(id); ok {
			b = meta
		}
	}
	earned := now.UTC()
	b.EarnedAt = &earned
	return gs.AddBadge(b)
}

// CompleteSession finalizes a run. It stamps CompletedAt and awards the
// end-of-run badges. Calling it on an already completed session returns the
// session unchanged; avoiding duplicate downstream side effects such as
// archive writes is the caller's job.
func CompleteSession(gs state.GameSession, badges BadgeLookup, now time.Time) state.GameSession {
	if gs.IsCompleted() {
		return gs
	}
	out := gs.Clone()
	completed := now.UTC()
	out.CompletedAt = &completed

	if out.Score.RiskPoints == 0 {
		Award(&out, badges, BadgePerfectScore, now)
	}
	if out.Score.RiskPoints < SecurityAwareRiskLimit {
		Award(&out, badges, BadgeSecurityAware, now)
	}
	return out
}
