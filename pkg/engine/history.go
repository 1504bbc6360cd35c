package engine

import (
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

// ShouldSnapshot reports whether an undo snapshot is taken before a decision
// on the session's current scene.
func ShouldSnapshot(gs state.GameSession, sc *scenario.Scenario) bool {
	scene, ok := sc.Scene(gs.CurrentSceneID)
	return ok && scene.Type.IsDecision()
}

// History is a caller-side undo stack of pre-decision snapshots.
type History struct {
	snapshots []state.GameSession
	limit     int
}

// NewHistory creates a stack keeping at most limit snapshots. A limit of
// zero or less keeps them all.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Record pushes a snapshot of gs if its current scene is a decision scene.
// It reports whether a snapshot was taken.
func (h *History) Record(gs state.GameSession, sc *scenario.Scenario) bool {
	if !ShouldSnapshot(gs, sc) {
		return false
	}
	h.snapshots = append(h.snapshots, gs.Clone())
	if h.limit > 0 && len(h.snapshots) > h.limit {
		h.snapshots = h.snapshots[len(h.snapshots)-h.limit:]
	}
	return true
}

// Undo pops the most recent snapshot.
func (h *History) Undo() (state.GameSession, bool) {
	if len(h.snapshots) == 0 {
		return state.GameSession{}, false
	}
	last := h.snapshots[len(h.snapshots)-1]
	h.snapshots = h.snapshots[:len(h.snapshots)-1]
	return last, true
}

// Len returns the number of snapshots held.
func (h *History) Len() int {
	return len(h.snapshots)
}

// Reset drops every snapshot.
func (h *History) Reset() {
	h.snapshots = nil
}
