// Package engine interprets a scenario graph: it applies a player's
// decisions to a session, scores them, and decides the next scene.
//
// Every operation takes a session value and returns a new one. Inputs are
// never modified, so keeping a reference to an earlier session is a valid
// snapshot.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/jwebster45206/hotspot-trainer/pkg/grading"
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

var (
	// ErrNotFound is returned when a scenario ID is not in the catalog.
	ErrNotFound = errors.New("scenario not found")
	// ErrInvalidState is returned when a session does not fit its scenario,
	// e.g. the current scene no longer exists.
	ErrInvalidState = errors.New("invalid session state")
	// ErrUnknownNetwork is returned when a network ID is not offered by the
	// current scene.
	ErrUnknownNetwork = errors.New("network not offered by current scene")
	// ErrNoExploration is returned when a scenario has no exploration root.
	ErrNoExploration = errors.New("scenario has no exploration root")
)

// ScenarioLookup finds scenarios by ID. *scenario.Catalog implements it.
type ScenarioLookup interface {
	Lookup(id string) (*scenario.Scenario, bool)
}

// Engine carries the read-only collaborators the resolver needs: the badge
// catalog and a clock.
type Engine struct {
	badges grading.BadgeLookup
	now    func() time.Time
}

// New creates an engine that takes badge metadata from badges.
func New(badges grading.BadgeLookup) *Engine {
	return &Engine{badges: badges, now: time.Now}
}

// WithClock returns a copy of the engine using now as its time source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	cp := *e
	cp.now = now
	return &cp
}

// currentScene resolves the session's scene, rejecting sessions that are
// finished or that belong to another scenario.
func currentScene(gs state.GameSession, sc *scenario.Scenario) (*scenario.Scene, error) {
	if gs.IsCompleted() {
		return nil, state.ErrSessionCompleted
	}
	if sc == nil {
		return nil, fmt.Errorf("%w: no scenario", ErrInvalidState)
	}
	if gs.ScenarioID != "" && gs.ScenarioID != sc.ID {
		return nil, fmt.Errorf("%w: session is for scenario %q, not %q", ErrInvalidState, gs.ScenarioID, sc.ID)
	}
	scene, ok := sc.Scene(gs.CurrentSceneID)
	if !ok {
		return nil, fmt.Errorf("%w: scene %q not in scenario %q", ErrInvalidState, gs.CurrentSceneID, sc.ID)
	}
	return scene, nil
}
