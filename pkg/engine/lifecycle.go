package engine

import (
	"fmt"

	"github.com/jwebster45206/hotspot-trainer/pkg/grading"
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

// CreateSession starts a run of scenarioID positioned on its start scene.
// An empty or unknown difficulty falls back to the scenario's own.
func (e *Engine) CreateSession(scenarioID string, difficulty scenario.Difficulty, scenarios ScenarioLookup) (state.GameSession, error) {
	sc, ok := scenarios.Lookup(scenarioID)
	if !ok {
		return state.GameSession{}, fmt.Errorf("%w: %s", ErrNotFound, scenarioID)
	}
	if !difficulty.Valid() {
		difficulty = sc.Difficulty
	}
	return state.NewGameSession(sc.ID, difficulty, sc.StartSceneID, e.now()), nil
}

// Advance follows the current scene's linear nextSceneId. A scene without
// one leaves the session where it is.
func (e *Engine) Advance(gs state.GameSession, sc *scenario.Scenario) (state.GameSession, error) {
	scene, err := currentScene(gs, sc)
	if err != nil {
		return gs, err
	}
	if scene.NextSceneID == "" {
		return gs, nil
	}
	out := gs.Clone()
	out.CurrentSceneID = scene.NextSceneID
	return out, nil
}

// AtTerminal reports whether the session sits on a scene with no way forward.
func AtTerminal(gs state.GameSession, sc *scenario.Scenario) bool {
	scene, ok := sc.Scene(gs.CurrentSceneID)
	return ok && (scene.IsTerminal() || scene.Type == scenario.SceneCompletion)
}

// Complete finalizes the session and awards end-of-run badges. It is a
// no-op on a session that is already complete.
func (e *Engine) Complete(gs state.GameSession) state.GameSession {
	return grading.CompleteSession(gs, e.badges, e.now())
}

// Patch applies an externally triggered partial update, such as the timer
// expiry penalty. A scene change must name a scene of sc.
func (e *Engine) Patch(gs state.GameSession, p state.SessionPatch, sc *scenario.Scenario) (state.GameSession, error) {
	if p.CurrentSceneID != "" {
		if _, ok := sc.Scene(p.CurrentSceneID); !ok {
			return gs, fmt.Errorf("%w: scene %q not in scenario %q", ErrInvalidState, p.CurrentSceneID, sc.ID)
		}
	}
	return state.ApplyPatch(gs, p)
}
