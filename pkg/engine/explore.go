package engine

import (
	"fmt"

	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

// BeginExploration switches the session into explore mode. The session must
// be on the scenario's root scene. The caller should keep the returned
// session as the root snapshot for RestartExploration and BeginFinalRun.
func (e *Engine) BeginExploration(gs state.GameSession, sc *scenario.Scenario) (state.GameSession, error) {
	if _, err := currentScene(gs, sc); err != nil {
		return gs, err
	}
	if !sc.Explorable() {
		return gs, fmt.Errorf("%w: %s", ErrNoExploration, sc.ID)
	}
	if gs.Exploration != nil && gs.Exploration.Active {
		return gs, nil
	}
	if gs.CurrentSceneID != sc.RootSceneID {
		return gs, fmt.Errorf("%w: exploration starts on scene %q, session is on %q", ErrInvalidState, sc.RootSceneID, gs.CurrentSceneID)
	}
	out := gs.Clone()
	ex := state.NewExploration(sc.RootSceneID, sc.RootNetworkIDs)
	out.Exploration = &ex
	return out, nil
}

// ExploreNetwork picks networkID on the root scene during explore mode. The
// pick is resolved like any network choice and marks the network explored.
func (e *Engine) ExploreNetwork(gs state.GameSession, networkID string, sc *scenario.Scenario) (state.GameSession, error) {
	if gs.Exploration == nil || !gs.Exploration.Active {
		return gs, fmt.Errorf("%w: not exploring", ErrInvalidState)
	}
	if gs.CurrentSceneID != gs.Exploration.RootSceneID {
		return gs, fmt.Errorf("%w: explore picks are made on scene %q", ErrInvalidState, gs.Exploration.RootSceneID)
	}
	out, err := e.ResolveNetworkByID(gs, networkID, sc)
	if err != nil {
		return gs, err
	}
	out.Exploration.MarkExplored(networkID)
	return out, nil
}

// RestartExploration returns to the root snapshot while keeping the
// exploration progress of current.
func (e *Engine) RestartExploration(current, root state.GameSession) (state.GameSession, error) {
	if current.ID != root.ID {
		return current, fmt.Errorf("%w: root snapshot belongs to another session", ErrInvalidState)
	}
	if current.Exploration == nil || !current.Exploration.Active {
		return current, fmt.Errorf("%w: not exploring", ErrInvalidState)
	}
	out := root.Clone()
	ex := *current.Clone().Exploration
	out.Exploration = &ex
	return out, nil
}

// BeginFinalRun starts the scored attempt from the root snapshot once every
// root network has been explored. Nothing scored while exploring carries over,
// and the final run can only be started once.
func (e *Engine) BeginFinalRun(current, root state.GameSession) (state.GameSession, error) {
	if current.ID != root.ID {
		return current, fmt.Errorf("%w: root snapshot belongs to another session", ErrInvalidState)
	}
	if current.Exploration == nil || !current.Exploration.Active {
		return current, fmt.Errorf("%w: not exploring", ErrInvalidState)
	}
	if !AllNetworksExplored(current) {
		return current, fmt.Errorf("%w: exploration incomplete", ErrInvalidState)
	}
	out := root.Clone()
	ex := *current.Clone().Exploration
	ex.Active = false
	out.Exploration = &ex
	return out, nil
}

// AllNetworksExplored reports whether every root network has been sampled.
func AllNetworksExplored(gs state.GameSession) bool {
	return gs.Exploration != nil && gs.Exploration.AllNetworksExplored()
}
