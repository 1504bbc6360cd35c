package engine

import (
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

// Network selection scoring.
const (
	TrapRiskPoints          = 25
	VerifiedSafetyPoints    = 15
	SafeSafetyPoints        = 10
	UnsafeNetworkRiskPoints = 10
)

// NetworkDelta is the score change for connecting to n. A trap dominates
// every other attribute.
func NetworkDelta(n scenario.Network) (safety, risk int) {
	switch {
	case n.IsTrap:
		return 0, TrapRiskPoints
	case n.RiskLevel == scenario.RiskSafe && n.VerifiedByStaff:
		return VerifiedSafetyPoints, 0
	case n.RiskLevel == scenario.RiskSafe:
		return SafeSafetyPoints, 0
	default:
		return 0, UnsafeNetworkRiskPoints
	}
}

// nextSceneForNetwork follows the network's edge. An explicit actionId is
// tried first, then connect_<id>. With no matching edge the player stays on
// the current scene.
func nextSceneForNetwork(scene *scenario.Scene, n scenario.Network) string {
	if c, ok := scene.Choice(n.EdgeKey()); ok {
		return c.NextSceneID
	}
	if n.ActionID != "" {
		if c, ok := scene.Choice(n.DefaultEdgeKey()); ok {
			return c.NextSceneID
		}
	}
	return scene.ID
}

// ResolveNetworkChoice applies the player's pick of network n on the current
// scene. The scene is scored at most once; revisiting it only moves the
// player and updates the selected network.
func (e *Engine) ResolveNetworkChoice(gs state.GameSession, n scenario.Network, sc *scenario.Scenario) (state.GameSession, error) {
	scene, err := currentScene(gs, sc)
	if err != nil {
		return gs, err
	}

	out := gs.Clone()
	out.SelectedNetworkID = n.ID
	if !out.HasCompletedScene(scene.ID) {
		safety, risk := NetworkDelta(n)
		out.Score.Record(safety, risk, safety > 0)
		out.MarkSceneCompleted(scene.ID)
	}
	if next := nextSceneForNetwork(scene, n); next != "" {
		out.CurrentSceneID = next
	}
	return out, nil
}

// ResolveNetworkByID looks n up on the current scene and resolves it.
func (e *Engine) ResolveNetworkByID(gs state.GameSession, networkID string, sc *scenario.Scenario) (state.GameSession, error) {
	scene, err := currentScene(gs, sc)
	if err != nil {
		return gs, err
	}
	n, ok := scene.Network(networkID)
	if !ok {
		return gs, ErrUnknownNetwork
	}
	return e.ResolveNetworkChoice(gs, n, sc)
}
