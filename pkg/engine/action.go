package engine

import (
	"github.com/jwebster45206/hotspot-trainer/pkg/grading"
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

// Intrinsic action scoring.
const (
	VPNSafetyPoints           = 5
	VerifyStaffSafetyPoints   = 10
	PostponeSafetyPoints      = 8
	InstallProfileRiskPoints  = 30
	CriticalProceedRiskPoints = 10 // floor when a critical task has no scored outcome
)

// ResolveAction applies actionID on the current scene. The action's own
// bonus or penalty is combined with the destination scene's consequence.
// A missing choice keeps the player on the current scene.
func (e *Engine) ResolveAction(gs state.GameSession, actionID string, sc *scenario.Scenario) (state.GameSession, error) {
	scene, err := currentScene(gs, sc)
	if err != nil {
		return gs, err
	}

	next := scene.ID
	if c, ok := scene.Choice(actionID); ok && c.NextSceneID != "" {
		next = c.NextSceneID
	}
	// actionID may belong to a network edge, in which case there is no action.
	action, hasAction := scene.Action(actionID)

	out := gs.Clone()
	now := e.now()

	var safety, risk int
	if hasAction {
		switch action.Type {
		case scenario.ActionUseVPN:
			out.VPNEnabled = true
			safety = VPNSafetyPoints
			grading.Award(&out, e.badges, grading.BadgeVPNMaster, now)
		case scenario.ActionVerifyStaff:
			safety = VerifyStaffSafetyPoints
			grading.Award(&out, e.badges, grading.BadgeNetworkDetective, now)
		case scenario.ActionPostpone:
			safety = PostponeSafetyPoints
			grading.Award(&out, e.badges, grading.BadgePatientProfessional, now)
		case scenario.ActionInstallProfile:
			risk = InstallProfileRiskPoints
		}
	}

	var consequence *scenario.Consequence
	if dest, ok := sc.Scene(next); ok {
		consequence = dest.Consequence
	}
	if consequence != nil {
		safety += consequence.SafetyPointsChange
		risk += consequence.RiskPointsChange
	}

	criticalProceed := hasAction && action.Type == scenario.ActionProceed && scene.Task.IsCritical()
	if criticalProceed && consequence == nil {
		risk = max(risk, CriticalProceedRiskPoints)
	}

	correct := safety > risk && (!criticalProceed || hasStrongProtection(out, sc))

	if !out.HasCompletedScene(scene.ID) {
		out.Score.Record(safety, risk, correct)
		out.MarkSceneCompleted(scene.ID)
	}
	out.CurrentSceneID = next
	return out, nil
}

// hasStrongProtection reports whether the player is on a VPN or on the
// mobile data connection.
func hasStrongProtection(gs state.GameSession, sc *scenario.Scenario) bool {
	if gs.VPNEnabled {
		return true
	}
	n, ok := sc.FindNetwork(gs.SelectedNetworkID)
	return ok && n.IsMobileData
}
