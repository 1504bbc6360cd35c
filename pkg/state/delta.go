package state

import (
	"errors"
	"fmt"
)

// TimerExpiredPenalty is the risk added when the scenario countdown runs out.
const TimerExpiredPenalty = 15

var (
	ErrSessionCompleted = errors.New("session already completed")
	ErrInvalidPatch     = errors.New("invalid session patch")
)

// SessionPatch is a partial update applied through the ordinary session
// update path. Unset fields leave the session untouched. Point deltas are
// additive and may not be negative.
type SessionPatch struct {
	CurrentSceneID    string `json:"currentSceneId,omitempty"`
	SelectedNetworkID string `json:"selectedNetworkId,omitempty"`
	VPNEnabled        *bool  `json:"vpnEnabled,omitempty"`
	SafetyPointsDelta int    `json:"safetyPointsDelta,omitempty"`
	RiskPointsDelta   int    `json:"riskPointsDelta,omitempty"`
	Reason            string `json:"reason,omitempty"` // e.g. "timer_expired"
}

// TimerExpiredPatch is the patch a presentation layer sends when the
// countdown reaches zero.
func TimerExpiredPatch() SessionPatch {
	return SessionPatch{RiskPointsDelta: TimerExpiredPenalty, Reason: "timer_expired"}
}

// IsEmpty checks if the patch changes nothing.
func (p *SessionPatch) IsEmpty() bool {
	return p == nil || (p.CurrentSceneID == "" &&
		p.SelectedNetworkID == "" &&
		p.VPNEnabled == nil &&
		p.SafetyPointsDelta == 0 &&
		p.RiskPointsDelta == 0)
}

// ApplyPatch returns a copy of gs with p applied. A VPN that is already on
// stays on.
func ApplyPatch(gs GameSession, p SessionPatch) (GameSession, error) {
	if gs.IsCompleted() {
		return gs, ErrSessionCompleted
	}
	if p.SafetyPointsDelta < 0 || p.RiskPointsDelta < 0 {
		return gs, fmt.Errorf("%w: point deltas must not be negative", ErrInvalidPatch)
	}

	out := gs.Clone()
	if p.CurrentSceneID != "" {
		out.CurrentSceneID = p.CurrentSceneID
	}
	if p.SelectedNetworkID != "" {
		out.SelectedNetworkID = p.SelectedNetworkID
	}
	if p.VPNEnabled != nil && *p.VPNEnabled {
		out.VPNEnabled = true
	}
	out.Score.SafetyPoints += p.SafetyPointsDelta
	out.Score.RiskPoints += p.RiskPointsDelta
	return out, nil
}
