package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/hotspot-trainer/pkg/grading"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

func badgeIDs(gs state.GameSession) []string {
	ids := make([]string, 0, len(gs.Badges))
	for _, b := range gs.Badges {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestResolveAction(t *testing.T) {
	tests := []struct {
		name       string
		actionID   string
		wantNext   string
		wantScore  state.Score
		wantVPN    bool
		wantBadges []string
	}{
		{
			name:       "use vpn",
			actionID:   "vpn",
			wantNext:   "task_vpn",
			wantScore:  state.Score{SafetyPoints: 5, DecisionsCount: 1, CorrectDecisions: 1},
			wantVPN:    true,
			wantBadges: []string{grading.BadgeVPNMaster},
		},
		{
			name:       "verify with staff",
			actionID:   "verify",
			wantNext:   "task",
			wantScore:  state.Score{SafetyPoints: 10, DecisionsCount: 1, CorrectDecisions: 1},
			wantBadges: []string{grading.BadgeNetworkDetective},
		},
		{
			name:       "postpone adds destination consequence",
			actionID:   "wait",
			wantNext:   "postponed",
			wantScore:  state.Score{SafetyPoints: 13, DecisionsCount: 1, CorrectDecisions: 1},
			wantBadges: []string{grading.BadgePatientProfessional},
		},
		{
			name:       "install profile stacks with consequence",
			actionID:   "profile",
			wantNext:   "profile_outcome",
			wantScore:  state.Score{RiskPoints: 50, DecisionsCount: 1},
			wantBadges: []string{},
		},
		{
			name:       "critical proceed without outcome gets risk floor",
			actionID:   "go",
			wantNext:   "debrief",
			wantScore:  state.Score{RiskPoints: 10, DecisionsCount: 1},
			wantBadges: []string{},
		},
		{
			name:       "unknown action stays put",
			actionID:   "teleport",
			wantNext:   "task",
			wantScore:  state.Score{DecisionsCount: 1},
			wantBadges: []string{},
		},
	}

	sc := cafeScenario()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := testEngine().ResolveAction(sessionAt(t, "task"), tt.actionID, sc)
			require.NoError(t, err)

			assert.Equal(t, tt.wantNext, got.CurrentSceneID)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantVPN, got.VPNEnabled)
			assert.Equal(t, tt.wantBadges, badgeIDs(got))
			assert.True(t, got.HasCompletedScene("task"))
		})
	}
}

func TestResolveAction_BadgeMetadataFromCatalog(t *testing.T) {
	got, err := testEngine().ResolveAction(sessionAt(t, "task"), "vpn", cafeScenario())
	require.NoError(t, err)
	require.Len(t, got.Badges, 1)

	b := got.Badges[0]
	assert.Equal(t, "VPN Master", b.Name)
	assert.Equal(t, "shield", b.Icon)
	require.NotNil(t, b.EarnedAt)
	assert.True(t, b.EarnedAt.Equal(fixedNow))
}

func TestResolveAction_VPNBadgeAwardedOnce(t *testing.T) {
	sc := cafeScenario()
	e := testEngine()

	first, err := e.ResolveAction(sessionAt(t, "task"), "vpn", sc)
	require.NoError(t, err)

	back, err := e.Patch(first, state.SessionPatch{CurrentSceneID: "task"}, sc)
	require.NoError(t, err)

	second, err := e.ResolveAction(back, "vpn", sc)
	require.NoError(t, err)

	assert.Equal(t, []string{grading.BadgeVPNMaster}, badgeIDs(second))
	assert.Equal(t, first.Score, second.Score)
	assert.True(t, second.VPNEnabled)
}

func TestResolveAction_CriticalProceedProtection(t *testing.T) {
	tests := []struct {
		name        string
		vpn         bool
		selected    string
		wantCorrect int
	}{
		{name: "no protection", selected: "cafe_official", wantCorrect: 0},
		{name: "vpn on", vpn: true, selected: "cafe_official", wantCorrect: 1},
		{name: "mobile data", selected: "phone", wantCorrect: 1},
		{name: "nothing selected", wantCorrect: 0},
	}

	sc := cafeScenario()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := sessionAt(t, "task_vpn")
			gs.VPNEnabled = tt.vpn
			gs.SelectedNetworkID = tt.selected

			got, err := testEngine().ResolveAction(gs, "go", sc)
			require.NoError(t, err)

			assert.Equal(t, "safe_outcome", got.CurrentSceneID)
			assert.Equal(t, 10, got.Score.SafetyPoints)
			assert.Zero(t, got.Score.RiskPoints, "consequence present, no floor penalty")
			assert.Equal(t, tt.wantCorrect, got.Score.CorrectDecisions)
		})
	}
}

func TestResolveAction_CriticalProceedWithoutProtectionIsIncorrect(t *testing.T) {
	gs := sessionAt(t, "task")
	gs.SelectedNetworkID = "cafe_official"

	got, err := testEngine().ResolveAction(gs, "go", cafeScenario())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, got.Score.RiskPoints, 10)
	assert.Equal(t, 1, got.Score.DecisionsCount)
	assert.Zero(t, got.Score.CorrectDecisions)
}

func TestResolveAction_NetworkEdgeKey(t *testing.T) {
	got, err := testEngine().ResolveAction(sessionAt(t, "select"), "connect_phone", cafeScenario())
	require.NoError(t, err)

	assert.Equal(t, "task", got.CurrentSceneID)
	assert.Equal(t, state.Score{DecisionsCount: 1}, got.Score)
}

func TestResolveAction_InvalidScene(t *testing.T) {
	_, err := testEngine().ResolveAction(sessionAt(t, "gone"), "vpn", cafeScenario())
	assert.ErrorIs(t, err, ErrInvalidState)
}
