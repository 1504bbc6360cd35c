package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/hotspot-trainer/pkg/grading"
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testBadges() *grading.BadgeCatalog {
	return grading.NewBadgeCatalog(
		state.Badge{ID: grading.BadgeVPNMaster, Name: "VPN Master", Icon: "shield"},
		state.Badge{ID: grading.BadgeNetworkDetective, Name: "Network Detective", Icon: "search"},
		state.Badge{ID: grading.BadgePatientProfessional, Name: "Patient Professional", Icon: "clock"},
		state.Badge{ID: grading.BadgePerfectScore, Name: "Perfect Score", Icon: "star"},
		state.Badge{ID: grading.BadgeSecurityAware, Name: "Security Aware", Icon: "lock"},
	)
}

func testEngine() *Engine {
	return New(testBadges()).WithClock(func() time.Time { return fixedNow })
}

// cafeScenario is a small airport-cafe graph covering every scoring path.
func cafeScenario() *scenario.Scenario {
	criticalTask := &scenario.Task{
		Type:             "banking",
		SensitivityLevel: scenario.SensitivityCritical,
		Title:            "Pay your rent",
	}
	return &scenario.Scenario{
		ID:             "cafe",
		Difficulty:     scenario.DifficultyBeginner,
		StartSceneID:   "arrival",
		TimerSeconds:   90,
		RootSceneID:    "select",
		RootNetworkIDs: []string{"cafe_official", "cafe_free", "phone"},
		Scenes: []scenario.Scene{
			{ID: "arrival", Type: scenario.SceneArrival, NextSceneID: "select"},
			{
				ID:   "select",
				Type: scenario.SceneNetworkSelection,
				Networks: []scenario.Network{
					{ID: "cafe_official", SSID: "Cafe_Official", IsSecured: true, RiskLevel: scenario.RiskSafe, VerifiedByStaff: true},
					{ID: "cafe_free", SSID: "FREE_Cafe_WiFi", RiskLevel: scenario.RiskSafe, VerifiedByStaff: true, IsTrap: true},
					{ID: "cafe_guest", SSID: "Cafe_Guest", RiskLevel: scenario.RiskSuspicious, ActionID: "pick_guest"},
					{ID: "phone", SSID: "My Phone", IsSecured: true, RiskLevel: scenario.RiskSafe, IsMobileData: true},
					{ID: "lonely", SSID: "Lonely", RiskLevel: scenario.RiskSafe},
				},
				Choices: []scenario.Choice{
					{ActionID: "connect_cafe_official", NextSceneID: "task"},
					{ActionID: "connect_cafe_free", NextSceneID: "trap_outcome"},
					{ActionID: "connect_cafe_guest", NextSceneID: "task"},
					{ActionID: "connect_phone", NextSceneID: "task"},
				},
			},
			{
				ID:   "task",
				Type: scenario.SceneTaskPrompt,
				Task: criticalTask,
				Actions: []scenario.Action{
					{ID: "vpn", Type: scenario.ActionUseVPN},
					{ID: "verify", Type: scenario.ActionVerifyStaff},
					{ID: "wait", Type: scenario.ActionPostpone},
					{ID: "profile", Type: scenario.ActionInstallProfile},
					{ID: "go", Type: scenario.ActionProceed},
				},
				Choices: []scenario.Choice{
					{ActionID: "vpn", NextSceneID: "task_vpn"},
					{ActionID: "verify", NextSceneID: "task"},
					{ActionID: "wait", NextSceneID: "postponed"},
					{ActionID: "profile", NextSceneID: "profile_outcome"},
					{ActionID: "go", NextSceneID: "debrief"},
				},
			},
			{
				ID:      "task_vpn",
				Type:    scenario.SceneTaskPrompt,
				Task:    criticalTask,
				Actions: []scenario.Action{{ID: "go", Type: scenario.ActionProceed}},
				Choices: []scenario.Choice{{ActionID: "go", NextSceneID: "safe_outcome"}},
			},
			{
				ID: "trap_outcome", Type: scenario.SceneConsequence, NextSceneID: "debrief",
				Consequence: &scenario.Consequence{Severity: scenario.SeverityDanger, Type: "credential_harvested", RiskPointsChange: 15},
			},
			{
				ID: "postponed", Type: scenario.SceneConsequence, NextSceneID: "debrief",
				Consequence: &scenario.Consequence{Severity: scenario.SeveritySuccess, Type: "safe_browsing", SafetyPointsChange: 5},
			},
			{
				ID: "profile_outcome", Type: scenario.SceneConsequence, NextSceneID: "debrief",
				Consequence: &scenario.Consequence{Severity: scenario.SeverityDanger, Type: "device_compromised", RiskPointsChange: 20},
			},
			{
				ID: "safe_outcome", Type: scenario.SceneConsequence, NextSceneID: "debrief",
				Consequence: &scenario.Consequence{Severity: scenario.SeveritySuccess, Type: "vpn_protected", SafetyPointsChange: 10},
			},
			{ID: "debrief", Type: scenario.SceneDebrief, NextSceneID: "done"},
			{ID: "done", Type: scenario.SceneCompletion},
		},
	}
}

// sessionAt returns a fresh cafe session positioned on sceneID.
func sessionAt(t *testing.T, sceneID string) state.GameSession {
	t.Helper()
	gs, err := testEngine().CreateSession("cafe", "", scenario.NewCatalog(cafeScenario()))
	require.NoError(t, err)
	gs.CurrentSceneID = sceneID
	return gs
}

func network(t *testing.T, sc *scenario.Scenario, id string) scenario.Network {
	t.Helper()
	n, ok := sc.FindNetwork(id)
	require.True(t, ok, "network %s", id)
	return n
}
