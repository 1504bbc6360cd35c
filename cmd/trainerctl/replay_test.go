package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/hotspot-trainer/internal/storage"
	"github.com/jwebster45206/hotspot-trainer/pkg/engine"
	"github.com/jwebster45206/hotspot-trainer/pkg/grading"
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

const dataDir = "../../data"

// shippedReplayer loads the repository's own content.
func shippedReplayer(t *testing.T) *Replayer {
	t.Helper()
	loader := storage.NewCatalogLoader(dataDir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	loaded, err := loader.LoadScenarios(t.Context())
	require.NoError(t, err)
	badges, err := loader.LoadBadges(t.Context())
	require.NoError(t, err)
	return NewReplayer(engine.New(grading.NewBadgeCatalog(badges...)), scenario.NewCatalog(loaded...), 10)
}

func badgeIDs(gs state.GameSession) []string {
	ids := make([]string, 0, len(gs.Badges))
	for _, b := range gs.Badges {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestShippedContentIsConsistent(t *testing.T) {
	loader := storage.NewCatalogLoader(dataDir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	loaded, err := loader.LoadScenarios(t.Context())
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	for _, sc := range loaded {
		t.Run(sc.ID, func(t *testing.T) {
			_, ok := sc.Scene(sc.StartSceneID)
			assert.True(t, ok, "start scene %s", sc.StartSceneID)
			for _, scene := range sc.Scenes {
				if scene.NextSceneID != "" {
					_, ok := sc.Scene(scene.NextSceneID)
					assert.True(t, ok, "%s -> %s", scene.ID, scene.NextSceneID)
				}
				for _, c := range scene.Choices {
					_, ok := sc.Scene(c.NextSceneID)
					assert.True(t, ok, "%s -[%s]-> %s", scene.ID, c.ActionID, c.NextSceneID)
				}
			}
			if sc.Explorable() {
				root, ok := sc.Scene(sc.RootSceneID)
				require.True(t, ok)
				for _, id := range sc.RootNetworkIDs {
					_, ok := root.Network(id)
					assert.True(t, ok, "root network %s", id)
				}
			}
		})
	}
}

func TestReplay_SafeRun(t *testing.T) {
	script, err := loadScript(filepath.Join(dataDir, "scripts", "coffee_shop_safe.json"))
	require.NoError(t, err)

	gs, err := shippedReplayer(t).Run(script)
	require.NoError(t, err)

	assert.NotNil(t, gs.CompletedAt)
	assert.Equal(t, "complete", gs.CurrentSceneID)
	assert.Equal(t, state.Score{SafetyPoints: 30, RiskPoints: 0, DecisionsCount: 2, CorrectDecisions: 2}, gs.Score)
	assert.Equal(t, "A", grading.CalculateGrade(gs.Score).Grade)
	assert.ElementsMatch(t, []string{grading.BadgeVPNMaster, grading.BadgePerfectScore, grading.BadgeSecurityAware}, badgeIDs(gs))
}

func TestReplay_Steps(t *testing.T) {
	tests := []struct {
		name      string
		script    Script
		wantScene string
		wantScore state.Score
		wantErr   string
	}{
		{
			name: "trap then undo",
			script: Script{ScenarioID: "coffee_shop", Steps: []Step{
				{Op: opAdvance}, {Op: opAdvance},
				{Op: opNetwork, ID: "free_coffee_wifi"},
				{Op: opUndo},
				{Op: opNetwork, ID: "mobile_hotspot"},
			}},
			wantScene: "check_email",
			wantScore: state.Score{SafetyPoints: engine.SafeSafetyPoints, DecisionsCount: 1, CorrectDecisions: 1},
		},
		{
			name: "timer penalty",
			script: Script{ScenarioID: "airport", Steps: []Step{
				{Op: opTimer},
			}},
			wantScene: "arrival",
			wantScore: state.Score{RiskPoints: state.TimerExpiredPenalty},
		},
		{
			name: "installing a profile",
			script: Script{ScenarioID: "airport", Steps: []Step{
				{Op: opAdvance},
				{Op: opNetwork, ID: "airport_free"},
				{Op: opAction, ID: "install_profile"},
			}},
			wantScene: "profile_outcome",
			wantScore: state.Score{RiskPoints: engine.UnsafeNetworkRiskPoints + engine.InstallProfileRiskPoints + 10, DecisionsCount: 2},
		},
		{
			name: "explore then commit",
			script: Script{ScenarioID: "hotel", Steps: []Step{
				{Op: opAdvance},
				{Op: opExplore, ID: "grand_guest_5g"},
				{Op: opExploreRestart},
				{Op: opExplore, ID: "grand_guest"},
				{Op: opExploreFinal},
				{Op: opNetwork, ID: "grand_guest"},
			}},
			wantScene: "expense_report",
			wantScore: state.Score{SafetyPoints: engine.VerifiedSafetyPoints, DecisionsCount: 1, CorrectDecisions: 1},
		},
		{
			name:    "unknown scenario",
			script:  Script{ScenarioID: "stadium"},
			wantErr: "scenario not found",
		},
		{
			name:    "undo with empty history",
			script:  Script{ScenarioID: "hotel", Steps: []Step{{Op: opUndo}}},
			wantErr: "step 1 (undo ): nothing to undo",
		},
		{
			name:    "final before exploring",
			script:  Script{ScenarioID: "hotel", Steps: []Step{{Op: opExploreFinal}}},
			wantErr: "exploration not started",
		},
		{
			name: "undo after restart",
			script: Script{ScenarioID: "hotel", Steps: []Step{
				{Op: opAdvance},
				{Op: opExplore, ID: "grand_guest"},
				{Op: opAction, ID: "use_vpn"},
				{Op: opExploreRestart},
				{Op: opUndo},
			}},
			wantErr: "step 5 (undo ): nothing to undo",
		},
		{
			name: "undo after final run start",
			script: Script{ScenarioID: "hotel", Steps: []Step{
				{Op: opAdvance},
				{Op: opExplore, ID: "grand_guest_5g"},
				{Op: opExploreRestart},
				{Op: opExplore, ID: "grand_guest"},
				{Op: opAction, ID: "use_vpn"},
				{Op: opExploreFinal},
				{Op: opUndo},
			}},
			wantErr: "step 7 (undo ): nothing to undo",
		},
		{
			name: "second final run",
			script: Script{ScenarioID: "hotel", Steps: []Step{
				{Op: opAdvance},
				{Op: opExplore, ID: "grand_guest_5g"},
				{Op: opExploreRestart},
				{Op: opExplore, ID: "grand_guest"},
				{Op: opExploreFinal},
				{Op: opNetwork, ID: "grand_guest_5g"},
				{Op: opExploreFinal},
			}},
			wantErr: "step 7 (explore_final ): invalid session state: not exploring",
		},
		{
			name:    "unknown op",
			script:  Script{ScenarioID: "hotel", Steps: []Step{{Op: "teleport"}}},
			wantErr: `unknown op "teleport"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs, err := shippedReplayer(t).Run(&tt.script)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantScene, gs.CurrentSceneID)
			assert.Equal(t, tt.wantScore, gs.Score)
		})
	}
}
