package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

func TestExploration_FullLoop(t *testing.T) {
	sc := cafeScenario()
	e := testEngine()

	root, err := e.BeginExploration(sessionAt(t, "select"), sc)
	require.NoError(t, err)
	require.NotNil(t, root.Exploration)
	assert.True(t, root.Exploration.Active)

	current := root
	for i, id := range sc.RootNetworkIDs {
		assert.False(t, AllNetworksExplored(current), "before pick %d", i)

		current, err = e.ExploreNetwork(current, id, sc)
		require.NoError(t, err)
		assert.Len(t, current.Exploration.ExploredNetworkIDs, i+1)

		current, err = e.RestartExploration(current, root)
		require.NoError(t, err)
		assert.Equal(t, "select", current.CurrentSceneID)
		assert.Equal(t, state.Score{}, current.Score, "restart drops exploration scoring")
	}
	assert.True(t, AllNetworksExplored(current))

	final, err := e.BeginFinalRun(current, root)
	require.NoError(t, err)
	assert.False(t, final.Exploration.Active)
	assert.Equal(t, state.Score{}, final.Score)
	assert.Empty(t, final.CompletedSceneIDs)

	scored, err := e.ResolveNetworkByID(final, "cafe_official", sc)
	require.NoError(t, err)
	assert.Equal(t, 15, scored.Score.SafetyPoints)

	assert.Empty(t, root.Exploration.ExploredNetworkIDs, "root snapshot untouched")
}

func TestExploration_RepeatsDoNotCount(t *testing.T) {
	sc := cafeScenario()
	e := testEngine()

	root, err := e.BeginExploration(sessionAt(t, "select"), sc)
	require.NoError(t, err)

	current := root
	for _, id := range []string{"phone", "phone", "cafe_guest", "phone"} {
		current, err = e.ExploreNetwork(current, id, sc)
		require.NoError(t, err)
		current, err = e.RestartExploration(current, root)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"phone"}, current.Exploration.ExploredNetworkIDs)
	assert.Equal(t, []string{"cafe_official", "cafe_free"}, current.Exploration.Remaining())

	_, err = e.BeginFinalRun(current, root)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestExploration_Errors(t *testing.T) {
	sc := cafeScenario()
	e := testEngine()

	_, err := e.BeginExploration(sessionAt(t, "task"), sc)
	assert.ErrorIs(t, err, ErrInvalidState, "must start on root scene")

	flat := cafeScenario()
	flat.RootSceneID = ""
	_, err = e.BeginExploration(sessionAt(t, "select"), flat)
	assert.ErrorIs(t, err, ErrNoExploration)

	_, err = e.ExploreNetwork(sessionAt(t, "select"), "phone", sc)
	assert.ErrorIs(t, err, ErrInvalidState, "not exploring")

	root, err := e.BeginExploration(sessionAt(t, "select"), sc)
	require.NoError(t, err)
	_, err = e.ExploreNetwork(root, "nope", sc)
	assert.ErrorIs(t, err, ErrUnknownNetwork)

	stranger := sessionAt(t, "select")
	_, err = e.RestartExploration(root, stranger)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = e.BeginFinalRun(sessionAt(t, "select"), sessionAt(t, "select"))
	assert.ErrorIs(t, err, ErrInvalidState, "final run without exploration")
}

func TestExploration_FinalRunStartsOnce(t *testing.T) {
	sc := cafeScenario()
	e := testEngine()

	root, err := e.BeginExploration(sessionAt(t, "select"), sc)
	require.NoError(t, err)
	current := root
	for _, id := range sc.RootNetworkIDs {
		current, err = e.ExploreNetwork(current, id, sc)
		require.NoError(t, err)
		current, err = e.RestartExploration(current, root)
		require.NoError(t, err)
	}

	final, err := e.BeginFinalRun(current, root)
	require.NoError(t, err)
	scored, err := e.ResolveNetworkByID(final, "cafe_free", sc)
	require.NoError(t, err)
	require.Equal(t, TrapRiskPoints, scored.Score.RiskPoints)

	again, err := e.BeginFinalRun(scored, root)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, scored.Score, again.Score, "scored attempt is kept")

	_, err = e.RestartExploration(scored, root)
	assert.ErrorIs(t, err, ErrInvalidState, "no going back to exploring")
}

func TestExploration_BeginIsIdempotent(t *testing.T) {
	sc := cafeScenario()
	e := testEngine()

	root, err := e.BeginExploration(sessionAt(t, "select"), sc)
	require.NoError(t, err)
	picked, err := e.ExploreNetwork(root, "phone", sc)
	require.NoError(t, err)
	back, err := e.RestartExploration(picked, root)
	require.NoError(t, err)

	again, err := e.BeginExploration(back, sc)
	require.NoError(t, err)
	assert.Equal(t, []string{"phone"}, again.Exploration.ExploredNetworkIDs)
}

func TestScenarioExplorable(t *testing.T) {
	assert.True(t, cafeScenario().Explorable())
	assert.False(t, (&scenario.Scenario{RootSceneID: "x"}).Explorable())
}
