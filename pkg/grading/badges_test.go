package grading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

var completedAt = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func ids(badges []state.Badge) []string {
	out := make([]string, 0, len(badges))
	for _, b := range badges {
		out = append(out, b.ID)
	}
	return out
}

func TestCompleteSession(t *testing.T) {
	catalog := NewBadgeCatalog(
		state.Badge{ID: BadgePerfectScore, Name: "Perfect Score"},
		state.Badge{ID: BadgeSecurityAware, Name: "Security Aware"},
	)

	tests := []struct {
		name       string
		risk       int
		held       []state.Badge
		wantBadges []string
	}{
		{name: "no risk earns both", risk: 0, wantBadges: []string{BadgePerfectScore, BadgeSecurityAware}},
		{name: "low risk", risk: 19, wantBadges: []string{BadgeSecurityAware}},
		{name: "risk at limit", risk: 20, wantBadges: []string{}},
		{
			name:       "already held not duplicated",
			risk:       0,
			held:       []state.Badge{{ID: BadgeSecurityAware}},
			wantBadges: []string{BadgeSecurityAware, BadgePerfectScore},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := state.NewGameSession("cafe", "beginner", "start", completedAt)
			gs.Score.RiskPoints = tt.risk
			gs.Badges = append(gs.Badges, tt.held...)

			got := CompleteSession(gs, catalog, completedAt)
			require.NotNil(t, got.CompletedAt)
			assert.True(t, got.CompletedAt.Equal(completedAt))
			assert.Equal(t, tt.wantBadges, ids(got.Badges))
			assert.Nil(t, gs.CompletedAt)
		})
	}
}

func TestCompleteSession_Idempotent(t *testing.T) {
	gs := state.NewGameSession("cafe", "beginner", "start", completedAt)
	first := CompleteSession(gs, nil, completedAt)
	second := CompleteSession(first, nil, completedAt.Add(time.Hour))

	assert.Equal(t, *first.CompletedAt, *second.CompletedAt)
	assert.Len(t, second.Badges, 2)
}

func TestAward_UnknownBadgeIsBare(t *testing.T) {
	gs := state.NewGameSession("cafe", "beginner", "start", completedAt)
	require.True(t, Award(&gs, NewBadgeCatalog(), "mystery", completedAt))
	assert.Equal(t, "mystery", gs.Badges[0].ID)
	assert.Empty(t, gs.Badges[0].Name)
	assert.False(t, Award(&gs, nil, "mystery", completedAt))
}

func TestBadgeCatalog_Replace(t *testing.T) {
	c := NewBadgeCatalog(state.Badge{ID: "a", Name: "A"})
	old := c.List()

	c.Replace([]state.Badge{{ID: "b", Name: "B"}, {ID: "c"}, {ID: ""}})
	_, ok := c.Lookup("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"b", "c"}, ids(c.List()))
	assert.Equal(t, []string{"a"}, ids(old), "earlier listings are unaffected")
}
