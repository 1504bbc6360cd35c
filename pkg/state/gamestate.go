package state

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
)

// Score is the two-axis tally of a run. Both point counters only grow
// within a run.
type Score struct {
	SafetyPoints     int `json:"safetyPoints"`
	RiskPoints       int `json:"riskPoints"`
	DecisionsCount   int `json:"decisionsCount"`
	CorrectDecisions int `json:"correctDecisions"`
}

// Record adds one scored decision.
func (s *Score) Record(safety, risk int, correct bool) {
	s.SafetyPoints += max(safety, 0)
	s.RiskPoints += max(risk, 0)
	s.DecisionsCount++
	if correct {
		s.CorrectDecisions++
	}
}

// Badge is an achievement. Metadata comes from the badge catalog; EarnedAt
// is set when a session unlocks it.
type Badge struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name,omitempty" yaml:"name"`
	NameKey     string     `json:"nameKey,omitempty" yaml:"nameKey,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description"`
	Icon        string     `json:"icon,omitempty" yaml:"icon"`
	EarnedAt    *time.Time `json:"earnedAt,omitempty" yaml:"-"`
}

// GameSession is one play-through of a scenario. It is a plain value:
// resolver functions return a new session and never modify their input.
type GameSession struct {
	ID                uuid.UUID           `json:"id"`                       // Unique ID per session
	UserID            string              `json:"userId,omitempty"`         // Owner of the run, if authenticated
	ScenarioID        string              `json:"scenarioId"`               // Scenario being played
	CurrentSceneID    string              `json:"currentSceneId"`           // Scene the player is on
	Difficulty        scenario.Difficulty `json:"difficulty"`               // Difficulty chosen at creation
	Score             Score               `json:"score"`                    // Accumulated score
	SelectedNetworkID string              `json:"selectedNetworkId,omitempty"`
	VPNEnabled        bool                `json:"vpnEnabled"`               // Sticky once set
	CompletedSceneIDs []string            `json:"completedSceneIds"`        // Scenes already scored
	Badges            []Badge             `json:"badges"`                   // Unique by ID, append-only
	Exploration       *Exploration        `json:"exploration,omitempty"`    // Explore-then-commit bookkeeping
	StartedAt         time.Time           `json:"startedAt"`
	CompletedAt       *time.Time          `json:"completedAt,omitempty"`
}

// NewGameSession creates a fresh session positioned on startSceneID.
func NewGameSession(scenarioID string, difficulty scenario.Difficulty, startSceneID string, now time.Time) GameSession {
	return GameSession{
		ID:                uuid.New(),
		ScenarioID:        scenarioID,
		CurrentSceneID:    startSceneID,
		Difficulty:        difficulty,
		CompletedSceneIDs: make([]string, 0),
		Badges:            make([]Badge, 0),
		StartedAt:         now.UTC(),
	}
}

// Clone returns a deep copy that shares no mutable memory with gs.
func (gs GameSession) Clone() GameSession {
	out := gs
	out.CompletedSceneIDs = slices.Clone(gs.CompletedSceneIDs)
	if out.CompletedSceneIDs == nil {
		out.CompletedSceneIDs = make([]string, 0)
	}
	out.Badges = make([]Badge, len(gs.Badges))
	for i, b := range gs.Badges {
		out.Badges[i] = b
		if b.EarnedAt != nil {
			t := *b.EarnedAt
			out.Badges[i].EarnedAt = &t
		}
	}
	if gs.Exploration != nil {
		e := gs.Exploration.clone()
		out.Exploration = &e
	}
	if gs.CompletedAt != nil {
		t := *gs.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// IsCompleted reports whether the session has been finalized.
func (gs *GameSession) IsCompleted() bool {
	return gs.CompletedAt != nil
}

// HasCompletedScene reports whether sceneID has already been scored.
func (gs *GameSession) HasCompletedScene(sceneID string) bool {
	return slices.Contains(gs.CompletedSceneIDs, sceneID)
}

// MarkSceneCompleted records sceneID as scored. Repeats are ignored.
func (gs *GameSession) MarkSceneCompleted(sceneID string) {
	if sceneID == "" || gs.HasCompletedScene(sceneID) {
		return
	}
	gs.CompletedSceneIDs = append(gs.CompletedSceneIDs, sceneID)
}

// HasBadge reports whether a badge with the given ID is held.
func (gs *GameSession) HasBadge(id string) bool {
	return slices.ContainsFunc(gs.Badges, func(b Badge) bool { return b.ID == id })
}

// AddBadge appends b unless a badge with the same ID is already held.
// It reports whether the badge was added.
func (gs *GameSession) AddBadge(b Badge) bool {
	if b.ID == "" || gs.HasBadge(b.ID) {
		return false
	}
	gs.Badges = append(gs.Badges, b)
	return true
}

// Exploration tracks the explore-every-root-network-first mode.
type Exploration struct {
	RootSceneID        string   `json:"rootSceneId"`
	RootNetworkIDs     []string `json:"rootNetworkIds"`
	ExploredNetworkIDs []string `json:"exploredNetworkIds"`
	Active             bool     `json:"active"` // false once the final run has begun
}

// NewExploration starts tracking the given root networks.
func NewExploration(rootSceneID string, rootNetworkIDs []string) Exploration {
	return Exploration{
		RootSceneID:        rootSceneID,
		RootNetworkIDs:     slices.Clone(rootNetworkIDs),
		ExploredNetworkIDs: make([]string, 0, len(rootNetworkIDs)),
		Active:             true,
	}
}

// MarkExplored records a pick of networkID. Unknown and repeated IDs are
// ignored, so the explored count never exceeds the root count.
func (e *Exploration) MarkExplored(networkID string) bool {
	if !slices.Contains(e.RootNetworkIDs, networkID) || slices.Contains(e.ExploredNetworkIDs, networkID) {
		return false
	}
	e.ExploredNetworkIDs = append(e.ExploredNetworkIDs, networkID)
	return true
}

// AllNetworksExplored reports whether every root network has been picked.
func (e *Exploration) AllNetworksExplored() bool {
	for _, id := range e.RootNetworkIDs {
		if !slices.Contains(e.ExploredNetworkIDs, id) {
			return false
		}
	}
	return true
}

// Remaining returns the root networks not yet explored, in root order.
func (e *Exploration) Remaining() []string {
	out := make([]string, 0, len(e.RootNetworkIDs))
	for _, id := range e.RootNetworkIDs {
		if !slices.Contains(e.ExploredNetworkIDs, id) {
			out = append(out, id)
		}
	}
	return out
}

func (e Exploration) clone() Exploration {
	e.RootNetworkIDs = slices.Clone(e.RootNetworkIDs)
	e.ExploredNetworkIDs = slices.Clone(e.ExploredNetworkIDs)
	return e
}
