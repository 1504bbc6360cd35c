package runner

import (
	"time"

	"github.com/google/uuid"
)

// Step operations. Each maps to one session endpoint.
const (
	OpGet            = "get"
	OpAdvance        = "advance"
	OpNetwork        = "network"
	OpAction         = "action"
	OpUndo           = "undo"
	OpTimer          = "timer"
	OpExplore        = "explore"
	OpExploreRestart = "explore_restart"
	OpExploreFinal   = "explore_final"
	OpComplete       = "complete"
	OpTips           = "tips"
)

// TestSuite is one scripted play-through, or a sequence naming other case
// files.
type TestSuite struct {
	Name       string     `json:"name"`
	Scenario   string     `json:"scenario,omitempty"`
	Difficulty string     `json:"difficulty,omitempty"`
	Language   string     `json:"language,omitempty"` // sent as Accept-Language
	Steps      []TestStep `json:"steps,omitempty"`
	Cases      []string   `json:"cases,omitempty"`

	// ExpectArchived waits for the run to show up in /v1/stats after the
	// last step. Use it for suites that complete the session.
	ExpectArchived bool `json:"expect_archived,omitempty"`
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one request and what its response must look like.
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Op           string       `json:"op"`
	ID           string       `json:"id,omitempty"` // network or action id
	Expectations Expectations `json:"expect"`
}

// Expectations are checked against the response of a step. Unset fields
// are not checked.
type Expectations struct {
	Status *int `json:"status,omitempty"` // defaults to 200

	SceneID          *string  `json:"scene_id,omitempty"`
	SceneType        *string  `json:"scene_type,omitempty"`
	SceneTitle       *string  `json:"scene_title,omitempty"`
	SafetyPoints     *int     `json:"safety_points,omitempty"`
	RiskPoints       *int     `json:"risk_points,omitempty"`
	DecisionsCount   *int     `json:"decisions_count,omitempty"`
	CorrectDecisions *int     `json:"correct_decisions,omitempty"`
	VPNEnabled       *bool    `json:"vpn_enabled,omitempty"`
	Grade            *string  `json:"grade,omitempty"`
	Terminal         *bool    `json:"terminal,omitempty"`
	Completed        *bool    `json:"completed,omitempty"`
	CanUndo          *bool    `json:"can_undo,omitempty"`
	Badges           []string `json:"badges,omitempty"` // full set, order independent
	Explored         []string `json:"explored,omitempty"`

	Tips          []string `json:"tips,omitempty"` // tip ids that must be present
	ErrorContains string   `json:"error_contains,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job       TestJob
	Results   []TestResult
	Error     error
	Duration  time.Duration
	SessionID uuid.UUID
}
