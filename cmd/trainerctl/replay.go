package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jwebster45206/hotspot-trainer/pkg/engine"
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

// Script is a recorded play-through: a scenario and the decisions made in
// it, in order.
type Script struct {
	ScenarioID string `json:"scenarioId"`
	Difficulty string `json:"difficulty,omitempty"`
	Steps      []Step `json:"steps"`
}

// Step is one player input. ID names the network or action where Op needs
// one.
type Step struct {
	Op string `json:"op"`
	ID string `json:"id,omitempty"`
}

const (
	opAdvance        = "advance"
	opNetwork        = "network"
	opAction         = "action"
	opUndo           = "undo"
	opTimer          = "timer"
	opExplore        = "explore"
	opExploreRestart = "explore_restart"
	opExploreFinal   = "explore_final"
)

var errNothingToUndo = errors.New("nothing to undo")

func loadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if s.ScenarioID == "" {
		return nil, fmt.Errorf("%s: scenarioId is required", path)
	}
	return &s, nil
}

// Replayer drives one session through a script the way the API would,
// with an in-memory undo stack and root snapshot.
type Replayer struct {
	engine    *engine.Engine
	scenarios engine.ScenarioLookup
	history   *engine.History
}

func NewReplayer(e *engine.Engine, scenarios engine.ScenarioLookup, historyLimit int) *Replayer {
	return &Replayer{engine: e, scenarios: scenarios, history: engine.NewHistory(historyLimit)}
}

// Run plays every step and completes the session. A failing step stops the
// replay; the error names the step.
func (r *Replayer) Run(s *Script) (state.GameSession, error) {
	gs, err := r.engine.CreateSession(s.ScenarioID, scenario.Difficulty(s.Difficulty), r.scenarios)
	if err != nil {
		return gs, err
	}
	sc, _ := r.scenarios.Lookup(gs.ScenarioID)

	var root *state.GameSession
	for i, step := range s.Steps {
		gs, root, err = r.step(gs, root, sc, step)
		if err != nil {
			return gs, fmt.Errorf("step %d (%s %s): %w", i+1, step.Op, step.ID, err)
		}
	}
	return r.engine.Complete(gs), nil
}

func (r *Replayer) step(gs state.GameSession, root *state.GameSession, sc *scenario.Scenario, step Step) (state.GameSession, *state.GameSession, error) {
	switch step.Op {
	case opAdvance:
		next, err := r.engine.Advance(gs, sc)
		return next, root, err

	case opNetwork:
		next, err := r.engine.ResolveNetworkByID(gs, step.ID, sc)
		if err == nil {
			r.history.Record(gs, sc)
		}
		return next, root, err

	case opAction:
		next, err := r.engine.ResolveAction(gs, step.ID, sc)
		if err == nil {
			r.history.Record(gs, sc)
		}
		return next, root, err

	case opUndo:
		prev, ok := r.history.Undo()
		if !ok {
			return gs, root, errNothingToUndo
		}
		return prev, root, nil

	case opTimer:
		next, err := r.engine.Patch(gs, state.TimerExpiredPatch(), sc)
		return next, root, err

	case opExplore:
		if root == nil {
			started, err := r.engine.BeginExploration(gs, sc)
			if err != nil {
				return gs, root, err
			}
			root, gs = &started, started
		}
		next, err := r.engine.ExploreNetwork(gs, step.ID, sc)
		return next, root, err

	case opExploreRestart, opExploreFinal:
		if root == nil {
			return gs, root, fmt.Errorf("%w: exploration not started", engine.ErrInvalidState)
		}
		reset := r.engine.RestartExploration
		if step.Op == opExploreFinal {
			reset = r.engine.BeginFinalRun
		}
		next, err := reset(gs, *root)
		if err != nil {
			return gs, root, err
		}
		r.history.Reset()
		return next, root, nil

	default:
		return gs, root, fmt.Errorf("unknown op %q", step.Op)
	}
}
