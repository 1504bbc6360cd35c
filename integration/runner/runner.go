package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/hotspot-trainer/internal/handlers"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner plays scripted sessions against a running trainer API.
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
	ScenarioOverride  string // If set, overrides the scenario for all test cases

	// UserID is sent as X-User-ID. Empty means a fresh id per suite, which
	// keeps archive expectations isolated between runs.
	UserID string
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 30 * time.Second},
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}
	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}
	return jobs, nil
}

// RunSuite creates a session and runs every step of suite against it.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job:     TestJob{Name: suite.Name, Suite: suite},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}
	fail := func(err error) (TestRunResult, error) {
		result.Error = err
		result.Duration = time.Since(start)
		return result, err
	}

	userID := r.UserID
	if userID == "" {
		userID = "integration-" + uuid.NewString()[:8]
	}

	var baseline int
	if suite.ExpectArchived {
		n, err := GetCompletions(ctx, r.Client, r.BaseURL, userID)
		if err != nil {
			return fail(fmt.Errorf("failed to read archive baseline: %w", err))
		}
		baseline = n
	}

	scenarioID := suite.Scenario
	if r.ScenarioOverride != "" {
		scenarioID = r.ScenarioOverride
	}
	sessionID, err := r.createSession(ctx, userID, scenarioID, suite.Difficulty)
	if err != nil {
		return fail(fmt.Errorf("failed to create session: %w", err))
	}
	result.SessionID = sessionID

	for i, step := range suite.Steps {
		stepResult := r.runStep(ctx, sessionID, userID, suite.Language, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), stepResult.StepName, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i+1, stepResult.StepName, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}
		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), stepResult.StepName, stepResult.Duration)
	}

	if suite.ExpectArchived && result.Error == nil {
		if err := WaitForArchive(ctx, r.Client, r.BaseURL, userID, baseline+1); err != nil {
			result.Error = err
		}
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) createSession(ctx context.Context, userID, scenarioID, difficulty string) (uuid.UUID, error) {
	body := map[string]string{"scenarioId": scenarioID}
	if difficulty != "" {
		body["difficulty"] = difficulty
	}

	status, data, err := r.send(ctx, http.MethodPost, r.BaseURL+"/v1/sessions", userID, "", body)
	if err != nil {
		return uuid.Nil, err
	}
	if status != http.StatusCreated {
		return uuid.Nil, fmt.Errorf("create returned %d (expected 201): %s", status, strings.TrimSpace(string(data)))
	}

	var resp handlers.SessionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return uuid.Nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return resp.Session.ID, nil
}

func (r *Runner) runStep(ctx context.Context, sessionID uuid.UUID, userID, lang string, step TestStep) TestResult {
	res := TestResult{StepName: step.Name}
	if res.StepName == "" {
		res.StepName = strings.TrimSpace(step.Op + " " + step.ID)
	}

	start := time.Now()
	err := r.executeStep(ctx, sessionID, userID, lang, step)
	res.Duration = time.Since(start)
	res.Error = err
	res.Success = err == nil
	return res
}

func (r *Runner) executeStep(ctx context.Context, sessionID uuid.UUID, userID, lang string, step TestStep) error {
	method, path, body, err := stepRequest(step)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/v1/sessions/%s%s", r.BaseURL, sessionID, path)
	status, data, err := r.send(ctx, method, url, userID, lang, body)
	if err != nil {
		return err
	}
	return checkExpectations(step, status, data)
}

// stepRequest maps an op onto the endpoint that performs it.
func stepRequest(step TestStep) (method, path string, body any, err error) {
	switch step.Op {
	case OpGet:
		return http.MethodGet, "", nil, nil
	case OpTips:
		return http.MethodGet, "/tips", nil, nil
	case OpAdvance, OpUndo, OpComplete:
		return http.MethodPost, "/" + step.Op, nil, nil
	case OpNetwork:
		return http.MethodPost, "/network", map[string]string{"networkId": step.ID}, nil
	case OpAction:
		return http.MethodPost, "/action", map[string]string{"actionId": step.ID}, nil
	case OpExplore:
		return http.MethodPost, "/explore", map[string]string{"networkId": step.ID}, nil
	case OpExploreRestart:
		return http.MethodPost, "/explore/restart", nil, nil
	case OpExploreFinal:
		return http.MethodPost, "/explore/final", nil, nil
	case OpTimer:
		return http.MethodPatch, "", map[string]bool{"timerExpired": true}, nil
	default:
		return "", "", nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func (r *Runner) send(ctx context.Context, method, url, userID, lang string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(handlers.UserIDHeader, userID)
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func checkExpectations(step TestStep, status int, data []byte) error {
	exp := step.Expectations

	want := http.StatusOK
	if exp.Status != nil {
		want = *exp.Status
	}
	if status != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, status, strings.TrimSpace(string(data)))
	}

	if status >= http.StatusBadRequest {
		if exp.ErrorContains == "" {
			return nil
		}
		var e handlers.ErrorResponse
		if err := json.Unmarshal(data, &e); err != nil {
			return fmt.Errorf("failed to decode error body: %w", err)
		}
		if !strings.Contains(e.Error, exp.ErrorContains) {
			return fmt.Errorf("expected error containing %q, got %q", exp.ErrorContains, e.Error)
		}
		return nil
	}

	if step.Op == OpTips {
		var tips []handlers.TipView
		if err := json.Unmarshal(data, &tips); err != nil {
			return fmt.Errorf("failed to decode tips: %w", err)
		}
		return checkTips(exp.Tips, tips)
	}

	var resp handlers.CompleteResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to decode session: %w", err)
	}
	gs := resp.Session

	var mismatches []string
	mismatch := func(field string, want, got any) {
		mismatches = append(mismatches, fmt.Sprintf("%s: expected %v, got %v", field, want, got))
	}

	if exp.SceneID != nil && *exp.SceneID != gs.CurrentSceneID {
		mismatch("scene_id", *exp.SceneID, gs.CurrentSceneID)
	}
	var sceneType, sceneTitle string
	if resp.Scene != nil {
		sceneType, sceneTitle = string(resp.Scene.Type), resp.Scene.Title
	}
	if exp.SceneType != nil && *exp.SceneType != sceneType {
		mismatch("scene_type", *exp.SceneType, sceneType)
	}
	if exp.SceneTitle != nil && *exp.SceneTitle != sceneTitle {
		mismatch("scene_title", *exp.SceneTitle, sceneTitle)
	}
	if exp.SafetyPoints != nil && *exp.SafetyPoints != gs.Score.SafetyPoints {
		mismatch("safety_points", *exp.SafetyPoints, gs.Score.SafetyPoints)
	}
	if exp.RiskPoints != nil && *exp.RiskPoints != gs.Score.RiskPoints {
		mismatch("risk_points", *exp.RiskPoints, gs.Score.RiskPoints)
	}
	if exp.DecisionsCount != nil && *exp.DecisionsCount != gs.Score.DecisionsCount {
		mismatch("decisions_count", *exp.DecisionsCount, gs.Score.DecisionsCount)
	}
	if exp.CorrectDecisions != nil && *exp.CorrectDecisions != gs.Score.CorrectDecisions {
		mismatch("correct_decisions", *exp.CorrectDecisions, gs.Score.CorrectDecisions)
	}
	if exp.VPNEnabled != nil && *exp.VPNEnabled != gs.VPNEnabled {
		mismatch("vpn_enabled", *exp.VPNEnabled, gs.VPNEnabled)
	}
	if exp.Grade != nil && *exp.Grade != resp.Grade.Grade {
		mismatch("grade", *exp.Grade, resp.Grade.Grade)
	}
	if exp.Terminal != nil && *exp.Terminal != resp.Terminal {
		mismatch("terminal", *exp.Terminal, resp.Terminal)
	}
	if exp.Completed != nil && *exp.Completed != gs.IsCompleted() {
		mismatch("completed", *exp.Completed, gs.IsCompleted())
	}
	if exp.CanUndo != nil && *exp.CanUndo != resp.CanUndo {
		mismatch("can_undo", *exp.CanUndo, resp.CanUndo)
	}
	if exp.Badges != nil {
		got := make([]string, 0, len(gs.Badges))
		for _, b := range gs.Badges {
			got = append(got, b.ID)
		}
		if !sameSet(exp.Badges, got) {
			mismatch("badges", exp.Badges, got)
		}
	}
	if exp.Explored != nil {
		var got []string
		if gs.Exploration != nil {
			got = gs.Exploration.ExploredNetworkIDs
		}
		if !sameSet(exp.Explored, got) {
			mismatch("explored", exp.Explored, got)
		}
	}
	if len(exp.Tips) > 0 {
		if err := checkTips(exp.Tips, resp.Tips); err != nil {
			mismatches = append(mismatches, err.Error())
		}
	}

	if len(mismatches) > 0 {
		return errors.New(strings.Join(mismatches, "; "))
	}
	return nil
}

func checkTips(want []string, tips []handlers.TipView) error {
	for _, id := range want {
		if !slices.ContainsFunc(tips, func(t handlers.TipView) bool { return string(t.ID) == id }) {
			return fmt.Errorf("tips: expected %q among %d tips", id, len(tips))
		}
	}
	return nil
}

func sameSet(want, got []string) bool {
	a, b := slices.Clone(want), slices.Clone(got)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}
