package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jwebster45206/hotspot-trainer/internal/archive"
	"github.com/jwebster45206/hotspot-trainer/internal/metrics"
	"github.com/jwebster45206/hotspot-trainer/pkg/engine"
	"github.com/jwebster45206/hotspot-trainer/pkg/grading"
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
	"github.com/jwebster45206/hotspot-trainer/pkg/storage"
)

var fixedNow = time.Date(2026, 5, 2, 14, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// libraryScenario: arrival -> select -> task -> outcome -> debrief -> done.
func libraryScenario() *scenario.Scenario {
	return &scenario.Scenario{
		ID:             "library",
		Title:          "Public Library",
		TitleKey:       "scenarios.library.title",
		Difficulty:     scenario.DifficultyBeginner,
		StartSceneID:   "arrival",
		RootSceneID:    "select",
		RootNetworkIDs: []string{"lib_official", "lib_free"},
		Scenes: []scenario.Scene{
			{ID: "arrival", Type: scenario.SceneArrival, Title: "You arrive", TitleKey: "scenes.arrival.title", NextSceneID: "select"},
			{
				ID:   "select",
				Type: scenario.SceneNetworkSelection,
				Networks: []scenario.Network{
					{ID: "lib_official", SSID: "Library_Secure", IsSecured: true, SecurityType: "WPA2", RiskLevel: scenario.RiskSafe, VerifiedByStaff: true},
					{ID: "lib_free", SSID: "FREE_Library", RiskLevel: scenario.RiskSafe, IsTrap: true},
				},
				Choices: []scenario.Choice{
					{ActionID: "connect_lib_official", NextSceneID: "task"},
					{ActionID: "connect_lib_free", NextSceneID: "trap_outcome"},
				},
			},
			{
				ID:      "task",
				Type:    scenario.SceneTaskPrompt,
				Task:    &scenario.Task{Type: "email", SensitivityLevel: scenario.SensitivityMedium, Title: "Check your email"},
				Actions: []scenario.Action{{ID: "vpn", Type: scenario.ActionUseVPN, Label: "Turn on VPN"}},
				Choices: []scenario.Choice{{ActionID: "vpn", NextSceneID: "safe_outcome"}},
			},
			{
				ID: "safe_outcome", Type: scenario.SceneConsequence, NextSceneID: "debrief",
				Consequence: &scenario.Consequence{
					Severity: scenario.SeveritySuccess, Type: "vpn_protected", SafetyPointsChange: 10,
					CascadingEffects: []scenario.CascadingEffect{
						{Order: 2, Icon: "mail", Text: "Your inbox stays private."},
						{Order: 1, Icon: "lock", Text: "Traffic is encrypted."},
					},
				},
			},
			{
				ID: "trap_outcome", Type: scenario.SceneConsequence, NextSceneID: "debrief",
				Consequence: &scenario.Consequence{Severity: scenario.SeverityDanger, Type: "credential_harvested", RiskPointsChange: 15},
			},
			{ID: "debrief", Type: scenario.SceneDebrief, NextSceneID: "done"},
			{ID: "done", Type: scenario.SceneCompletion},
		},
	}
}

func testBadges() *grading.BadgeCatalog {
	return grading.NewBadgeCatalog(
		state.Badge{ID: grading.BadgeVPNMaster, Name: "VPN Master", Icon: "shield"},
		state.Badge{ID: grading.BadgePerfectScore, Name: "Perfect Score", Icon: "star"},
	)
}

// fakeArchive records completions in memory and rejects repeats the way
// the SQLite store does.
type fakeArchive struct {
	mu      sync.Mutex
	records []archive.Completion
	err     error
}

func (f *fakeArchive) RecordCompletion(ctx context.Context, c archive.Completion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, r := range f.records {
		if r.SessionID == c.SessionID {
			return archive.ErrDuplicate
		}
	}
	f.records = append(f.records, c)
	return nil
}

func (f *fakeArchive) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// mapTranslator resolves keys for a single locale.
type mapTranslator struct {
	tag   language.Tag
	texts map[string]string
}

func (m mapTranslator) Translate(tag language.Tag, key string) (string, bool) {
	if tag != m.tag {
		return "", false
	}
	s, ok := m.texts[key]
	return s, ok
}

type testEnv struct {
	handler *SessionHandler
	store   *storage.MockStorage
	archive *fakeArchive
	metrics *metrics.Registry
	catalog *scenario.Catalog
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:   storage.NewMockStorage(),
		archive: &fakeArchive{},
		metrics: metrics.NewRegistry(),
		catalog: scenario.NewCatalog(libraryScenario()),
	}
	env.handler = NewSessionHandler(quietLogger(), SessionDeps{
		Storage:   env.store,
		Engine:    engine.New(testBadges()).WithClock(func() time.Time { return fixedNow }),
		Scenarios: env.catalog,
		Archive:   env.archive,
		Metrics:   env.metrics,
		Translator: mapTranslator{
			tag:   language.Spanish,
			texts: map[string]string{"scenes.arrival.title": "Llegas", "tips.use_vpn": "Usa una VPN."},
		},
		HistoryLimit: 5,
	})
	return env
}

// do sends a request with an optional JSON body and header pairs.
func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// create starts a library session and returns it.
func (e *testEnv) create(t *testing.T) state.GameSession {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/v1/sessions", map[string]string{"scenarioId": "library"}, UserIDHeader, "learner-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[SessionResponse](t, rec).Session
}

func sessionPath(id uuid.UUID, op string) string {
	p := "/v1/sessions/" + id.String()
	if op != "" {
		p += "/" + op
	}
	return p
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.Counter.GetValue()
}
