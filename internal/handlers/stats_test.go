package handlers

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/hotspot-trainer/internal/archive"
	"github.com/jwebster45206/hotspot-trainer/pkg/engine"
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

// archivedSession plays a library session for userID to completion with
// the given extra risk.
func archivedSession(t *testing.T, store *archive.Store, userID string, risk int) {
	t.Helper()
	e := engine.New(testBadges())
	gs, err := e.CreateSession("library", "", scenario.NewCatalog(libraryScenario()))
	require.NoError(t, err)
	gs.UserID = userID
	gs, err = state.ApplyPatch(gs, state.SessionPatch{SafetyPointsDelta: 20, RiskPointsDelta: risk})
	require.NoError(t, err)
	gs = e.Complete(gs)

	c, err := archive.CompletionFromSession(gs)
	require.NoError(t, err)
	require.NoError(t, store.RecordCompletion(t.Context(), c))
}

func TestStatsHandler(t *testing.T) {
	store, err := archive.NewStore(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	archivedSession(t, store, "ana", 0)
	archivedSession(t, store, "ana", 20)
	archivedSession(t, store, "ben", 0)

	h := NewStatsHandler(quietLogger(), store)

	t.Run("all users", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[StatsResponse](t, rec)
		assert.Equal(t, 3, resp.Completions)
		assert.Equal(t, 3, resp.ScenarioCounts["library"])
		assert.Len(t, resp.Recent, 3)
	})

	t.Run("one user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/stats?recent=1", nil)
		req.Header.Set(UserIDHeader, "ana")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decode[StatsResponse](t, rec)
		assert.Equal(t, 2, resp.Completions)
		assert.Equal(t, 1, resp.GradeCounts["A"])
		assert.Equal(t, 1, resp.GradeCounts["D"])
		assert.InDelta(t, 10.0, resp.AverageRisk, 0.001)
		assert.Len(t, resp.Recent, 1)
	})

	t.Run("no recent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stats?recent=0", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[StatsResponse](t, rec).Recent)
	})

	t.Run("bad recent", func(t *testing.T) {
		for _, q := range []string{"-1", "500", "lots"} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/stats?recent="+q, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		}
	})

	t.Run("method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/stats", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
