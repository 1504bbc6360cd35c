package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/hotspot-trainer/internal/archive"
	"github.com/jwebster45206/hotspot-trainer/internal/logger"
	"github.com/jwebster45206/hotspot-trainer/internal/metrics"
	"github.com/jwebster45206/hotspot-trainer/internal/validation"
	"github.com/jwebster45206/hotspot-trainer/pkg/engine"
	"github.com/jwebster45206/hotspot-trainer/pkg/grading"
	"github.com/jwebster45206/hotspot-trainer/pkg/scenario"
	"github.com/jwebster45206/hotspot-trainer/pkg/state"
	"github.com/jwebster45206/hotspot-trainer/pkg/storage"
)

// CompletionRecorder archives finished runs.
type CompletionRecorder interface {
	RecordCompletion(ctx context.Context, c archive.Completion) error
}

// SessionDeps are the collaborators of SessionHandler. Archive, Metrics
// and Translator are optional.
type SessionDeps struct {
	Storage      storage.Storage
	Engine       *engine.Engine
	Scenarios    engine.ScenarioLookup
	Archive      CompletionRecorder
	Metrics      *metrics.Registry
	Translator   scenario.Translator
	HistoryLimit int
}

// SessionHandler serves /v1/sessions and everything below it:
//
//	POST   /v1/sessions
//	GET    /v1/sessions/{id}
//	PATCH  /v1/sessions/{id}
//	DELETE /v1/sessions/{id}
//	POST   /v1/sessions/{id}/{network,action,advance,undo,complete}
//	POST   /v1/sessions/{id}/explore[/restart|/final]
//	GET    /v1/sessions/{id}/tips
type SessionHandler struct {
	log          *slog.Logger
	storage      storage.Storage
	engine       *engine.Engine
	scenarios    engine.ScenarioLookup
	archive      CompletionRecorder
	metrics      *metrics.Registry
	tr           scenario.Translator
	historyLimit int
}

func NewSessionHandler(log *slog.Logger, deps SessionDeps) *SessionHandler {
	reg := deps.Metrics
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &SessionHandler{
		log:          log,
		storage:      deps.Storage,
		engine:       deps.Engine,
		scenarios:    deps.Scenarios,
		archive:      deps.Archive,
		metrics:      reg,
		tr:           deps.Translator,
		historyLimit: deps.HistoryLimit,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	if rest == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.handleCreate(w, r)
		return
	}

	rawID, op, _ := strings.Cut(rest, "/")
	id, err := uuid.Parse(rawID)
	if err != nil {
		writeError(w, h.log, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	if op == "" {
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, id)
		case http.MethodPatch:
			h.handlePatch(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	if op == "tips" {
		if r.Method != http.MethodGet {
			writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.handleTips(w, r, id)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	switch op {
	case "network":
		h.handleNetwork(w, r, id)
	case "action":
		h.handleAction(w, r, id)
	case "advance":
		h.handleAdvance(w, r, id)
	case "undo":
		h.handleUndo(w, r, id)
	case "explore":
		h.handleExplore(w, r, id)
	case "explore/restart":
		h.handleExploreReset(w, r, id, false)
	case "explore/final":
		h.handleExploreReset(w, r, id, true)
	case "complete":
		h.handleComplete(w, r, id)
	default:
		writeError(w, h.log, http.StatusNotFound, "Unknown session operation")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req validation.CreateSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if err := validation.ValidateCreateSession(&req); err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	gs, err := h.engine.CreateSession(req.ScenarioID, scenario.Difficulty(req.Difficulty), h.scenarios)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	gs.UserID = r.Header.Get(UserIDHeader)

	if err := h.storage.SaveSession(r.Context(), &gs); err != nil {
		writeDomainError(w, h.log, fmt.Errorf("save session: %w", err))
		return
	}

	h.metrics.RecordSessionCreated(gs.ScenarioID, string(gs.Difficulty))
	logger.WithSession(h.log, gs.ID, gs.ScenarioID).Info("Session created",
		"difficulty", gs.Difficulty,
		"user_id", gs.UserID)
	writeJSON(w, h.log, http.StatusCreated, h.view(r, gs))
}

func (h *SessionHandler) handleGet(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs, err := h.load(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, h.view(r, *gs))
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	if _, err := h.load(ctx, id); err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	if err := h.storage.DeleteSession(ctx, id); err != nil {
		writeDomainError(w, h.log, fmt.Errorf("delete session: %w", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handlePatch(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req validation.PatchSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	p, err := validation.ValidatePatch(&req)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	next, err := storage.PatchSession(r.Context(), h.storage, id, func(gs state.GameSession) (state.GameSession, error) {
		sc, err := h.scenarioFor(gs)
		if err != nil {
			return gs, err
		}
		return h.engine.Patch(gs, p, sc)
	})
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	if req.TimerExpired {
		h.metrics.TimerExpirations.Inc()
	}
	logger.WithSession(h.log, next.ID, next.ScenarioID).Info("Session patched",
		"reason", p.Reason,
		"risk_delta", p.RiskPointsDelta,
		"safety_delta", p.SafetyPointsDelta)
	writeJSON(w, h.log, http.StatusOK, h.view(r, *next))
}

func (h *SessionHandler) handleNetwork(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req validation.NetworkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if err := validation.ValidateNetwork(&req); err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	h.decide(w, r, id, "network", func(gs state.GameSession, sc *scenario.Scenario) (state.GameSession, error) {
		return h.engine.ResolveNetworkByID(gs, req.NetworkID, sc)
	})
}

func (h *SessionHandler) handleAction(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req validation.ActionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if err := validation.ValidateAction(&req); err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	h.decide(w, r, id, "action", func(gs state.GameSession, sc *scenario.Scenario) (state.GameSession, error) {
		return h.engine.ResolveAction(gs, req.ActionID, sc)
	})
}

// decide runs one player decision. The pre-decision session is pushed onto
// the undo stack when it sits on a decision scene, and popped again if the
// decision is not saved.
func (h *SessionHandler) decide(w http.ResponseWriter, r *http.Request, id uuid.UUID, kind string,
	resolve func(state.GameSession, *scenario.Scenario) (state.GameSession, error)) {
	ctx := r.Context()

	var before state.GameSession
	pushed := false
	next, err := storage.PatchSession(ctx, h.storage, id, func(gs state.GameSession) (state.GameSession, error) {
		sc, err := h.scenarioFor(gs)
		if err != nil {
			return gs, err
		}
		out, err := resolve(gs, sc)
		if err != nil {
			return gs, err
		}
		if engine.ShouldSnapshot(gs, sc) {
			if err := h.storage.PushSnapshot(ctx, &gs, h.historyLimit); err != nil {
				return gs, fmt.Errorf("push snapshot: %w", err)
			}
			pushed = true
		}
		before = gs
		return out, nil
	})
	if err != nil {
		if pushed {
			if _, perr := h.storage.PopSnapshot(context.WithoutCancel(ctx), id); perr != nil {
				h.log.Error("Failed to drop unsaved snapshot", "session_id", id, "error", perr)
			}
		}
		writeDomainError(w, h.log, err)
		return
	}

	h.recordDecision(kind, before, *next)
	writeJSON(w, h.log, http.StatusOK, h.view(r, *next))
}

// recordDecision counts the decision only if it was scored; revisits of a
// completed scene leave the tally alone.
func (h *SessionHandler) recordDecision(kind string, before, after state.GameSession) {
	if after.Score.DecisionsCount <= before.Score.DecisionsCount {
		return
	}
	correct := after.Score.CorrectDecisions > before.Score.CorrectDecisions
	h.metrics.RecordDecision(kind, correct)
	logger.WithSession(h.log, after.ID, after.ScenarioID).Debug("Decision scored",
		"kind", kind,
		"correct", correct,
		"scene_id", before.CurrentSceneID,
		"next_scene_id", after.CurrentSceneID)
}

func (h *SessionHandler) handleAdvance(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	next, err := storage.PatchSession(r.Context(), h.storage, id, func(gs state.GameSession) (state.GameSession, error) {
		sc, err := h.scenarioFor(gs)
		if err != nil {
			return gs, err
		}
		return h.engine.Advance(gs, sc)
	})
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, h.view(r, *next))
}

func (h *SessionHandler) handleUndo(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	gs, err := h.load(ctx, id)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	if gs.IsCompleted() {
		writeDomainError(w, h.log, state.ErrSessionCompleted)
		return
	}

	prev, err := h.storage.PopSnapshot(ctx, id)
	if err != nil {
		writeDomainError(w, h.log, fmt.Errorf("pop snapshot: %w", err))
		return
	}
	if prev == nil {
		writeDomainError(w, h.log, fmt.Errorf("%w: nothing to undo", engine.ErrInvalidState))
		return
	}
	if err := h.storage.SaveSession(ctx, prev); err != nil {
		writeDomainError(w, h.log, fmt.Errorf("save session: %w", err))
		return
	}

	h.metrics.UndoTotal.Inc()
	logger.WithSession(h.log, prev.ID, prev.ScenarioID).Info("Decision undone",
		"from_scene_id", gs.CurrentSceneID,
		"to_scene_id", prev.CurrentSceneID)
	writeJSON(w, h.log, http.StatusOK, h.view(r, *prev))
}

// handleExplore makes one exploration pick. The first pick switches the
// session into explore mode and stores the root snapshot.
func (h *SessionHandler) handleExplore(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req validation.NetworkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if err := validation.ValidateNetwork(&req); err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	ctx := r.Context()
	var before state.GameSession
	next, err := storage.PatchSession(ctx, h.storage, id, func(gs state.GameSession) (state.GameSession, error) {
		sc, err := h.scenarioFor(gs)
		if err != nil {
			return gs, err
		}
		if gs.Exploration != nil && !gs.Exploration.Active {
			return gs, fmt.Errorf("%w: final run already started", engine.ErrInvalidState)
		}
		if gs.Exploration == nil {
			started, err := h.engine.BeginExploration(gs, sc)
			if err != nil {
				return gs, err
			}
			if err := h.storage.SaveRootSnapshot(ctx, &started); err != nil {
				return gs, fmt.Errorf("save root snapshot: %w", err)
			}
			gs = started
		}
		before = gs
		return h.engine.ExploreNetwork(gs, req.NetworkID, sc)
	})
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	h.recordDecision("explore", before, *next)
	writeJSON(w, h.log, http.StatusOK, h.view(r, *next))
}

// handleExploreReset rewinds to the root snapshot, either to keep exploring
// or to start the scored final run. Either way the undo stack is emptied.
func (h *SessionHandler) handleExploreReset(w http.ResponseWriter, r *http.Request, id uuid.UUID, final bool) {
	ctx := r.Context()
	root, err := h.storage.LoadRootSnapshot(ctx, id)
	if err != nil {
		writeDomainError(w, h.log, fmt.Errorf("load root snapshot: %w", err))
		return
	}

	next, err := storage.PatchSession(ctx, h.storage, id, func(gs state.GameSession) (state.GameSession, error) {
		if gs.IsCompleted() {
			return gs, state.ErrSessionCompleted
		}
		if root == nil {
			return gs, fmt.Errorf("%w: exploration not started", engine.ErrInvalidState)
		}
		reset := h.engine.RestartExploration
		if final {
			reset = h.engine.BeginFinalRun
		}
		out, err := reset(gs, *root)
		if err != nil {
			return gs, err
		}
		// Undo never reaches back across a rewind to the root.
		if err := h.storage.ClearSnapshots(ctx, id); err != nil {
			return gs, fmt.Errorf("clear snapshots: %w", err)
		}
		return out, nil
	})
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	if final {
		logger.WithSession(h.log, next.ID, next.ScenarioID).Info("Final run started")
	}
	writeJSON(w, h.log, http.StatusOK, h.view(r, *next))
}

// handleComplete finalizes the session. Completing twice is harmless, but
// only the first call is archived and counted.
func (h *SessionHandler) handleComplete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()

	var first bool
	next, err := storage.PatchSession(ctx, h.storage, id, func(gs state.GameSession) (state.GameSession, error) {
		first = !gs.IsCompleted()
		return h.engine.Complete(gs), nil
	})
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	view := h.view(r, *next)
	if first {
		h.metrics.RecordCompletion(next.ScenarioID, view.Grade.Grade)
		h.archiveCompletion(ctx, *next)
		logger.WithSession(h.log, next.ID, next.ScenarioID).Info("Session completed",
			"grade", view.Grade.Grade,
			"safety_points", next.Score.SafetyPoints,
			"risk_points", next.Score.RiskPoints,
			"badges", len(next.Badges))
	}

	tag := scenario.NegotiateLanguage(r.Header.Get("Accept-Language"))
	writeJSON(w, h.log, http.StatusOK, CompleteResponse{
		SessionResponse: view,
		Tips:            newTipViews(grading.SecurityTips(*next), h.tr, tag),
	})
}

// archiveCompletion failures are logged, not returned: the run is already
// complete in the session store.
func (h *SessionHandler) archiveCompletion(ctx context.Context, gs state.GameSession) {
	if h.archive == nil {
		return
	}
	log := logger.WithSession(h.log, gs.ID, gs.ScenarioID)

	c, err := archive.CompletionFromSession(gs)
	if err != nil {
		log.Error("Failed to build archive record", "error", err)
		return
	}
	if err := h.archive.RecordCompletion(ctx, c); err != nil {
		if errors.Is(err, archive.ErrDuplicate) {
			log.Debug("Completion already archived")
			return
		}
		log.Error("Failed to archive completion", "error", err)
	}
}

func (h *SessionHandler) handleTips(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs, err := h.load(r.Context(), id)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}
	tag := scenario.NegotiateLanguage(r.Header.Get("Accept-Language"))
	writeJSON(w, h.log, http.StatusOK, newTipViews(grading.SecurityTips(*gs), h.tr, tag))
}

// load fetches a session, turning absence into ErrSessionNotFound.
func (h *SessionHandler) load(ctx context.Context, id uuid.UUID) (*state.GameSession, error) {
	gs, err := h.storage.LoadSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if gs == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrSessionNotFound, id)
	}
	return gs, nil
}

// scenarioFor finds the scenario a session was started from. It can vanish
// from the catalog on reload.
func (h *SessionHandler) scenarioFor(gs state.GameSession) (*scenario.Scenario, error) {
	sc, ok := h.scenarios.Lookup(gs.ScenarioID)
	if !ok {
		return nil, fmt.Errorf("%w: scenario %q is no longer loaded", engine.ErrInvalidState, gs.ScenarioID)
	}
	return sc, nil
}

// view builds the client view of gs, localized for the request.
func (h *SessionHandler) view(r *http.Request, gs state.GameSession) SessionResponse {
	resp := SessionResponse{
		Session: gs,
		Grade:   grading.CalculateGrade(gs.Score),
	}

	if sc, ok := h.scenarios.Lookup(gs.ScenarioID); ok {
		tag := scenario.NegotiateLanguage(r.Header.Get("Accept-Language"))
		scene, _ := sc.Scene(gs.CurrentSceneID)
		resp.Scene = newSceneView(scene, gs, h.tr, tag)
		resp.Terminal = engine.AtTerminal(gs, sc)
	}

	if !gs.IsCompleted() {
		n, err := h.storage.SnapshotCount(r.Context(), gs.ID)
		if err != nil {
			h.log.Warn("Failed to count undo snapshots", "error", err, "session_id", gs.ID)
		}
		resp.CanUndo = n > 0
	}
	return resp
}
