package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

// ErrSessionNotFound is returned by PatchSession when no session is stored
// under the requested ID.
var ErrSessionNotFound = errors.New("session not found")

// Storage persists play-throughs between requests. Scenarios and badges are
// read-only catalogs and live in memory, not here.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session operations. LoadSession returns nil, nil when absent.
	SaveSession(ctx context.Context, gs *state.GameSession) error
	LoadSession(ctx context.Context, id uuid.UUID) (*state.GameSession, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// Undo history: a stack of snapshots taken before decision scenes.
	// limit > 0 keeps only the newest limit entries.
	PushSnapshot(ctx context.Context, gs *state.GameSession, limit int) error
	PopSnapshot(ctx context.Context, id uuid.UUID) (*state.GameSession, error)
	SnapshotCount(ctx context.Context, id uuid.UUID) (int, error)
	ClearSnapshots(ctx context.Context, id uuid.UUID) error

	// Exploration root: the session as it stood when exploration began.
	SaveRootSnapshot(ctx context.Context, gs *state.GameSession) error
	LoadRootSnapshot(ctx context.Context, id uuid.UUID) (*state.GameSession, error)
}

// PatchSession loads a session, runs apply against it and saves the result.
// apply receives a value and must return the replacement session.
func PatchSession(ctx context.Context, s Storage, id uuid.UUID, apply func(state.GameSession) (state.GameSession, error)) (*state.GameSession, error) {
	gs, err := s.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if gs == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	next, err := apply(*gs)
	if err != nil {
		return nil, err
	}
	if err := s.SaveSession(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}
