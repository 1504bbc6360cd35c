package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

// MockStorage is an in-memory Storage for tests. Values are cloned on the
// way in and out so callers never share state with the store.
type MockStorage struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]state.GameSession
	history   map[uuid.UUID][]state.GameSession
	roots     map[uuid.UUID]state.GameSession
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[uuid.UUID]state.GameSession),
		history:  make(map[uuid.UUID][]state.GameSession),
		roots:    make(map[uuid.UUID]state.GameSession),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError makes every subsequent SaveSession fail with err.
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSession(ctx context.Context, gs *state.GameSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.sessions[gs.ID] = gs.Clone()
	return nil
}

func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (*state.GameSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	gs, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	out := gs.Clone()
	return &out, nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.history, id)
	delete(m.roots, id)
	return nil
}

func (m *MockStorage) PushSnapshot(ctx context.Context, gs *state.GameSession, limit int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stack := append(m.history[gs.ID], gs.Clone())
	if limit > 0 && len(stack) > limit {
		stack = stack[len(stack)-limit:]
	}
	m.history[gs.ID] = stack
	return nil
}

func (m *MockStorage) PopSnapshot(ctx context.Context, id uuid.UUID) (*state.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stack := m.history[id]
	if len(stack) == 0 {
		return nil, nil
	}
	top := stack[len(stack)-1]
	m.history[id] = stack[:len(stack)-1]
	return &top, nil
}

func (m *MockStorage) SnapshotCount(ctx context.Context, id uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.history[id]), nil
}

func (m *MockStorage) ClearSnapshots(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.history, id)
	return nil
}

func (m *MockStorage) SaveRootSnapshot(ctx context.Context, gs *state.GameSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roots[gs.ID] = gs.Clone()
	return nil
}

func (m *MockStorage) LoadRootSnapshot(ctx context.Context, id uuid.UUID) (*state.GameSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	gs, ok := m.roots[id]
	if !ok {
		return nil, nil
	}
	out := gs.Clone()
	return &out, nil
}
