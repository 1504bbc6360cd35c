package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

// Session operations (Redis-backed)

func (r *RedisStorage) SaveSession(ctx context.Context, gs *state.GameSession) error {
	data, err := json.Marshal(gs)
	if err != nil {
		r.logger.Error("Failed to marshal session", "session_id", gs.ID, "error", err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(gs.ID), data, r.ttl)
		pipe.Expire(ctx, historyKey(gs.ID), r.ttl)
		pipe.Expire(ctx, rootKey(gs.ID), r.ttl)
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save session", "session_id", gs.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadSession(ctx context.Context, id uuid.UUID) (*state.GameSession, error) {
	gs, err := r.getSession(ctx, sessionKey(id))
	if err != nil {
		r.logger.Error("Failed to load session", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if gs == nil {
		r.logger.Debug("Session not found", "session_id", id)
	}
	return gs, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(id), historyKey(id), rootKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete session", "session_id", id, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *RedisStorage) SaveRootSnapshot(ctx context.Context, gs *state.GameSession) error {
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("failed to marshal exploration root: %w", err)
	}
	if err := r.client.Set(ctx, rootKey(gs.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save exploration root: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadRootSnapshot(ctx context.Context, id uuid.UUID) (*state.GameSession, error) {
	gs, err := r.getSession(ctx, rootKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to load exploration root: %w", err)
	}
	return gs, nil
}

// getSession decodes a JSON session stored under key; nil, nil when absent.
func (r *RedisStorage) getSession(ctx context.Context, key string) (*state.GameSession, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var gs state.GameSession
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &gs, nil
}
