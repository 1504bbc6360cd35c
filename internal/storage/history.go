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

// Undo history is a Redis list per session, newest snapshot at the tail.

// PushSnapshot appends a snapshot and trims the list to the newest limit
// entries when limit > 0.
func (r *RedisStorage) PushSnapshot(ctx context.Context, gs *state.GameSession, limit int) error {
	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	key := historyKey(gs.ID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		if limit > 0 {
			pipe.LTrim(ctx, key, int64(-limit), -1)
		}
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to push snapshot", "session_id", gs.ID, "error", err)
		return fmt.Errorf("failed to push snapshot: %w", err)
	}
	return nil
}

// PopSnapshot removes and returns the newest snapshot; nil, nil when the
// stack is empty.
func (r *RedisStorage) PopSnapshot(ctx context.Context, id uuid.UUID) (*state.GameSession, error) {
	data, err := r.client.RPop(ctx, historyKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop snapshot: %w", err)
	}

	var gs state.GameSession
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &gs, nil
}

// SnapshotCount returns the depth of the undo stack.
func (r *RedisStorage) SnapshotCount(ctx context.Context, id uuid.UUID) (int, error) {
	n, err := r.client.LLen(ctx, historyKey(id)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get snapshot count: %w", err)
	}
	return int(n), nil
}

// ClearSnapshots empties the undo stack.
func (r *RedisStorage) ClearSnapshots(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, historyKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return nil
}
