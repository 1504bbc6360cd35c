package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/hotspot-trainer/internal/archive"
)

const completionsKey = "archive:completions"

// CompletionQueue is a FIFO of completed runs waiting to be archived.
type CompletionQueue struct {
	client *Client
	now    func() time.Time
}

func NewCompletionQueue(client *Client) *CompletionQueue {
	return &CompletionQueue{
		client: client,
		now:    time.Now,
	}
}

// RecordCompletion enqueues c for the worker. It satisfies the same
// interface as the archive store so the API can use either.
func (q *CompletionQueue) RecordCompletion(ctx context.Context, c archive.Completion) error {
	return q.Enqueue(ctx, &Request{
		RequestID:  uuid.NewString(),
		Completion: c,
		EnqueuedAt: q.now().UTC(),
	})
}

// Enqueue appends req to the tail of the queue.
func (q *CompletionQueue) Enqueue(ctx context.Context, req *Request) error {
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}
	if err := q.client.rdb.RPush(ctx, completionsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}
	return nil
}

// BlockingDequeue waits up to timeout for the next request. It returns
// nil, nil when the wait times out.
func (q *CompletionQueue) BlockingDequeue(ctx context.Context, timeout time.Duration) (*Request, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, completionsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	req, err := FromJSON([]byte(result[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// Depth returns the number of requests waiting.
func (q *CompletionQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, completionsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}
