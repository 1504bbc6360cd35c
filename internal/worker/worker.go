package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/hotspot-trainer/internal/archive"
	"github.com/jwebster45206/hotspot-trainer/internal/queue"
)

const (
	workerTimeout = 5 * time.Second

	// DefaultMaxAttempts is how many failed writes a request survives
	// before it is dropped.
	DefaultMaxAttempts = 5
)

// Queue is the subset of queue.CompletionQueue the worker drives.
type Queue interface {
	Enqueue(ctx context.Context, req *queue.Request) error
	BlockingDequeue(ctx context.Context, timeout time.Duration) (*queue.Request, error)
}

// Archiver persists a completion. archive.Store satisfies it.
type Archiver interface {
	RecordCompletion(ctx context.Context, c archive.Completion) error
}

// Worker drains the completion queue into the archive.
type Worker struct {
	id          string
	queue       Queue
	archive     Archiver
	log         *slog.Logger
	maxAttempts int
	retryDelay  time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a worker. An empty workerID gets a generated one.
func New(q Queue, a Archiver, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:          workerID,
		queue:       q,
		archive:     a,
		log:         log.With("worker_id", workerID),
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  time.Second,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// ID returns the worker's identifier.
func (w *Worker) ID() string {
	return w.id
}

// Start processes requests until Stop is called.
func (w *Worker) Start() error {
	w.log.Info("Worker starting")

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down")
			return nil
		default:
			if err := w.processNext(); err != nil {
				w.log.Error("Error processing request", "error", err)
				// Back off so a dead Redis does not spin the loop.
				select {
				case <-w.ctx.Done():
				case <-time.After(w.retryDelay):
				}
			}
		}
	}
}

// Stop ends the loop after the current request.
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested")
	w.cancel()
}

// processNext waits briefly for one request and archives it.
func (w *Worker) processNext() error {
	req, err := w.queue.BlockingDequeue(w.ctx, workerTimeout)
	if err != nil {
		if w.ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to dequeue request: %w", err)
	}
	if req == nil {
		return nil
	}

	// The archive write finishes even if Stop lands mid-request.
	return w.process(context.WithoutCancel(w.ctx), req)
}

func (w *Worker) process(ctx context.Context, req *queue.Request) error {
	c := req.Completion
	log := w.log.With(
		"request_id", req.RequestID,
		"session_id", c.SessionID.String(),
		"attempt", req.Attempts+1,
	)

	start := time.Now()
	err := w.archive.RecordCompletion(ctx, c)
	switch {
	case err == nil:
		log.Info("Completion archived",
			"scenario_id", c.ScenarioID,
			"grade", c.Grade,
			"duration_ms", time.Since(start).Milliseconds())
		return nil
	case errors.Is(err, archive.ErrDuplicate):
		log.Debug("Completion already archived, dropping request")
		return nil
	}

	req.Attempts++
	if req.Attempts >= w.maxAttempts {
		log.Error("Giving up on completion", "error", err)
		return nil
	}

	log.Warn("Archive write failed, re-queueing", "error", err)
	if qErr := w.queue.Enqueue(ctx, req); qErr != nil {
		return fmt.Errorf("failed to re-queue request %s: %w", req.RequestID, qErr)
	}
	return nil
}
