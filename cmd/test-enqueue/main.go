package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/hotspot-trainer/internal/archive"
	"github.com/jwebster45206/hotspot-trainer/internal/queue"
)

// Pushes synthetic completions onto the archive queue so the worker can be
// exercised without playing through a scenario.
func main() {
	redisURL := flag.String("redis", "redis://localhost:6379", "Redis URL or host:port")
	user := flag.String("user", "test-player", "user id recorded on each completion")
	scenarioID := flag.String("scenario", "coffee_shop", "scenario id recorded on each completion")
	count := flag.Int("n", 2, "number of completions to enqueue")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := queue.NewClient(ctx, *redisURL, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}
	defer client.Close()

	fmt.Println("Connected to Redis successfully!")

	completions := queue.NewCompletionQueue(client)
	grades := []string{"A", "B", "C", "D", "F"}
	now := time.Now().UTC()

	for i := range *count {
		c := archive.Completion{
			SessionID:        uuid.New(),
			UserID:           *user,
			ScenarioID:       *scenarioID,
			Difficulty:       "beginner",
			SafetyPoints:     10 * (i + 1),
			RiskPoints:       5 * i,
			DecisionsCount:   2,
			CorrectDecisions: 2 - i%3,
			Grade:            grades[i%len(grades)],
			StartedAt:        now.Add(-5 * time.Minute),
			CompletedAt:      now,
		}
		if err := completions.RecordCompletion(ctx, c); err != nil {
			log.Fatal("Failed to enqueue completion: ", err)
		}
		fmt.Printf("Enqueued completion for session %s (grade %s)\n", c.SessionID, c.Grade)
	}

	depth, err := completions.Depth(ctx)
	if err != nil {
		log.Fatal("Failed to get queue depth: ", err)
	}

	fmt.Printf("\nQueue depth: %d completions\n", depth)
	fmt.Println("Now start the worker to archive them: go run ./cmd/worker")
}
