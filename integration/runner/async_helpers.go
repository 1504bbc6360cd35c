package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jwebster45206/hotspot-trainer/internal/handlers"
)

const (
	// PollInterval is how often to check the archive for new completions
	PollInterval = 250 * time.Millisecond
	// ArchiveTimeout bounds the wait for a queued completion to be written
	ArchiveTimeout = 30 * time.Second
)

// GetCompletions returns how many runs the archive holds for userID.
func GetCompletions(ctx context.Context, client *http.Client, baseURL, userID string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/v1/stats?recent=0", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create stats request: %w", err)
	}
	req.Header.Set(handlers.UserIDHeader, userID)

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send stats request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("stats endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var stats handlers.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return 0, fmt.Errorf("failed to decode stats: %w", err)
	}
	return stats.Completions, nil
}

// WaitForArchive polls the stats endpoint until userID has at least want
// archived runs. With ARCHIVE_QUEUE set the write happens in the worker,
// so the count lags the complete call.
func WaitForArchive(ctx context.Context, client *http.Client, baseURL, userID string, want int) error {
	timeout := time.After(ArchiveTimeout)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		n, err := GetCompletions(ctx, client, baseURL, userID)
		if err == nil && n >= want {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("timeout waiting for %d archived runs for %s (have %d, waited %v)", want, userID, n, ArchiveTimeout)
		case <-ticker.C:
		}
	}
}
