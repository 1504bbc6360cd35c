package queue

import (
	"encoding/json"
	"time"

	"github.com/jwebster45206/hotspot-trainer/internal/archive"
)

// Request is one pending archive write.
type Request struct {
	RequestID  string             `json:"request_id"`
	Completion archive.Completion `json:"completion"`

	// Attempts counts failed writes so far.
	Attempts int `json:"attempts"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// ToJSON converts the request to JSON bytes for Redis
func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
