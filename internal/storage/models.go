package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is the audit record of one ingestion run for one locale.
type Run struct {
	ID         string    `json:"id"`
	Lang       string    `json:"lang"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	Fetched    int       `json:"fetched"`
	CacheSize  int       `json:"cache_size"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
}

// Duration returns the wall-clock length of a finished run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
