// Package history persists a summary of every deployment run.
package history

import (
	"context"
	"time"
)

// Record is the persisted summary of one orchestrated run.
type Record struct {
	RunID      string         `json:"run_id"`
	Target     string         `json:"target"`
	Kind       string         `json:"kind"`
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	Changes    bool           `json:"changes"`
	Commit     string         `json:"commit,omitempty"`
	BlogURL    string         `json:"blog_url,omitempty"`
	Counts     map[string]int `json:"counts,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMS int64          `json:"duration_ms"`
}

// Store persists and lists run records.
type Store interface {
	// Append stores a record. RunID must be unique.
	Append(ctx context.Context, rec Record) error

	// Recent returns up to limit records, newest first. An empty target lists all targets.
	Recent(ctx context.Context, target string, limit int) ([]Record, error)

	// Get returns the record for runID.
	Get(ctx context.Context, runID string) (Record, error)

	// Close closes the store and releases resources.
	Close() error
}
