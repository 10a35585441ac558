// Package adapter defines the completion notification boundary.
//
// Adapters publish analysis completion events to downstream systems.
// The CLI owns adapter lifecycle; users provide configuration only.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/justapithecus/flightlog/lode"
	"github.com/justapithecus/flightlog/metrics"
	"github.com/justapithecus/flightlog/types"
)

// EventTypeAnalysisCompleted is the only event type published.
const EventTypeAnalysisCompleted = "analysis_completed"

// DefaultBackoff is the delay before the first retry. Each further retry doubles it.
const DefaultBackoff = 500 * time.Millisecond

// AnalysisCompletedEvent is the payload published when a session finishes.
type AnalysisCompletedEvent struct {
	ContractVersion string  `json:"contract_version"`
	EventType       string  `json:"event_type"` // always "analysis_completed"
	SessionID       string  `json:"session_id"`
	Reader          string  `json:"reader"`
	Outcome         string  `json:"outcome"` // completed, completed_with_failures, cancelled
	FilesTotal      int     `json:"files_total"`
	FilesSucceeded  int     `json:"files_succeeded"`
	FilesFailed     int     `json:"files_failed"`
	AircraftCount   int     `json:"aircraft_count"`
	TotalSeconds    float64 `json:"total_seconds"`
	StoragePath     string  `json:"storage_path,omitempty"`
	Timestamp       string  `json:"timestamp"` // RFC 3339
	DurationMs      int64   `json:"duration_ms"`
}

// NewEvent builds the completion event for a finished session report.
// storagePath is empty when the report was not persisted.
func NewEvent(r *lode.Report, storagePath string) *AnalysisCompletedEvent {
	return &AnalysisCompletedEvent{
		ContractVersion: types.ContractVersion,
		EventType:       EventTypeAnalysisCompleted,
		SessionID:       r.SessionID,
		Reader:          r.Reader,
		Outcome:         string(r.Outcome),
		FilesTotal:      r.Progress.Total,
		FilesSucceeded:  r.Progress.Successful,
		FilesFailed:     r.Progress.Failed,
		AircraftCount:   len(r.Result.Aircrafts),
		TotalSeconds:    r.Result.TotalSeconds(),
		StoragePath:     storagePath,
		Timestamp:       r.FinishedAt.UTC().Format(time.RFC3339),
		DurationMs:      r.Duration().Milliseconds(),
	}
}

// Adapter publishes completion events to a downstream system.
type Adapter interface {
	// Publish sends a completion event. Must respect context cancellation
	// and deadlines.
	Publish(ctx context.Context, event *AnalysisCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}

// Publish sends event through a and records the outcome on collector,
// which may be nil.
func Publish(ctx context.Context, a Adapter, event *AnalysisCompletedEvent, collector *metrics.Collector) error {
	if err := a.Publish(ctx, event); err != nil {
		collector.IncAdapterPublishFailure()
		return err
	}
	collector.IncAdapterPublishSuccess()
	return nil
}

// permanent marks an error that must not be retried.
type permanent struct{ err error }

func (p *permanent) Error() string { return p.err.Error() }
func (p *permanent) Unwrap() error { return p.err }

// Permanent wraps err so Retry stops immediately.
func Permanent(err error) error {
	return &permanent{err: err}
}

// Retry calls fn up to 1+retries times with exponential backoff between
// attempts. name prefixes returned errors.
func Retry(ctx context.Context, name string, retries int, backoff time.Duration, fn func(context.Context) error) error {
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	var lastErr error
	// attempts = 1 initial + retries
	attempts := 1 + retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}

		if i > 0 {
			delay := time.Duration(1<<uint(i-1)) * backoff
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-time.After(delay):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		var p *permanent
		if errors.As(lastErr, &p) {
			return fmt.Errorf("%s: non-retriable error: %w", name, p.err)
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}
