// Package session runs batch analyses and tracks their progress and results.
//
// A session is one batch of recording files analyzed concurrently on a
// bounded worker pool. Its counters and per-file outcomes are guarded by a
// single lock so a file's contribution and its counter increment become
// visible together. The result is published once, by the worker that
// completes the final file, and is immutable afterwards.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/justapithecus/flightlog/aggregate"
	"github.com/justapithecus/flightlog/types"
)

// State is the lifecycle state of a session.
type State string

// Session states.
const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// Info describes a session for reporting.
type Info struct {
	ID         string         `json:"session_id" yaml:"session_id"`
	Reader     string         `json:"reader" yaml:"reader"`
	Files      []string       `json:"files" yaml:"files"`
	State      State          `json:"state" yaml:"state"`
	Progress   types.Progress `json:"progress" yaml:"progress"`
	StartedAt  time.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time      `json:"finished_at,omitzero" yaml:"finished_at,omitempty"`
}

// Duration returns the elapsed time, up to now for running sessions.
func (i Info) Duration() time.Duration {
	if i.FinishedAt.IsZero() {
		return time.Since(i.StartedAt)
	}
	return i.FinishedAt.Sub(i.StartedAt)
}

// outcome is the analysis outcome of one file.
type outcome struct {
	ok       bool
	contribs []types.FileContribution
	failure  string
}

type session struct {
	id     string
	reader string
	files  []string
	cancel context.CancelFunc
	done   chan struct{}

	mu         sync.RWMutex
	state      State
	progress   types.Progress
	outcomes   []outcome
	result     types.AnalysisResult
	startedAt  time.Time
	finishedAt time.Time
}

func newSession(id, reader string, files []string, cancel context.CancelFunc) *session {
	return &session{
		id:        id,
		reader:    reader,
		files:     files,
		cancel:    cancel,
		done:      make(chan struct{}),
		state:     StateRunning,
		progress:  types.Progress{Total: len(files)},
		outcomes:  make([]outcome, len(files)),
		startedAt: time.Now(),
	}
}

// apply records o for file i and bumps the matching counter.
// Caller holds s.mu.
func (s *session) apply(i int, o outcome) {
	s.outcomes[i] = o
	if o.ok {
		s.progress.Successful++
	} else {
		s.progress.Failed++
	}
}

// commit records file i. It reports true when this call completed the
// session and published the result.
func (s *session) commit(i int, o outcome) bool {
	s.mu.Lock()
	if s.progress.Successful+s.progress.Failed+1 < s.progress.Total {
		s.apply(i, o)
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	// Every other file is committed, so the buffer is frozen.
	s.mu.RLock()
	frozen := make([]outcome, len(s.outcomes))
	copy(frozen, s.outcomes)
	s.mu.RUnlock()
	frozen[i] = o
	result := build(frozen)

	s.mu.Lock()
	s.apply(i, o)
	s.result = result
	s.state = StateCompleted
	s.finishedAt = time.Now()
	close(s.done)
	s.mu.Unlock()
	return true
}

// complete publishes an empty result. Used for empty batches.
func (s *session) complete() {
	s.mu.Lock()
	s.result = build(nil)
	s.state = StateCompleted
	s.finishedAt = time.Now()
	close(s.done)
	s.mu.Unlock()
}

// markCancelled moves a still-running session to cancelled. It reports
// whether the transition happened.
func (s *session) markCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return false
	}
	s.state = StateCancelled
	s.finishedAt = time.Now()
	close(s.done)
	return true
}

func (s *session) snapshot() (State, types.Progress) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.progress
}

func (s *session) info() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files := make([]string, len(s.files))
	copy(files, s.files)
	return Info{
		ID:         s.id,
		Reader:     s.reader,
		Files:      files,
		State:      s.state,
		Progress:   s.progress,
		StartedAt:  s.startedAt,
		FinishedAt: s.finishedAt,
	}
}

// build aggregates outcomes in batch order.
func build(outcomes []outcome) types.AnalysisResult {
	var (
		contribs []types.FileContribution
		failures []string
	)
	for _, o := range outcomes {
		if o.ok {
			contribs = append(contribs, o.contribs...)
		} else {
			failures = append(failures, o.failure)
		}
	}
	return aggregate.Result(contribs, failures)
}
