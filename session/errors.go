package session

import "errors"

// Session errors. Use errors.Is for classification.
var (
	// ErrSessionNotFound is returned for ids that were never started.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionIncomplete is returned by GetResult while files remain.
	ErrSessionIncomplete = errors.New("session incomplete")
	// ErrSessionCancelled is returned by GetResult for cancelled sessions.
	ErrSessionCancelled = errors.New("session cancelled")
	// ErrSessionLimitReached is returned when the running session cap is hit.
	ErrSessionLimitReached = errors.New("session limit reached")
)
