// Package lode persists analysis reports to a Lode dataset and reads them
// back.
//
// Reports are written with a Hive layout partitioned by
// reader/day/session_id/record_kind. Storage failures are classified into
// sentinel kinds so callers can use errors.Is rather than string matching.
package lode

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Sentinel errors for storage failure classification.
var (
	// ErrPermissionDenied indicates a local permission failure (EACCES).
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound indicates the target path or object does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDiskFull indicates storage is out of space (ENOSPC).
	ErrDiskFull = errors.New("no space left on device")
	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")
	// ErrThrottled indicates rate limiting (429, SlowDown).
	ErrThrottled = errors.New("rate limited")
	// ErrAuth indicates missing or invalid credentials.
	ErrAuth = errors.New("authentication failed")
	// ErrAccessDenied indicates valid credentials without permission (403).
	ErrAccessDenied = errors.New("access denied")
	// ErrNetwork indicates a network-level failure.
	ErrNetwork = errors.New("network error")
	// ErrUnclassified is the kind of errors matching no other class.
	ErrUnclassified = errors.New("storage error")
)

// StorageError wraps an underlying error with its classification.
type StorageError struct {
	// Kind is the sentinel for classification.
	Kind error
	// Op is the failed operation: init, write or read.
	Op string
	// Path is the dataset or snapshot involved, if any.
	Path string
	// Err is the underlying error.
	Err error
}

func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports whether the error's kind matches target.
func (e *StorageError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Kind: classify(err), Op: op, Path: path, Err: err}
}

// WrapWriteError classifies a write failure. Returns nil for nil.
func WrapWriteError(err error, path string) error { return wrap("write", path, err) }

// WrapReadError classifies a read failure. Returns nil for nil.
func WrapReadError(err error, path string) error { return wrap("read", path, err) }

// WrapInitError classifies a dataset initialization failure. Returns nil
// for nil.
func WrapInitError(err error, dataset string) error { return wrap("init", dataset, err) }

// rule maps message fragments to a kind. Rules are checked in order.
type rule struct {
	kind      error
	fragments []string
}

var rules = []rule{
	{ErrAccessDenied, []string{"accessdenied", "forbidden", "403", "access denied"}},
	{ErrPermissionDenied, []string{"permission denied", "eacces"}},
	{ErrNotFound, []string{"no such file", "does not exist", "not found", "enoent", "404", "nosuchkey", "nosuchbucket"}},
	{ErrDiskFull, []string{"no space left", "disk full", "enospc", "quota exceeded"}},
	{ErrTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{ErrThrottled, []string{"slowdown", "rate exceeded", "throttl", "429", "toomanyrequests"}},
	{ErrAuth, []string{"nocredentialproviders", "credentials", "invalidaccesskeyid",
		"signaturedoesnotmatch", "expiredtoken", "401", "unauthorized"}},
	{ErrNetwork, []string{"connection refused", "no route to host", "network unreachable",
		"dns", "dial tcp"}},
}

// classify returns the sentinel kind for err.
func classify(err error) error {
	var timeout interface{ Timeout() bool }
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.As(err, &timeout) && timeout.Timeout():
		return ErrTimeout
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	}

	msg := strings.ToLower(err.Error())
	for _, r := range rules {
		for _, f := range r.fragments {
			if strings.Contains(msg, f) {
				return r.kind
			}
		}
	}
	return ErrUnclassified
}
