package analyzer

import (
	"errors"
	"io/fs"

	"github.com/justapithecus/flightlog/tacview"
)

// Failure kinds, used as metric labels.
const (
	FailureNoAuthor  = "no_author"
	FailureMalformed = "malformed"
	FailureEmpty     = "empty"
	FailureIO        = "io"
	FailurePanic     = "panic"
	FailureOther     = "other"
)

// ErrPanic marks a failure recovered from a panic during analysis.
var ErrPanic = errors.New("analysis panicked")

// FailureKind classifies an analysis error.
func FailureKind(err error) string {
	var pathErr *fs.PathError
	switch {
	case errors.Is(err, ErrPanic):
		return FailurePanic
	case errors.Is(err, tacview.ErrNoAuthor):
		return FailureNoAuthor
	case errors.Is(err, tacview.ErrMalformed), errors.Is(err, tacview.ErrEmptyArchive):
		return FailureMalformed
	case errors.Is(err, ErrNoSamples), errors.Is(err, ErrNoProgress):
		return FailureEmpty
	case errors.As(err, &pathErr):
		return FailureIO
	default:
		return FailureOther
	}
}
