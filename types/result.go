package types

import "fmt"

// Progress is a point-in-time view of a session's file counters.
// Successful+Failed never exceeds Total, and Total is fixed at creation.
type Progress struct {
	Successful int `json:"successful" yaml:"successful"`
	Failed     int `json:"failed" yaml:"failed"`
	Total      int `json:"total" yaml:"total"`
}

// Done reports whether every file has been accounted for.
func (p Progress) Done() bool {
	return p.Successful+p.Failed >= p.Total
}

// Fraction returns completed files over Total, 0 for an empty batch.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Successful+p.Failed) / float64(p.Total)
}

// AnalysisResult is the final output of a session.
type AnalysisResult struct {
	Aircrafts []Aircraft `json:"aircrafts" yaml:"aircrafts"`
	// Failures has one "<path>: <reason>" entry per file that failed.
	Failures []string `json:"failures" yaml:"failures"`
}

// TotalSeconds sums TotalSeconds over all aircraft.
func (r AnalysisResult) TotalSeconds() float64 {
	var total float64
	for _, a := range r.Aircrafts {
		total += a.TotalSeconds
	}
	return total
}

// Clone returns a deep copy with non-nil slices.
func (r AnalysisResult) Clone() AnalysisResult {
	out := AnalysisResult{
		Aircrafts: make([]Aircraft, len(r.Aircrafts)),
		Failures:  make([]string, len(r.Failures)),
	}
	for i, a := range r.Aircrafts {
		out.Aircrafts[i] = a.Clone()
	}
	copy(out.Failures, r.Failures)
	return out
}

// ParseFailure is a file-scoped analysis failure. It never aborts a batch.
type ParseFailure struct {
	File   string
	Reason string
	Err    error
}

// NewParseFailure wraps err as a failure of file.
func NewParseFailure(file string, err error) *ParseFailure {
	return &ParseFailure{File: file, Reason: err.Error(), Err: err}
}

func (f *ParseFailure) Error() string {
	return fmt.Sprintf("%s: %s", f.File, f.Reason)
}

// Unwrap returns the underlying cause.
func (f *ParseFailure) Unwrap() error {
	return f.Err
}
