// Package analyzer reduces one decoded recording to per-aircraft time
// contributions.
package analyzer

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/justapithecus/flightlog/types"
)

// UnknownAircraft names objects whose recording never carried a Name.
const UnknownAircraft = "Unknown"

var (
	// ErrNoSamples is returned when a recording holds no tracked samples.
	ErrNoSamples = errors.New("no samples for tracked pilot")
	// ErrNoProgress is returned when a recording's time never advances.
	ErrNoProgress = errors.New("recording time never advances")
)

// Decoder decodes one recording file.
type Decoder interface {
	Decode(ctx context.Context, path string) (*types.Recording, error)
}

// Options configures an Analyzer.
type Options struct {
	// MovementThreshold is the motion in metres above which an interval
	// counts as moving. Default 0.
	MovementThreshold float64
}

// Result is the outcome of analyzing one file.
type Result struct {
	Contributions []types.FileContribution
	// Samples is the number of decoded samples, 0 when served from cache.
	Samples int
}

// Analyzer is stateless and safe for concurrent use.
type Analyzer struct {
	dec  Decoder
	opts Options
}

// New creates an Analyzer over dec.
func New(dec Decoder, opts Options) *Analyzer {
	return &Analyzer{dec: dec, opts: opts}
}

// Threshold returns the configured movement threshold.
func (a *Analyzer) Threshold() float64 { return a.opts.MovementThreshold }

// Analyze decodes and reduces the file at path.
// Every error returned is a *types.ParseFailure.
func (a *Analyzer) Analyze(ctx context.Context, path string) (*Result, error) {
	rec, err := a.dec.Decode(ctx, path)
	if err != nil {
		return nil, types.NewParseFailure(path, err)
	}
	if rec.Path == "" {
		rec.Path = path
	}

	contribs, err := Reduce(rec, a.opts.MovementThreshold)
	if err != nil {
		return nil, types.NewParseFailure(path, err)
	}
	return &Result{Contributions: contribs, Samples: len(rec.Samples)}, nil
}

// Reduce folds a recording into one contribution per aircraft, in the
// order aircraft first appear.
func Reduce(rec *types.Recording, threshold float64) ([]types.FileContribution, error) {
	if len(rec.Samples) == 0 {
		return nil, ErrNoSamples
	}
	if rec.End <= rec.Samples[0].Time {
		return nil, ErrNoProgress
	}

	mission := rec.Title
	if mission == "" {
		mission = rec.Mission
	}
	if mission == "" {
		mission = filepath.Base(rec.Path)
	}

	var (
		order  []string
		byName = make(map[string]*types.FileContribution)
	)
	for _, lt := range splitLifetimes(rec.Samples) {
		seg := lt.measure(rec.End, threshold)

		c, ok := byName[lt.aircraft]
		if !ok {
			c = &types.FileContribution{Aircraft: lt.aircraft, Mission: mission}
			byName[lt.aircraft] = c
			order = append(order, lt.aircraft)
		}
		c.TotalSeconds += seg.total
		c.GroundSeconds += seg.ground
		c.MissionSeconds += seg.total
		c.Flights += seg.flights
		if lt.destroyed {
			c.Destroyed++
		}
	}

	out := make([]types.FileContribution, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}
