// Package engine is the entry point for browsing recordings and running
// batch analyses over a registry of reader kinds.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/justapithecus/flightlog/analyzer"
	"github.com/justapithecus/flightlog/log"
	"github.com/justapithecus/flightlog/session"
	"github.com/justapithecus/flightlog/types"
)

// ErrUnknownReader is returned for reader kinds not registered.
var ErrUnknownReader = errors.New("unknown reader")

// Reader lists and decodes the recordings of one reader kind.
type Reader interface {
	Kind() string
	ValidFiles(dir string) ([]string, error)
	analyzer.Decoder
}

// Selection is the result of BrowseFiles. Error is empty on success.
type Selection struct {
	Dir    string   `json:"dir" yaml:"dir"`
	Files  []string `json:"files" yaml:"files"`
	Reader string   `json:"reader" yaml:"reader"`
	Error  string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Options configures an Engine.
type Options struct {
	// Analyzer options shared by every reader.
	Analyzer analyzer.Options
	// Pilot is recorded in cache keys. The reader applies it.
	Pilot string
	// Scheduler configuration.
	Scheduler session.Config
	// Logger receives browse failures. Default no-op.
	Logger *log.Logger
}

type entry struct {
	reader   Reader
	analyzer *analyzer.Analyzer
}

// Engine routes operations to readers and the session scheduler.
type Engine struct {
	opts      Options
	readers   map[string]entry
	scheduler *session.Scheduler
	logger    *log.Logger
}

// New creates an Engine over readers. Later readers replace earlier ones
// of the same kind.
func New(opts Options, readers ...Reader) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	if opts.Scheduler.Logger == nil {
		opts.Scheduler.Logger = logger
	}

	e := &Engine{
		opts:      opts,
		readers:   make(map[string]entry, len(readers)),
		scheduler: session.NewScheduler(opts.Scheduler),
		logger:    logger,
	}
	for _, r := range readers {
		e.readers[r.Kind()] = entry{reader: r, analyzer: analyzer.New(r, opts.Analyzer)}
	}
	return e
}

// Readers returns the registered reader kinds, sorted.
func (e *Engine) Readers() []string {
	kinds := make([]string, 0, len(e.readers))
	for k := range e.readers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Scheduler returns the underlying scheduler.
func (e *Engine) Scheduler() *session.Scheduler { return e.scheduler }

// BrowseFiles lists the recordings of kind in dir as full paths.
// Failures are reported in Selection.Error.
func (e *Engine) BrowseFiles(kind, dir string) Selection {
	sel := Selection{Dir: dir, Reader: kind, Files: []string{}}

	ent, ok := e.readers[kind]
	if !ok {
		sel.Error = fmt.Sprintf("%s: %q", ErrUnknownReader, kind)
		return sel
	}

	names, err := ent.reader.ValidFiles(dir)
	if err != nil {
		e.logger.Warn("browse failed", map[string]any{
			"reader": kind,
			"dir":    dir,
			"error":  err.Error(),
		})
		sel.Error = err.Error()
		return sel
	}
	for _, name := range names {
		sel.Files = append(sel.Files, filepath.Join(dir, name))
	}
	return sel
}

// StartAnalysis starts a session over files and returns its id.
func (e *Engine) StartAnalysis(ctx context.Context, kind string, files []string) (string, error) {
	ent, ok := e.readers[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownReader, kind)
	}
	return e.scheduler.Start(ctx, session.Job{
		Reader:    kind,
		Files:     files,
		Analyzer:  ent.analyzer,
		Threshold: e.opts.Analyzer.MovementThreshold,
		Pilot:     e.opts.Pilot,
	})
}

// GetProgress returns session counters. Unknown ids yield zero.
func (e *Engine) GetProgress(id string) types.Progress {
	return e.scheduler.Store().GetProgress(id)
}

// GetResult returns the result of a completed session.
func (e *Engine) GetResult(id string) (types.AnalysisResult, error) {
	return e.scheduler.Store().GetResult(id)
}

// Cancel cancels a running session.
func (e *Engine) Cancel(id string) error {
	return e.scheduler.Cancel(id)
}

// Done returns a channel closed when the session stops running.
func (e *Engine) Done(id string) (<-chan struct{}, error) {
	return e.scheduler.Store().Done(id)
}

// Status reports the state of a session; false for unknown ids.
func (e *Engine) Status(id string) (session.State, bool) {
	return e.scheduler.Store().Status(id)
}

// Info describes a session.
func (e *Engine) Info(id string) (session.Info, error) {
	return e.scheduler.Store().Info(id)
}

// Wait blocks until the session stops running or ctx ends.
func (e *Engine) Wait(ctx context.Context, id string) error {
	done, err := e.Done(id)
	if err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
