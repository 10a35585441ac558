package session

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/justapithecus/flightlog/analyzer"
	"github.com/justapithecus/flightlog/cache"
	"github.com/justapithecus/flightlog/log"
	"github.com/justapithecus/flightlog/metrics"
	"github.com/justapithecus/flightlog/types"
)

// DefaultMaxSessions is the running session cap when none is configured.
const DefaultMaxSessions = 1

// FileAnalyzer analyzes one file. Implementations must be safe for
// concurrent use.
type FileAnalyzer interface {
	Analyze(ctx context.Context, path string) (*analyzer.Result, error)
}

// Job describes one batch.
type Job struct {
	// Reader is the reader kind, recorded on the session and cache keys.
	Reader string
	// Files are analyzed in parallel; results keep this order.
	Files    []string
	Analyzer FileAnalyzer
	// Threshold and Pilot identify the analysis options in cache keys.
	Threshold float64
	Pilot     string
}

// Config configures a Scheduler.
type Config struct {
	// Workers bounds concurrent file analyses. Default runtime.GOMAXPROCS(0).
	Workers int
	// MaxSessions bounds concurrently running sessions. Default 1.
	MaxSessions int
	// Cache is consulted before analysis. Optional.
	Cache *cache.Cache
	// Metrics receives counters. Optional.
	Metrics *metrics.Collector
	// Logger receives lifecycle logs. Default no-op.
	Logger *log.Logger
}

// Scheduler starts sessions and runs their files on a bounded pool.
type Scheduler struct {
	cfg   Config
	store *Store
}

// NewScheduler creates a Scheduler with its own Store.
func NewScheduler(cfg Config) *Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	return &Scheduler{cfg: cfg, store: NewStore()}
}

// Store returns the session store.
func (s *Scheduler) Store() *Store { return s.store }

// Workers returns the effective pool size.
func (s *Scheduler) Workers() int { return s.cfg.Workers }

// Start registers a session for job and returns its id without waiting.
// Cancelling ctx cancels the session.
func (s *Scheduler) Start(ctx context.Context, job Job) (string, error) {
	if job.Analyzer == nil {
		return "", errors.New("job analyzer is required")
	}

	files := make([]string, len(job.Files))
	copy(files, job.Files)
	job.Files = files

	id := uuid.NewString()
	runCtx, cancel := context.WithCancel(ctx)
	sess := newSession(id, job.Reader, files, cancel)

	if err := s.store.add(sess, s.cfg.MaxSessions); err != nil {
		cancel()
		s.cfg.Metrics.IncSessionRejected()
		s.cfg.Logger.Warn("session rejected", map[string]any{
			"reader":       job.Reader,
			"files":        len(files),
			"max_sessions": s.cfg.MaxSessions,
		})
		return "", err
	}
	s.cfg.Metrics.IncSessionStarted()

	logger := s.cfg.Logger.ForSession(id, job.Reader)
	logger.Info("session started", map[string]any{
		"files":   len(files),
		"workers": s.cfg.Workers,
	})

	if len(files) == 0 {
		cancel()
		sess.complete()
		s.cfg.Metrics.IncSessionCompleted()
		logger.Info("session completed", map[string]any{"files": 0})
		return id, nil
	}

	go s.run(runCtx, sess, job, logger)
	return id, nil
}

// Cancel stops dispatching files for a running session. In-flight files
// finish; the session is then marked cancelled. Cancelling a finished
// session is a no-op.
func (s *Scheduler) Cancel(id string) error {
	sess, ok := s.store.get(id)
	if !ok {
		return ErrSessionNotFound
	}
	sess.cancel()
	return nil
}

func (s *Scheduler) run(ctx context.Context, sess *session, job Job, logger *log.Logger) {
	defer sess.cancel()

	// In-flight analyses run to completion after cancellation.
	workCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)

	for i, path := range job.Files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			o := s.analyze(workCtx, job, path, logger)
			if sess.commit(i, o) {
				info := sess.info()
				s.cfg.Metrics.IncSessionCompleted()
				logger.Info("session completed", map[string]any{
					"succeeded":   info.Progress.Successful,
					"failed":      info.Progress.Failed,
					"duration_ms": info.Duration().Milliseconds(),
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	if sess.markCancelled() {
		_, p := sess.snapshot()
		s.cfg.Metrics.IncSessionCancelled()
		logger.Warn("session cancelled", map[string]any{
			"succeeded": p.Successful,
			"failed":    p.Failed,
			"total":     p.Total,
		})
	}
}

// analyze produces the outcome of one file. It never panics.
func (s *Scheduler) analyze(ctx context.Context, job Job, path string, logger *log.Logger) (o outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", analyzer.ErrPanic, r)
			o = s.failed(path, err, logger)
		}
	}()

	var digest string
	if s.cfg.Cache != nil {
		key := cache.Key{Reader: job.Reader, Path: path, Threshold: job.Threshold, Pilot: job.Pilot}
		d, err := cache.Digest(key)
		if err != nil {
			logger.Debug("file not cacheable", map[string]any{"file": path, "error": err.Error()})
		}
		digest = d
		if contribs, ok := s.cfg.Cache.Get(digest); ok {
			s.cfg.Metrics.IncCacheHit()
			s.cfg.Metrics.IncFileAnalyzed(0)
			logger.Debug("file served from cache", map[string]any{"file": path})
			return outcome{ok: true, contribs: contribs}
		}
		s.cfg.Metrics.IncCacheMiss()
	}

	res, err := job.Analyzer.Analyze(ctx, path)
	if err != nil {
		return s.failed(path, err, logger)
	}

	if digest != "" {
		if err := s.cfg.Cache.Put(digest, path, res.Contributions); err != nil {
			logger.Warn("cache write failed", map[string]any{"file": path, "error": err.Error()})
		}
	}
	s.cfg.Metrics.IncFileAnalyzed(res.Samples)
	logger.Debug("file analyzed", map[string]any{
		"file":     path,
		"aircraft": len(res.Contributions),
		"samples":  res.Samples,
	})
	return outcome{ok: true, contribs: res.Contributions}
}

func (s *Scheduler) failed(path string, err error, logger *log.Logger) outcome {
	var pf *types.ParseFailure
	if !errors.As(err, &pf) {
		pf = types.NewParseFailure(path, err)
	}
	kind := analyzer.FailureKind(err)
	s.cfg.Metrics.IncFileFailed(kind)
	logger.Warn("file failed", map[string]any{
		"file":   path,
		"kind":   kind,
		"reason": pf.Reason,
	})
	return outcome{failure: pf.Error()}
}
