package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/flightlog/adapter"
	"github.com/justapithecus/flightlog/analyzer"
	"github.com/justapithecus/flightlog/cache"
	"github.com/justapithecus/flightlog/cli/config"
	"github.com/justapithecus/flightlog/cli/render"
	"github.com/justapithecus/flightlog/cli/tui"
	"github.com/justapithecus/flightlog/engine"
	"github.com/justapithecus/flightlog/lode"
	"github.com/justapithecus/flightlog/log"
	"github.com/justapithecus/flightlog/metrics"
	"github.com/justapithecus/flightlog/session"
	"github.com/justapithecus/flightlog/tacview"
	"github.com/justapithecus/flightlog/types"
)

// storageTimeout bounds the report export.
const storageTimeout = 30 * time.Second

// AnalyzeCommand returns the analyze command.
//
// Exit codes:
//   - 0: every file analyzed
//   - 1: usage, storage or adapter error
//   - 2: cancelled
//   - 3: completed with failed files
func AnalyzeCommand() *cli.Command {
	flags := append(ReadOnlyFlags(),
		ConfigFlag,
		ReaderFlag,
		LogLevelFlag,
		logFileFlag,
		&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Directory of recordings (ignored when files are given)"},
		&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent file analyses (default: GOMAXPROCS)"},
		&cli.Float64Flag{Name: "threshold", Usage: "Movement threshold in metres"},
		&cli.StringFlag{Name: "pilot", Usage: "Tracked pilot name (default: recording author)"},
		&cli.StringFlag{Name: "cache-dir", Usage: "Contribution cache directory"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Suppress progress and result output"},
	)
	flags = append(flags, storageFlags()...)
	flags = append(flags, adapterFlags()...)

	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze recordings and report per-aircraft flight time",
		ArgsUsage: "[FILE...]",
		Flags:     flags,
		Action:    analyzeAction,
	}
}

func analyzeAction(c *cli.Context) error {
	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	tuiMode := c.Bool("tui")
	quiet := c.Bool("quiet")
	if tuiMode && quiet {
		return cli.Exit("--tui and --quiet are mutually exclusive", exitError)
	}

	logger, closeLog, err := buildLogger(c, cfg.LogLevel, tuiMode)
	if err != nil {
		return err
	}
	defer closeLog()

	contribCache, err := openCache(cfg.CacheDir)
	if err != nil {
		return err
	}

	pub, err := newAdapter(cfg.Adapter)
	if err != nil {
		return err
	}
	if pub != nil {
		defer func() { _ = pub.Close() }()
	}

	collector := metrics.NewCollector(cfg.Reader, cfg.Storage.Backend, cfg.Adapter.Type)
	eng := newEngine(cfg, contribCache, collector, logger)

	files, err := selectFiles(eng, cfg, c.Args().Slice())
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	id, err := eng.StartAnalysis(ctx, cfg.Reader, files)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	if tuiMode {
		if _, err := tui.RunAnalysis(eng, id); err != nil {
			_ = eng.Cancel(id)
			return fmt.Errorf("tui: %w", err)
		}
		// Leaving the TUI early abandons the batch.
		if state, _ := eng.Status(id); state == session.StateRunning {
			_ = eng.Cancel(id)
		}
	} else {
		var progressOut io.Writer
		if !quiet && isStderrTTY() {
			progressOut = c.App.ErrWriter
		}
		watchProgress(eng, id, progressOut)
	}

	// In-flight files finish after a cancel.
	if err := eng.Wait(context.Background(), id); err != nil {
		return err
	}

	report, err := buildReport(eng, id, collector)
	if err != nil {
		return err
	}

	sideErr := false
	storagePath := ""
	if cfg.Storage.Enabled() {
		storagePath, err = exportReport(cfg.Storage.Options(), report, collector)
		if err != nil {
			logger.Error("report export failed", map[string]any{
				"session_id": id,
				"error":      err.Error(),
			})
			sideErr = true
		}
	}

	if pub != nil {
		pubCtx, cancel := context.WithTimeout(context.Background(), publishTimeout(cfg.Adapter))
		err := adapter.Publish(pubCtx, pub, adapter.NewEvent(report, storagePath), collector)
		cancel()
		if err != nil {
			logger.Error("completion publish failed", map[string]any{
				"session_id": id,
				"adapter":    cfg.Adapter.Type,
				"error":      err.Error(),
			})
			sideErr = true
		}
	}

	report.Metrics = collector.Snapshot()
	logger.Info("analysis finished", map[string]any{
		"session_id":      id,
		"outcome":         string(report.Outcome),
		"files_succeeded": report.Progress.Successful,
		"files_failed":    report.Progress.Failed,
		"storage_path":    storagePath,
	})

	if !quiet && !tuiMode {
		if err := r.Render(report); err != nil {
			return err
		}
	}

	if code := exitCodeFor(report.Outcome, sideErr); code != exitOK {
		return cli.Exit("", code)
	}
	return nil
}

// exitCodeFor maps a session outcome to the process exit code. A
// cancellation outranks export errors, which outrank file failures.
func exitCodeFor(outcome types.Outcome, sideErr bool) int {
	switch {
	case outcome == types.OutcomeCancelled:
		return exitCancelled
	case sideErr:
		return exitError
	case outcome == types.OutcomeCompletedWithFailures:
		return exitFailures
	default:
		return exitOK
	}
}

func openCache(dir string) (*cache.Cache, error) {
	if dir == "" {
		return nil, nil
	}
	return cache.New(dir)
}

func newEngine(cfg *config.Config, c *cache.Cache, collector *metrics.Collector, logger *log.Logger) *engine.Engine {
	threshold := 0.0
	if cfg.MovementThreshold != nil {
		threshold = *cfg.MovementThreshold
	}
	return engine.New(engine.Options{
		Analyzer: analyzer.Options{MovementThreshold: threshold},
		Pilot:    cfg.Pilot,
		Scheduler: session.Config{
			Workers:     cfg.Workers,
			MaxSessions: cfg.MaxSessions,
			Cache:       c,
			Metrics:     collector,
			Logger:      logger,
		},
		Logger: logger,
	}, tacview.NewReader(tacview.Options{Pilot: cfg.Pilot}))
}

// selectFiles returns args when given, otherwise the recordings found in the
// configured directory.
func selectFiles(eng *engine.Engine, cfg *config.Config, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if cfg.Directory == "" {
		return nil, errors.New("either --dir or FILE arguments are required")
	}
	sel := eng.BrowseFiles(cfg.Reader, cfg.Directory)
	if sel.Error != "" {
		return nil, fmt.Errorf("browse %s: %s", cfg.Directory, sel.Error)
	}
	return sel.Files, nil
}

// watchProgress polls until the session stops running, printing a progress
// line to out when non-nil.
func watchProgress(eng *engine.Engine, id string, out io.Writer) {
	done, err := eng.Done(id)
	if err != nil {
		return
	}
	ticker := time.NewTicker(tui.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			if out != nil {
				p := eng.GetProgress(id)
				_, _ = fmt.Fprintf(out, "\ranalyzed %d/%d (%d failed)\n", p.Successful+p.Failed, p.Total, p.Failed)
			}
			return
		case <-ticker.C:
			if out != nil {
				p := eng.GetProgress(id)
				_, _ = fmt.Fprintf(out, "\ranalyzed %d/%d (%d failed)", p.Successful+p.Failed, p.Total, p.Failed)
			}
		}
	}
}

// buildReport assembles the report of a finished session.
func buildReport(eng *engine.Engine, id string, collector *metrics.Collector) (*lode.Report, error) {
	info, err := eng.Info(id)
	if err != nil {
		return nil, err
	}

	cancelled := info.State == session.StateCancelled
	result := types.AnalysisResult{Aircrafts: []types.Aircraft{}, Failures: []string{}}
	if !cancelled {
		result, err = eng.GetResult(id)
		if err != nil {
			return nil, err
		}
	}

	return &lode.Report{
		SessionID:  info.ID,
		Reader:     info.Reader,
		Outcome:    types.OutcomeOf(cancelled, info.Progress),
		Progress:   info.Progress,
		Result:     result,
		Metrics:    collector.Snapshot(),
		StartedAt:  info.StartedAt,
		FinishedAt: info.FinishedAt,
	}, nil
}

// exportReport writes report to the configured dataset.
func exportReport(opts lode.Options, report *lode.Report, collector *metrics.Collector) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	ds, err := lode.Open(ctx, opts)
	if err != nil {
		return "", err
	}
	return lode.NewWriter(ds, opts.DatasetID(), collector).Write(ctx, report)
}
