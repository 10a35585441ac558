package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/flightlog/cli/render"
	"github.com/justapithecus/flightlog/cli/tui"
	"github.com/justapithecus/flightlog/lode"
)

// StatsCommand returns the stats command.
// Stats reads the most recent report stored in a dataset.
func StatsCommand() *cli.Command {
	flags := append(ReadOnlyFlags(),
		ConfigFlag,
		&cli.StringFlag{Name: "session-id", Usage: "Read the report of a specific session"},
		&cli.StringFlag{Name: "reader", Usage: "Filter by reader partition"},
		&cli.BoolFlag{Name: "metrics", Usage: "Show only the metrics recorded with the report"},
	)
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show the latest stored analysis report",
		Flags:  append(flags, storageFlags()...),
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}
	if !cfg.Storage.Enabled() {
		return cli.Exit("--storage-backend (or storage.backend in config) is required", exitError)
	}

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	ds, err := lode.Open(ctx, cfg.Storage.Options())
	if err != nil {
		return fmt.Errorf("failed to initialize storage reader: %w", err)
	}

	report, err := lode.QueryLatestReport(ctx, ds, c.String("session-id"), c.String("reader"))
	if errors.Is(err, lode.ErrNoReportFound) {
		return cli.Exit(err.Error(), exitError)
	}
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	if c.Bool("tui") {
		if c.Bool("metrics") {
			return cli.Exit("--tui and --metrics are mutually exclusive", exitError)
		}
		return tui.RunStats(report)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("metrics") {
		return r.Render(report.Metrics)
	}
	return r.Render(report)
}
