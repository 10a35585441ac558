// Package main provides the flightlog CLI entrypoint.
//
// Usage:
//
//	flightlog <command> [options]
//
// Exit codes for `analyze`:
//   - 0: every file analyzed
//   - 1: usage, storage or adapter error
//   - 2: cancelled
//   - 3: completed with failed files
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/flightlog/cli/cmd"
	"github.com/justapithecus/flightlog/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "flightlog",
		Usage:          "Per-aircraft flight time from Tacview recordings",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.BrowseCommand(),
			cmd.AnalyzeCommand(),
			cmd.StatsCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already exited for cli.ExitCoder errors.
		os.Exit(1)
	}
}

// exitErrHandler preserves exit codes from cli.Exit().
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}
	os.Exit(handleExit(os.Stderr, err))
}
