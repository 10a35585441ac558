package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/flightlog/log"
)

var logFileFlag = &cli.StringFlag{
	Name:  "log-file",
	Usage: "Write logs to this file (TUI mode discards logs otherwise)",
}

// buildLogger returns a logger on the app error writer, or on --log-file.
// In TUI mode logs would corrupt the screen, so they go to --log-file or
// nowhere.
func buildLogger(c *cli.Context, level string, tuiMode bool) (*log.Logger, func(), error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = c.App.ErrWriter
	closeFn := func() {}

	if path := c.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	} else if tuiMode {
		return log.NewNop(), closeFn, nil
	}
	if w == nil {
		w = os.Stderr
	}

	logger := log.New(w, lvl)
	return logger, func() {
		_ = logger.Sync()
		closeFn()
	}, nil
}
