package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/flightlog/cli/render"
)

// BrowseCommand returns the browse command.
// It lists the recordings a reader recognizes in a directory.
func BrowseCommand() *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "List recordings in a directory",
		Flags: append(ReadOnlyFlags(),
			ConfigFlag,
			ReaderFlag,
			LogLevelFlag,
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Directory of recordings"},
		),
		Action: browseAction,
	}
}

func browseAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	// TUI not supported for browse command
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for browse command", exitError)
	}

	cfg, err := loadSettings(c)
	if err != nil {
		return err
	}
	if cfg.Directory == "" {
		return cli.Exit("--dir is required", exitError)
	}

	logger, closeLog, err := buildLogger(c, cfg.LogLevel, false)
	if err != nil {
		return err
	}
	defer closeLog()

	eng := newEngine(cfg, nil, nil, logger)
	sel := eng.BrowseFiles(cfg.Reader, cfg.Directory)
	if err := r.Render(sel); err != nil {
		return err
	}
	if sel.Error != "" {
		return cli.Exit("", exitError)
	}
	return nil
}
