package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/justapithecus/flightlog/cli/render"
	"github.com/justapithecus/flightlog/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version         string `json:"version" yaml:"version"`
	ContractVersion string `json:"contract_version" yaml:"contract_version"`
	Commit          string `json:"commit" yaml:"commit"`
}

// VersionCommand returns the version command.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  ReadOnlyFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return err
		}

		// TUI not supported for version command
		if c.Bool("tui") {
			return cli.Exit("--tui is not supported for version command", exitError)
		}

		return r.Render(VersionResponse{
			Version:         types.Version,
			ContractVersion: types.ContractVersion,
			Commit:          commit,
		})
	}
}
