// Package cmd provides CLI commands for the flightlog binary.
package cmd

import (
	"os"

	"github.com/urfave/cli/v2"
)

// Exit codes for analyze.
const (
	exitOK        = 0
	exitError     = 1
	exitCancelled = 2
	exitFailures  = 3
)

// Shared output flags.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// TUIFlag enables Bubble Tea interactive mode.
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Enable interactive TUI mode (analyze, stats only)",
	}

	// ConfigFlag points at a flightlog.yaml file.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to config file (default: ./flightlog.yaml when present)",
		EnvVars: []string{"FLIGHTLOG_CONFIG"},
	}

	// ReaderFlag selects the recording reader.
	ReaderFlag = &cli.StringFlag{
		Name:  "reader",
		Usage: "Recording reader kind",
		Value: "tacview",
	}

	// LogLevelFlag selects the minimum log level.
	LogLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Usage:   "Log level: debug, info, warn, error",
		EnvVars: []string{"FLIGHTLOG_LOG_LEVEL"},
	}
)

// ReadOnlyFlags returns the shared flags for all read-only commands.
// Includes --tui so unsupported commands can reject it explicitly.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
		TUIFlag,
	}
}

// storageFlags configure the report dataset. Values override the config
// file storage section.
func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "storage-dataset", Usage: "Report dataset ID (default: \"flightlog\")"},
		&cli.StringFlag{Name: "storage-backend", Usage: "Report storage backend: fs, s3, or memory"},
		&cli.StringFlag{Name: "storage-path", Usage: "Storage path (fs: directory, s3: bucket/prefix)"},
		&cli.StringFlag{Name: "storage-region", Usage: "AWS region for S3 backend"},
		&cli.StringFlag{Name: "storage-endpoint", Usage: "Custom S3 endpoint (MinIO, R2)"},
		&cli.BoolFlag{Name: "storage-s3-path-style", Usage: "Use path-style S3 addressing"},
	}
}

// adapterFlags configure the completion adapter.
func adapterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "adapter", Usage: "Completion adapter: webhook or redis"},
		&cli.StringFlag{Name: "adapter-url", Usage: "Adapter endpoint URL"},
		&cli.StringFlag{Name: "adapter-channel", Usage: "Redis pub/sub channel"},
		&cli.StringSliceFlag{Name: "adapter-header", Usage: "Webhook header as Key=Value (repeatable)"},
		&cli.DurationFlag{Name: "adapter-timeout", Usage: "Per-attempt adapter timeout"},
		&cli.IntFlag{Name: "adapter-retries", Usage: "Adapter retry attempts"},
	}
}

// isStderrTTY reports whether stderr is a terminal.
func isStderrTTY() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
