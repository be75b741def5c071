package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/mprisd/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	runner := NewRunner(RunnerOpts{})

	app := &cli.Command{
		Name:    "mprisd",
		Usage:   "Expose Spotify playback status over MPRIS, a terminal UI or HTTP",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("MPRISD_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		Before:   runner.Before,
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.Run(ctx, os.Args)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, shared.ErrPublisherUnresponsive):
		runner.logger.Error("status publisher stopped responding", "error", err)
		os.Exit(2)
	default:
		runner.logger.Fatalf("application error: %v", err)
	}
}
