package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/mprisd/internal/bridge"
	"github.com/desertthunder/mprisd/internal/mpris"
	"github.com/desertthunder/mprisd/internal/repositories"
	"github.com/desertthunder/mprisd/internal/server"
	"github.com/desertthunder/mprisd/internal/services"
	"github.com/desertthunder/mprisd/internal/shared"
	"github.com/desertthunder/mprisd/internal/status"
	"github.com/desertthunder/mprisd/internal/ui"
	"github.com/urfave/cli/v3"
)

// Run wires the source, status, sink and optional play history together and runs the bridge until
// the context is cancelled or the publisher stops answering.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	cfg := *r.config
	if s := cmd.String("source"); s != "" {
		cfg.Bridge.Source = s
	}
	if s := cmd.String("sink"); s != "" {
		cfg.Bridge.Sink = s
	}
	if d := cmd.Duration("poll-interval"); d > 0 {
		cfg.Bridge.PollInterval = shared.Duration{Duration: d}
	}
	if cmd.Bool("no-history") {
		cfg.Database.History = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.config = &cfg

	// The terminal belongs to the TUI, so logs go to a file.
	if cfg.Bridge.Sink == "tui" && cfg.Log.File == "" {
		if err := r.useFileLogger(filepath.Join(os.TempDir(), "mprisd.log")); err != nil {
			return err
		}
	}

	src, err := r.Source(ctx)
	if err != nil {
		return err
	}
	defer r.persistToken(src)

	st := status.New()
	sink, err := r.buildSink(&cfg, st, src)
	if err != nil {
		return err
	}

	if cfg.Database.History {
		db, err := shared.OpenHistory(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer db.Close()
		sink = bridge.WithHistory(sink, repositories.NewPlayRepository(db), r.logger)
	}

	r.logger.Info("starting bridge",
		"source", src.Name(),
		"sink", cfg.Bridge.Sink,
		"poll", cfg.Bridge.PollInterval.Duration,
		"publish", cfg.Bridge.PublishInterval.Duration)

	b := bridge.New(st, src, sink, bridge.OptionsFromConfig(cfg.Bridge), r.logger)
	return b.Run(ctx)
}

func (r *Runner) buildSink(cfg *shared.Config, st *status.Status, src services.Service) (bridge.Sink, error) {
	switch cfg.Bridge.Sink {
	case "mpris":
		return mpris.Connect(st, src, mpris.OptionsFromConfig(cfg.MPRIS), r.logger)
	case "tui":
		return ui.NewSink(st, src, cfg.MPRIS.Identity), nil
	case "http":
		return server.New(cfg.Server.Addr(), st, src, r.logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown sink %q", shared.ErrInvalidConfig, cfg.Bridge.Sink)
	}
}
