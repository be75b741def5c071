package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mprisd/internal/services"
	"github.com/desertthunder/mprisd/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	source     services.Service
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Source     services.Service
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		source:     opts.Source,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, statusCommand, ctlCommand, authCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config file named by --config and applies the logging settings.
//
// A missing file is not an error: defaults are used and setup can create it later.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	config, err := shared.LoadConfig(r.configPath)
	switch {
	case err == nil:
		r.config = config
	case errors.Is(err, shared.ErrMissingConfig):
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		r.config = shared.DefaultConfig()
	default:
		return ctx, err
	}

	if err := r.config.Validate(); err != nil {
		return ctx, err
	}

	if r.config.Log.File != "" {
		if err := r.useFileLogger(r.config.Log.File); err != nil {
			return ctx, err
		}
	}

	level := r.config.Log.Level
	if l := cmd.String("log-level"); l != "" {
		level = l
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))
	return ctx, nil
}

// SetLogger replaces the logger, e.g. when the terminal is handed to the TUI.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) useFileLogger(path string) error {
	l, err := shared.NewFileLogger(path, r.config.Log)
	if err != nil {
		return err
	}
	l.SetLevel(r.logger.GetLevel())
	r.SetLogger(l)
	return nil
}

// Source returns the configured media source, building it on first use.
func (r *Runner) Source(ctx context.Context) (services.Service, error) {
	if r.source != nil {
		return r.source, nil
	}
	src, err := services.FromConfig(ctx, r.config, r.logger)
	if err != nil {
		return nil, err
	}
	r.source = src
	return src, nil
}

// saveTokens stores tok in the config and writes it back to configPath when one is set.
func (r *Runner) saveTokens(tok *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrInvalidConfig)
	}
	if tok == nil {
		return fmt.Errorf("%w: token cannot be nil", shared.ErrInvalidArgument)
	}

	r.config.Credentials.Spotify.Update(tok)
	if r.configPath == "" {
		return nil
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// tokenHolder is implemented by sources whose OAuth token may be refreshed while running.
type tokenHolder interface {
	Token() (*oauth2.Token, error)
}

// persistToken writes a refreshed source token back to the config file.
func (r *Runner) persistToken(src services.Service) {
	th, ok := src.(tokenHolder)
	if !ok {
		return
	}
	tok, err := th.Token()
	if err != nil {
		r.logger.Warn("could not read refreshed token", "error", err)
		return
	}
	if tok.AccessToken == r.config.Credentials.Spotify.AccessToken {
		return
	}
	if err := r.saveTokens(tok); err != nil {
		r.logger.Warn("could not persist refreshed token", "error", err)
		return
	}
	r.logger.Info("refreshed token saved", "path", r.configPath)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
