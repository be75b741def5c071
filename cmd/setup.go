package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/mprisd/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing and runs the history migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			return err
		}
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return err
		}
		r.config = config
		r.writePlain("✓ Config written to %s\n", r.configPath)
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	db, err := shared.OpenHistory(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	return r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
}
