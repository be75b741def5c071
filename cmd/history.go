package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mprisd/internal/formatter"
	"github.com/desertthunder/mprisd/internal/repositories"
	"github.com/desertthunder/mprisd/internal/shared"
	"github.com/urfave/cli/v3"
)

// History prints recent plays, or the most played tracks with --top.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	db, err := shared.OpenHistory(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer db.Close()
	repo := repositories.NewPlayRepository(db)

	if cmd.Bool("top") {
		top, err := repo.Top(ctx, limit)
		if err != nil {
			return err
		}
		if useJSON {
			return r.writeJSON(top, pretty)
		}
		r.writePlainHeader("Most played")
		for i, t := range top {
			r.writePlain("%2d. %s - %s (%d)\n", i+1, t.Artist, t.Title, t.Plays)
		}
		return nil
	}

	plays, err := repo.List(ctx, limit)
	if err != nil {
		return err
	}
	if useJSON {
		return r.writeJSON(plays, pretty)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if out := cmd.String("output"); out != "" {
		path, err := formatter.WriteExport(format, plays, out)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %d plays to %s\n", len(plays), path)
	}
	if format != formatter.Text {
		data, err := formatter.Render(format, plays)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	r.writePlainHeader(fmt.Sprintf("Recent plays (%d total)", total))
	for _, p := range plays {
		r.writePlain("%s  %s - %s\n", p.PlayedAt.Local().Format("2006-01-02 15:04"), p.Artist, p.Title)
	}
	return nil
}
