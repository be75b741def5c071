package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/mprisd/internal/models"
	"github.com/desertthunder/mprisd/internal/services"
	"github.com/desertthunder/mprisd/internal/shared"
	"github.com/desertthunder/mprisd/internal/status"
	"github.com/urfave/cli/v3"
)

// Status refreshes a fresh status aggregate once and prints the snapshot.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	src, err := r.Source(ctx)
	if err != nil {
		return err
	}

	st := status.New()
	if err := st.Refresh(ctx, src); err != nil {
		return err
	}
	snap := st.Snapshot()

	if cmd.Bool("json") {
		return r.writeJSON(snap, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%s)", snap.State, src.Name()))
	t := snap.Track
	r.writePlain("Title:    %s\n", t.Title.Or("-"))
	r.writePlain("Artist:   %s\n", t.Artist.Or("-"))
	r.writePlain("Album:    %s\n", t.Album.Or("-"))
	r.writePlain("Position: %s / %s\n", seconds(snap.Position), millis(t.Duration))
	r.writePlain("Volume:   %s\n", known(snap.Volume))
	r.writePlain("Shuffle:  %s\n", known(snap.Shuffle))
	r.writePlain("Repeat:   %s\n", known(snap.Repeat))
	return nil
}

func known[T comparable](o models.Optional[T]) string {
	if v, ok := o.Get(); ok {
		return fmt.Sprint(v)
	}
	return "-"
}

func seconds(o models.Optional[float64]) string {
	v, ok := o.Get()
	if !ok {
		return "-"
	}
	s := int(v)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func millis(o models.Optional[int]) string {
	v, ok := o.Get()
	if !ok {
		return "-"
	}
	return seconds(models.Some(float64(v) / 1000))
}

// ctlVerbs maps a verb and its optional argument onto a transport command.
var ctlVerbs = map[string]func(c services.Commander, ctx context.Context, arg string) error{
	"play":     func(c services.Commander, ctx context.Context, _ string) error { return c.Play(ctx) },
	"pause":    func(c services.Commander, ctx context.Context, _ string) error { return c.Pause(ctx) },
	"toggle":   func(c services.Commander, ctx context.Context, _ string) error { return c.Toggle(ctx) },
	"next":     func(c services.Commander, ctx context.Context, _ string) error { return c.Next(ctx) },
	"previous": func(c services.Commander, ctx context.Context, _ string) error { return c.Previous(ctx) },
	"volume": func(c services.Commander, ctx context.Context, arg string) error {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("%w: volume %q", shared.ErrInvalidArgument, arg)
		}
		return c.SetVolume(ctx, v)
	},
	"shuffle": func(c services.Commander, ctx context.Context, arg string) error {
		on, err := parseSwitch(arg)
		if err != nil {
			return err
		}
		return c.SetShuffle(ctx, on)
	},
	"repeat": func(c services.Commander, ctx context.Context, arg string) error {
		on, err := parseSwitch(arg)
		if err != nil {
			return err
		}
		return c.SetRepeat(ctx, on)
	},
	"seek": func(c services.Commander, ctx context.Context, arg string) error {
		pos, err := strconv.ParseFloat(arg, 64)
		if err != nil || pos < 0 {
			return fmt.Errorf("%w: seek position %q", shared.ErrInvalidArgument, arg)
		}
		return c.Seek(ctx, pos)
	},
}

func parseSwitch(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: expected on or off, got %q", shared.ErrInvalidArgument, arg)
	}
}

// Ctl sends a single transport command.
func (r *Runner) Ctl(ctx context.Context, cmd *cli.Command) error {
	verb := strings.ToLower(cmd.StringArg("verb"))
	if verb == "" {
		return fmt.Errorf("%w: verb", shared.ErrMissingArgument)
	}
	run, ok := ctlVerbs[verb]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrUnsupportedCommand, verb)
	}

	src, err := r.Source(ctx)
	if err != nil {
		return err
	}

	r.logger.Debug("sending command", "verb", verb, "source", src.Name())
	if err := run(src, ctx, cmd.StringArg("value")); err != nil {
		return err
	}
	return r.writePlain("✓ %s\n", verb)
}
