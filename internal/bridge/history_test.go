package bridge_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mprisd/internal/bridge"
	"github.com/desertthunder/mprisd/internal/models"
	"github.com/desertthunder/mprisd/internal/status"
	tu "github.com/desertthunder/mprisd/internal/testing"
)

func snapWithTrack(id string) status.Snapshot {
	return status.Snapshot{
		State: models.Playing,
		Track: models.TrackInfo{ID: models.NonEmpty(id), Title: models.Some("Song " + id)},
	}
}

func TestWithHistory(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard)

	t.Run("records new tracks once", func(t *testing.T) {
		rec := &tu.MockRecorder{}
		inner := tu.NewRecordingSink()
		sink := bridge.WithHistory(inner, rec, logger)

		_ = sink.EmitChanged(ctx, []bridge.Group{bridge.Metadata}, snapWithTrack("1"))
		_ = sink.EmitChanged(ctx, []bridge.Group{bridge.Metadata, bridge.Volume}, snapWithTrack("1"))
		_ = sink.EmitChanged(ctx, []bridge.Group{bridge.Metadata}, snapWithTrack("2"))

		if len(rec.Plays) != 2 {
			t.Fatalf("expected 2 plays, got %d", len(rec.Plays))
		}
		if rec.Plays[1].TrackID != "2" || rec.Plays[1].Title != "Song 2" {
			t.Errorf("unexpected play %+v", rec.Plays[1])
		}
		if len(inner.Emits()) != 3 {
			t.Errorf("every emit should reach the inner sink, got %d", len(inner.Emits()))
		}
	})

	t.Run("ignores non metadata groups and unknown ids", func(t *testing.T) {
		rec := &tu.MockRecorder{}
		sink := bridge.WithHistory(tu.NewRecordingSink(), rec, logger)

		_ = sink.EmitChanged(ctx, []bridge.Group{bridge.Volume}, snapWithTrack("1"))
		_ = sink.EmitChanged(ctx, []bridge.Group{bridge.Metadata}, snapWithTrack(""))

		if len(rec.Plays) != 0 {
			t.Errorf("expected no plays, got %d", len(rec.Plays))
		}
	})

	t.Run("recorder errors do not fail the emit", func(t *testing.T) {
		rec := &tu.MockRecorder{Err: errors.New("disk full")}
		sink := bridge.WithHistory(tu.NewRecordingSink(), rec, logger)

		if err := sink.EmitChanged(ctx, []bridge.Group{bridge.Metadata}, snapWithTrack("1")); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("run waits for context without inner runner", func(t *testing.T) {
		sink := bridge.WithHistory(tu.NewRecordingSink(), &tu.MockRecorder{}, logger)
		r, ok := sink.(bridge.Runner)
		if !ok {
			t.Fatal("history sink should implement Runner")
		}

		ctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := r.Run(ctx); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}
