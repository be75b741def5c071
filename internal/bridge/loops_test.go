package bridge

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mprisd/internal/models"
	"github.com/desertthunder/mprisd/internal/shared"
	"github.com/desertthunder/mprisd/internal/status"
)

type staticSource struct {
	session *models.Session
	err     error
}

func (s *staticSource) CurrentSession(context.Context) (*models.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	c := *s.session
	return &c, nil
}

func discard() *log.Logger {
	return log.New(io.Discard)
}

func TestPublisherPublish(t *testing.T) {
	ctx := context.Background()

	t.Run("emits selected groups with captured snapshot", func(t *testing.T) {
		st := status.New()
		src := &staticSource{session: &models.Session{State: models.Playing, Volume: models.Some(30)}}
		_ = st.Refresh(ctx, src)

		var got []Group
		var snap status.Snapshot
		sink := SinkFunc(func(_ context.Context, groups []Group, s status.Snapshot) error {
			got, snap = groups, s
			return nil
		})

		g := NewGate(time.Second)
		p := NewPublisher(st, g, sink, time.Millisecond, time.Second, discard())
		p.pending = true

		if !p.Publish(ctx) {
			t.Fatal("expected publish to complete")
		}
		if p.pending {
			t.Error("pending should be cleared")
		}
		if !Contains(got, PlaybackStatus) || !Contains(got, Volume) || Contains(got, Metadata) {
			t.Errorf("unexpected groups %v", got)
		}
		if snap.Volume != models.Some(30) {
			t.Errorf("expected snapshot volume 30, got %v", snap.Volume)
		}
		if cmd := <-g.reply; cmd != Ack {
			t.Errorf("expected Ack, got %v", cmd)
		}
	})

	t.Run("clean status emits nothing", func(t *testing.T) {
		calls := 0
		sink := SinkFunc(func(context.Context, []Group, status.Snapshot) error {
			calls++
			return nil
		})

		p := NewPublisher(status.New(), NewGate(time.Second), sink, time.Millisecond, time.Second, discard())
		if !p.Publish(ctx) {
			t.Fatal("expected publish to complete")
		}
		if calls != 0 {
			t.Errorf("expected no emit, got %d", calls)
		}
	})

	t.Run("busy gate keeps tick pending", func(t *testing.T) {
		g := NewGate(time.Second)
		p := NewPublisher(status.New(), g, SinkFunc(func(context.Context, []Group, status.Snapshot) error { return nil }), time.Millisecond, time.Second, discard())
		p.pending = true

		g.mu.Lock()
		if p.Publish(ctx) {
			t.Error("publish should not complete while the gate is held")
		}
		g.mu.Unlock()

		if !p.pending {
			t.Error("tick should stay pending")
		}
	})

	t.Run("sink errors are swallowed", func(t *testing.T) {
		st := status.New()
		_ = st.Refresh(ctx, &staticSource{session: &models.Session{State: models.Paused}})

		sink := SinkFunc(func(context.Context, []Group, status.Snapshot) error {
			return errors.New("bus gone")
		})
		p := NewPublisher(st, NewGate(time.Second), sink, time.Millisecond, time.Second, discard())
		if !p.Publish(ctx) {
			t.Error("a failed emit still completes the round")
		}
	})
}

func TestPublisherRunStops(t *testing.T) {
	g := NewGate(time.Second)
	p := NewPublisher(status.New(), g, SinkFunc(func(context.Context, []Group, status.Snapshot) error { return nil }), time.Millisecond, time.Second, discard())

	done := make(chan error)
	go func() { done <- p.Run(context.Background()) }()
	g.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean stop, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop")
	}
}

func TestSamplerSample(t *testing.T) {
	ctx := context.Background()

	t.Run("no change means no round", func(t *testing.T) {
		st := status.New()
		g := NewGate(10 * time.Millisecond)
		s := NewSampler(st, &staticSource{err: shared.ErrNoSession}, g, time.Millisecond, discard())

		if err := s.Sample(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(g.request) != 0 {
			t.Error("no Tick should be sent without a change")
		}
	})

	t.Run("refresh errors are returned", func(t *testing.T) {
		boom := errors.New("osascript exploded")
		s := NewSampler(status.New(), &staticSource{err: boom}, NewGate(time.Second), time.Millisecond, discard())
		if err := s.Sample(ctx); !errors.Is(err, boom) {
			t.Errorf("expected refresh error, got %v", err)
		}
	})

	t.Run("missing publisher is fatal", func(t *testing.T) {
		st := status.New()
		src := &staticSource{session: &models.Session{State: models.Playing}}
		s := NewSampler(st, src, NewGate(10*time.Millisecond), time.Millisecond, discard())

		err := s.Run(ctx)
		if !errors.Is(err, shared.ErrPublisherUnresponsive) {
			t.Fatalf("expected ErrPublisherUnresponsive, got %v", err)
		}
		if !st.HasChanged() {
			t.Error("unacknowledged changes must stay dirty")
		}
	})

	t.Run("run returns on cancel", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		s := NewSampler(status.New(), &staticSource{err: errors.New("flaky")}, NewGate(time.Second), time.Millisecond, discard())
		if err := s.Run(ctx); err != nil {
			t.Errorf("expected nil on cancellation, got %v", err)
		}
	})
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := shared.DefaultConfig().Bridge
	cfg.AckTimeout = shared.Duration{}

	opts := OptionsFromConfig(cfg)
	if opts.PollInterval != 400*time.Millisecond {
		t.Errorf("expected 400ms poll, got %v", opts.PollInterval)
	}
	if opts.AckTimeout != DefaultOptions().AckTimeout {
		t.Errorf("zero ack timeout should fall back to default, got %v", opts.AckTimeout)
	}

	cfg.EmitTimeout = shared.Duration{Duration: 3 * time.Second}
	opts = OptionsFromConfig(cfg)
	if opts.EmitTimeout != 3*time.Second {
		t.Errorf("expected 3s emit timeout, got %v", opts.EmitTimeout)
	}
	if got := opts.MinAckTimeout(); got != 3*time.Second+opts.PublishInterval {
		t.Errorf("expected emit plus publish interval, got %v", got)
	}
}
