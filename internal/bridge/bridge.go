// package bridge connects a media source to a status sink.
//
// A [Sampler] goroutine refreshes the shared [status.Status] and a [Publisher] goroutine
// pushes change notifications to the [Sink]. The two meet at a [Gate] once per detected change.
package bridge

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mprisd/internal/shared"
	"github.com/desertthunder/mprisd/internal/status"
	"golang.org/x/sync/errgroup"
)

// Options holds the loop timings.
type Options struct {
	PollInterval    time.Duration
	PublishInterval time.Duration
	AckTimeout      time.Duration
	EmitTimeout     time.Duration
}

// DefaultOptions returns the timings used when the config leaves them out.
func DefaultOptions() Options {
	return Options{
		PollInterval:    400 * time.Millisecond,
		PublishInterval: 200 * time.Millisecond,
		AckTimeout:      5 * time.Second,
		EmitTimeout:     2 * time.Second,
	}
}

// OptionsFromConfig reads the loop timings from the [bridge] config section.
func OptionsFromConfig(c shared.BridgeConfig) Options {
	opts := DefaultOptions()
	if d := c.PollInterval.Duration; d > 0 {
		opts.PollInterval = d
	}
	if d := c.PublishInterval.Duration; d > 0 {
		opts.PublishInterval = d
	}
	if d := c.AckTimeout.Duration; d > 0 {
		opts.AckTimeout = d
	}
	if d := c.EmitTimeout.Duration; d > 0 {
		opts.EmitTimeout = d
	}
	return opts
}

// MinAckTimeout is the longest a live publisher can take to answer a Tick: it may be
// inside an emit when the Tick arrives and only looks again on its next tick.
func (o Options) MinAckTimeout() time.Duration {
	return o.EmitTimeout + o.PublishInterval
}

// Bridge is built once at startup and owns everything both loops share.
type Bridge struct {
	Status    *status.Status
	Gate      *Gate
	Sampler   *Sampler
	Publisher *Publisher

	sink   Sink
	logger *log.Logger
}

// New wires a status, a gate and both loops around source and sink.
//
// An AckTimeout that does not exceed [Options.MinAckTimeout] is raised above it.
func New(s *status.Status, source status.Querier, sink Sink, opts Options, logger *log.Logger) *Bridge {
	if floor := opts.MinAckTimeout(); opts.AckTimeout <= floor {
		raised := floor + opts.PublishInterval
		logger.Warn("ack timeout too short for emit timeout, raising", "ack_timeout", opts.AckTimeout, "raised_to", raised)
		opts.AckTimeout = raised
	}
	gate := NewGate(opts.AckTimeout)
	return &Bridge{
		Status:    s,
		Gate:      gate,
		Sampler:   NewSampler(s, source, gate, opts.PollInterval, logger),
		Publisher: NewPublisher(s, gate, sink, opts.PublishInterval, opts.EmitTimeout, logger),
		sink:      sink,
		logger:    logger,
	}
}

// Run starts the publisher, the sampler and, when it implements [Runner], the sink.
//
// Whichever returns first stops the others. The returned error is the first non-nil one,
// e.g. [shared.ErrPublisherUnresponsive] from the sampler.
func (b *Bridge) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if r, ok := b.sink.(Runner); ok {
		g.Go(func() error {
			defer cancel()
			return r.Run(ctx)
		})
	}

	g.Go(func() error {
		defer cancel()
		return b.Publisher.Run(ctx)
	})

	g.Go(func() error {
		defer cancel()
		defer b.Gate.Stop()
		return b.Sampler.Run(ctx)
	})

	b.logger.Info("bridge started")
	err := g.Wait()
	b.logger.Info("bridge stopped", "error", err)
	return err
}
