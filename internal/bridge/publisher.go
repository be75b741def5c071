package bridge

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mprisd/internal/shared"
	"github.com/desertthunder/mprisd/internal/status"
)

// Publisher owns the sink and turns acknowledged rounds into change notifications.
type Publisher struct {
	status   *status.Status
	gate     *Gate
	sink     Sink
	interval time.Duration
	timeout  time.Duration
	logger   *log.Logger
	pending  bool
}

// NewPublisher creates a [Publisher]. Each emit is bounded by emitTimeout.
func NewPublisher(s *status.Status, gate *Gate, sink Sink, interval, emitTimeout time.Duration, logger *log.Logger) *Publisher {
	return &Publisher{
		status:   s,
		gate:     gate,
		sink:     sink,
		interval: interval,
		timeout:  emitTimeout,
		logger:   shared.WithLogger(logger, "component", "publisher"),
	}
}

// Run serves the gate until Stop is received or ctx is done.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-p.gate.Requests():
			switch cmd {
			case Stop:
				p.logger.Debug("stop received")
				return nil
			case Tick:
				p.pending = true
			}
		case <-ticker.C:
		}

		if p.pending {
			p.Publish(ctx)
		}
	}
}

// Publish tries to complete the pending round. The snapshot and change flags are
// captured under the gate; the sink is called after the gate is released.
func (p *Publisher) Publish(ctx context.Context) bool {
	var (
		snap    status.Snapshot
		changes status.Changes
	)

	ok := p.gate.TryCapture(func() {
		changes = p.status.Changes()
		snap = p.status.Snapshot()
	})
	if !ok {
		p.logger.Debug("gate busy, retrying")
		return false
	}
	p.pending = false

	if !changes.Any() {
		return true
	}

	groups := SelectGroups(changes)

	emitCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.sink.EmitChanged(emitCtx, groups, snap); err != nil {
		p.logger.Warn("emit failed", "groups", groups, "error", err)
	}
	return true
}
