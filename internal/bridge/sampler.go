package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mprisd/internal/shared"
	"github.com/desertthunder/mprisd/internal/status"
)

// Sampler refreshes the status on a fixed cadence and starts a publish round for every change.
type Sampler struct {
	status   *status.Status
	source   status.Querier
	gate     *Gate
	interval time.Duration
	logger   *log.Logger
}

// NewSampler creates a [Sampler].
func NewSampler(s *status.Status, source status.Querier, gate *Gate, interval time.Duration, logger *log.Logger) *Sampler {
	return &Sampler{
		status:   s,
		source:   source,
		gate:     gate,
		interval: interval,
		logger:   shared.WithLogger(logger, "component", "sampler"),
	}
}

// Run samples until ctx is done. It only returns an error when the publisher stops answering.
func (s *Sampler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := s.Sample(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, shared.ErrPublisherUnresponsive) {
				s.logger.Error("publish handshake failed", "error", err)
				return err
			}
			s.logger.Warn("refresh failed", "error", err)
		}
	}
}

// Sample runs one refresh and, if anything changed, one complete publish round.
func (s *Sampler) Sample(ctx context.Context) error {
	if err := s.status.Refresh(ctx, s.source); err != nil {
		return err
	}

	if !s.status.HasChanged() {
		return nil
	}

	round := shared.GenerateID()
	s.logger.Debug("change detected", "round", round, "changes", s.status.Changes())

	if err := s.gate.Round(ctx, s.status.Reset); err != nil {
		return err
	}

	s.logger.Debug("round acknowledged", "round", round)
	return nil
}
