package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/mprisd/internal/shared"
)

// Command is a message exchanged between the sampler and the publisher.
type Command int

const (
	Ack Command = iota
	Tick
	Stop
)

func (c Command) String() string {
	switch c {
	case Ack:
		return "Ack"
	case Tick:
		return "Tick"
	case Stop:
		return "Stop"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// Gate coordinates one publish round at a time between the sampler and the publisher.
//
// The sampler sends Tick on request and waits for Ack on reply. The publisher only sends
// Ack after it has captured the snapshot and change flags while holding the gate, so the
// sampler's reset can never clear a change the publisher has not seen.
type Gate struct {
	mu      sync.Mutex
	request chan Command
	reply   chan Command
	timeout time.Duration
}

// NewGate returns a gate whose sampler side waits at most ackTimeout for an Ack.
func NewGate(ackTimeout time.Duration) *Gate {
	return &Gate{
		request: make(chan Command, 1),
		reply:   make(chan Command, 1),
		timeout: ackTimeout,
	}
}

// Requests is the publisher's end of the request channel.
func (g *Gate) Requests() <-chan Command {
	return g.request
}

// Round runs the sampler side of one handshake: announce the change, wait for the
// publisher's Ack, then run reset while holding the gate.
//
// Returns [shared.ErrPublisherUnresponsive] when no Ack arrives within the timeout.
func (g *Gate) Round(ctx context.Context, reset func()) error {
	select {
	case g.request <- Tick:
	case <-ctx.Done():
		return ctx.Err()
	}

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	for {
		select {
		case cmd := <-g.reply:
			if cmd != Ack {
				continue
			}
			g.mu.Lock()
			reset()
			g.mu.Unlock()
			return nil
		case <-timer.C:
			return fmt.Errorf("%w after %s", shared.ErrPublisherUnresponsive, g.timeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// TryCapture runs the publisher side of a round. When the gate is free, capture runs
// while it is held and Ack is sent before release. When the gate is busy nothing happens
// and false is returned; the caller retries on its next pass.
//
// A full reply channel means the sampler already gave up on an earlier round, so the Ack is dropped.
func (g *Gate) TryCapture(capture func()) bool {
	if !g.mu.TryLock() {
		return false
	}
	defer g.mu.Unlock()

	capture()
	select {
	case g.reply <- Ack:
	default:
	}
	return true
}

// Stop asks the publisher loop to exit. It never blocks.
func (g *Gate) Stop() {
	select {
	case g.request <- Stop:
	default:
	}
}
