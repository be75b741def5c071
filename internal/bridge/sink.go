package bridge

import (
	"context"

	"github.com/desertthunder/mprisd/internal/status"
)

// Sink receives change notifications from the publisher.
//
// EmitChanged is best effort: errors are logged by the publisher and never touch the status.
// Sinks answer pull requests on their own by calling [status.Status.Snapshot].
type Sink interface {
	EmitChanged(ctx context.Context, groups []Group, snap status.Snapshot) error
}

// Runner is implemented by sinks that serve their consumers until ctx is done.
type Runner interface {
	Run(ctx context.Context) error
}

// SinkFunc adapts a function to a [Sink].
type SinkFunc func(ctx context.Context, groups []Group, snap status.Snapshot) error

func (f SinkFunc) EmitChanged(ctx context.Context, groups []Group, snap status.Snapshot) error {
	return f(ctx, groups, snap)
}
