package bridge

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mprisd/internal/models"
	"github.com/desertthunder/mprisd/internal/shared"
	"github.com/desertthunder/mprisd/internal/status"
)

// Recorder stores plays.
type Recorder interface {
	Record(ctx context.Context, p *models.Play) error
}

// historySink records a play each time a new track id reaches the wrapped sink.
type historySink struct {
	Sink
	recorder Recorder
	logger   *log.Logger
	last     string
	now      func() time.Time
}

// WithHistory decorates sink so every Metadata change carrying a new known track id is
// recorded. Recording failures are logged and never block the emit.
func WithHistory(sink Sink, recorder Recorder, logger *log.Logger) Sink {
	return &historySink{
		Sink:     sink,
		recorder: recorder,
		logger:   shared.WithLogger(logger, "component", "history"),
		now:      time.Now,
	}
}

func (h *historySink) EmitChanged(ctx context.Context, groups []Group, snap status.Snapshot) error {
	if Contains(groups, Metadata) {
		h.record(ctx, snap.Track)
	}
	return h.Sink.EmitChanged(ctx, groups, snap)
}

func (h *historySink) record(ctx context.Context, track models.TrackInfo) {
	id, ok := track.ID.Get()
	if !ok || id == h.last {
		return
	}
	h.last = id

	play := models.NewPlay(shared.GenerateID(), track, h.now().UTC())
	if err := h.recorder.Record(ctx, play); err != nil {
		h.logger.Warn("failed to record play", "track", id, "error", err)
		return
	}
	h.logger.Debug("recorded play", "track", id, "title", play.Title)
}

// Run serves the wrapped sink when it is a [Runner], otherwise it waits for ctx.
func (h *historySink) Run(ctx context.Context) error {
	if r, ok := h.Sink.(Runner); ok {
		return r.Run(ctx)
	}
	<-ctx.Done()
	return nil
}
