package status

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/mprisd/internal/models"
	"github.com/desertthunder/mprisd/internal/shared"
)

// Querier reports the current session of a media source.
//
// Implementations return an error wrapping [shared.ErrNoSession] when the source has no active session.
type Querier interface {
	CurrentSession(ctx context.Context) (*models.Session, error)
}

// Status is the playback status aggregate.
type Status struct {
	Track    *Track
	State    *Tracked[models.PlaybackState]
	Shuffle  *Tracked[models.Optional[bool]]
	Repeat   *Tracked[models.Optional[bool]]
	Position *Tracked[models.Optional[float64]]
	Volume   *Tracked[models.Optional[int]]
}

// Snapshot is a plain copy of every field of a [Status].
type Snapshot struct {
	State    models.PlaybackState     `json:"state"`
	Shuffle  models.Optional[bool]    `json:"shuffle"`
	Repeat   models.Optional[bool]    `json:"repeat"`
	Position models.Optional[float64] `json:"position"`
	Volume   models.Optional[int]     `json:"volume"`
	Track    models.TrackInfo         `json:"track"`
}

// Changes holds one flag per field of a [Status], set when the field is dirty.
type Changes struct {
	Track    bool
	State    bool
	Shuffle  bool
	Repeat   bool
	Position bool
	Volume   bool
}

// Any reports whether any flag is set.
func (c Changes) Any() bool {
	return c.Track || c.State || c.Shuffle || c.Repeat || c.Position || c.Volume
}

// New returns a Status in the canonical empty state: Stopped with every other field unknown.
func New() *Status {
	return &Status{
		Track:    newTrack(),
		State:    NewTracked(models.Stopped),
		Shuffle:  NewTracked(models.None[bool]()),
		Repeat:   NewTracked(models.None[bool]()),
		Position: NewTracked(models.None[float64]()),
		Volume:   NewTracked(models.None[int]()),
	}
}

func (s *Status) HasChanged() bool {
	return s.Track.HasChanged() ||
		s.State.HasChanged() ||
		s.Shuffle.HasChanged() ||
		s.Repeat.HasChanged() ||
		s.Position.HasChanged() ||
		s.Volume.HasChanged()
}

// Reset acknowledges every pending change.
func (s *Status) Reset() {
	s.Track.Reset()
	s.State.Reset()
	s.Shuffle.Reset()
	s.Repeat.Reset()
	s.Position.Reset()
	s.Volume.Reset()
}

// Changes reports which fields are dirty without modifying anything.
func (s *Status) Changes() Changes {
	return Changes{
		Track:    s.Track.HasChanged(),
		State:    s.State.HasChanged(),
		Shuffle:  s.Shuffle.HasChanged(),
		Repeat:   s.Repeat.HasChanged(),
		Position: s.Position.HasChanged(),
		Volume:   s.Volume.HasChanged(),
	}
}

// Snapshot copies the current value of every field.
func (s *Status) Snapshot() Snapshot {
	return Snapshot{
		State:    s.State.Get(),
		Shuffle:  s.Shuffle.Get(),
		Repeat:   s.Repeat.Get(),
		Position: s.Position.Get(),
		Volume:   s.Volume.Get(),
		Track:    s.Track.Info(),
	}
}

// Refresh queries q once and writes the result into the aggregate.
//
// When the source has no session the aggregate is forced to the canonical empty state and
// Refresh returns nil. Any other query error is returned and leaves the aggregate untouched.
// A Stopped session only updates state and volume.
func (s *Status) Refresh(ctx context.Context, q Querier) error {
	session, err := q.CurrentSession(ctx)
	switch {
	case errors.Is(err, shared.ErrNoSession):
		s.clear()
		return nil
	case err != nil:
		return fmt.Errorf("failed to query session: %w", err)
	case session == nil:
		return fmt.Errorf("%w: source returned no session", shared.ErrSourceUnavailable)
	}

	s.State.Set(session.State)
	s.Volume.Set(session.Volume)
	if session.State == models.Stopped {
		return nil
	}

	s.Shuffle.Set(session.Shuffle)
	s.Repeat.Set(session.Repeat)
	s.Position.Set(session.Position)

	var info models.TrackInfo
	if session.Track != nil {
		info = *session.Track
	}
	s.Track.apply(info)
	return nil
}

func (s *Status) clear() {
	s.State.Set(models.Stopped)
	s.Shuffle.Set(models.None[bool]())
	s.Repeat.Set(models.None[bool]())
	s.Position.Set(models.None[float64]())
	s.Volume.Set(models.None[int]())
	s.Track.apply(models.TrackInfo{})
}
