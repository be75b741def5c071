// package models defines value types for playback status
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Optional holds either a known value or nothing.
//
// The zero value is Unknown. Two Optionals are equal when both are Unknown or both hold equal values.
type Optional[T comparable] struct {
	value T
	known bool
}

// Some returns a known [Optional] holding v.
func Some[T comparable](v T) Optional[T] {
	return Optional[T]{value: v, known: true}
}

// None returns an unknown [Optional].
func None[T comparable]() Optional[T] {
	return Optional[T]{}
}

// FromPtr converts a nil-able pointer (as decoded from JSON) into an [Optional].
func FromPtr[T comparable](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// NonEmpty returns None for the empty string and Some(s) otherwise.
func NonEmpty(s string) Optional[string] {
	if s == "" {
		return None[string]()
	}
	return Some(s)
}

// Get returns the held value and whether it is known.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.known
}

// IsKnown reports whether a value is held.
func (o Optional[T]) IsKnown() bool {
	return o.known
}

// OrZero returns the held value, or the zero value of T when unknown.
func (o Optional[T]) OrZero() T {
	return o.value
}

// Or returns the held value, or fallback when unknown.
func (o Optional[T]) Or(fallback T) T {
	if !o.known {
		return fallback
	}
	return o.value
}

func (o Optional[T]) String() string {
	if !o.known {
		return "None"
	}
	return fmt.Sprintf("%v", o.value)
}

// MarshalJSON encodes the held value, or null when unknown.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.known {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null into None and anything else into Some.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// PlaybackState is the transport state of a media source.
type PlaybackState int

const (
	Stopped PlaybackState = iota
	Playing
	Paused
)

func (s PlaybackState) String() string {
	switch s {
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// MarshalJSON encodes the state by name.
func (s PlaybackState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ParsePlaybackState maps a case-insensitive state name onto a [PlaybackState].
func ParsePlaybackState(s string) (PlaybackState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stopped", "":
		return Stopped, nil
	case "playing":
		return Playing, nil
	case "paused":
		return Paused, nil
	default:
		return Stopped, fmt.Errorf("unknown playback state %q", s)
	}
}

// TrackInfo describes the current track. Every field may be unknown.
type TrackInfo struct {
	ID          Optional[string] `json:"id"`
	Title       Optional[string] `json:"title"`
	Artist      Optional[string] `json:"artist"`
	Album       Optional[string] `json:"album"`
	AlbumArtist Optional[string] `json:"album_artist"`
	ArtworkURL  Optional[string] `json:"artwork_url"`
	DiscNumber  Optional[int]    `json:"disc_number"`
	Duration    Optional[int]    `json:"duration_ms"` // Duration in milliseconds
	URL         Optional[string] `json:"url"`
}

// Session bundles the facts returned by one query of a media source.
//
// Track is nil when the source reported no track facts.
type Session struct {
	State    PlaybackState     `json:"state"`
	Volume   Optional[int]     `json:"volume"`   // 0-100
	Shuffle  Optional[bool]    `json:"shuffle"`
	Repeat   Optional[bool]    `json:"repeat"`
	Position Optional[float64] `json:"position"` // Playhead in seconds
	Track    *TrackInfo        `json:"track,omitempty"`
}

// Play is a history record of a track that became current.
type Play struct {
	ID       string    `json:"id"`
	TrackID  string    `json:"track_id"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	Album    string    `json:"album"`
	Duration int       `json:"duration_ms"`
	URL      string    `json:"url"`
	PlayedAt time.Time `json:"played_at"`
}

// NewPlay builds a [Play] from track facts. Unknown fields become empty strings or zero.
func NewPlay(id string, t TrackInfo, at time.Time) *Play {
	return &Play{
		ID:       id,
		TrackID:  t.ID.OrZero(),
		Title:    t.Title.OrZero(),
		Artist:   t.Artist.OrZero(),
		Album:    t.Album.OrZero(),
		Duration: t.Duration.OrZero(),
		URL:      t.URL.OrZero(),
		PlayedAt: at,
	}
}

// Validate checks that a play carries the fields the history table requires.
func (p *Play) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("play id is required")
	}
	if p.TrackID == "" {
		return fmt.Errorf("track id is required")
	}
	if p.PlayedAt.IsZero() {
		return fmt.Errorf("played_at is required")
	}
	return nil
}
