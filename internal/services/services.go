package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mprisd/internal/models"
	"github.com/desertthunder/mprisd/internal/shared"
)

// Commander sends transport commands to a media source. Callers treat every command as fire-and-forget.
type Commander interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Toggle(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error

	// SetVolume sets the volume in percent, clamped to 0-100.
	SetVolume(ctx context.Context, percent int) error
	SetShuffle(ctx context.Context, on bool) error
	SetRepeat(ctx context.Context, on bool) error

	// Seek moves the playhead to an absolute position in seconds.
	Seek(ctx context.Context, position float64) error
}

// Service is a media source that can be queried and controlled.
type Service interface {
	// CurrentSession returns the source's current session.
	// Returns an error wrapping [shared.ErrNoSession] when nothing is available to report.
	CurrentSession(ctx context.Context) (*models.Session, error)

	Commander

	// Name returns the name of the source
	Name() string
}

// FromConfig builds the source selected by the [bridge] source key.
func FromConfig(ctx context.Context, cfg *shared.Config, logger *log.Logger) (Service, error) {
	switch cfg.Bridge.Source {
	case "applescript":
		return NewAppleScriptService(nil, logger), nil
	case "web":
		svc, err := NewSpotifyWebService(cfg.Credentials.Spotify, logger)
		if err != nil {
			return nil, err
		}
		tok := cfg.Credentials.Spotify.Token()
		if tok == nil {
			return nil, fmt.Errorf("%w: run the auth command first", shared.ErrNotAuthenticated)
		}
		svc.Authenticate(ctx, tok)
		return svc, nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q", shared.ErrInvalidConfig, cfg.Bridge.Source)
	}
}

func clampVolume(percent int) int {
	return max(0, min(100, percent))
}
