package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mprisd/internal/models"
	"github.com/desertthunder/mprisd/internal/shared"
	"golang.org/x/oauth2"
)

const playbackJSON = `{
	"device": {"id": "d1", "name": "Desk", "type": "Computer", "volume_percent": 55},
	"shuffle_state": true,
	"repeat_state": "context",
	"progress_ms": 61500,
	"is_playing": true,
	"item": {
		"id": "4uLU6hMCjMI75M1A2tKUQC",
		"name": "Never Gonna Give You Up",
		"uri": "spotify:track:4uLU6hMCjMI75M1A2tKUQC",
		"disc_number": 1,
		"duration_ms": 213573,
		"artists": [{"id": "a1", "name": "Rick Astley"}],
		"album": {
			"name": "Whenever You Need Somebody",
			"artists": [{"id": "a1", "name": "Rick Astley"}],
			"images": [{"url": "https://i.scdn.co/image/abc", "height": 640, "width": 640}]
		},
		"external_urls": {"spotify": "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC"}
	}
}`

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
}

func newTestSpotify(t *testing.T, handler http.HandlerFunc) (*SpotifyWebService, func() []recordedRequest) {
	t.Helper()

	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		reqs = append(reqs, recordedRequest{r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("Authorization")})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	svc, err := NewSpotifyWebService(shared.SpotifyConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RedirectURI:  "http://127.0.0.1:3000/callback",
	}, log.New(io.Discard))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	svc.WithBaseURL(server.URL + "/v1")
	svc.Authenticate(context.Background(), &oauth2.Token{
		AccessToken: "test-token",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	})
	return svc, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func TestNewSpotifyWebService(t *testing.T) {
	if _, err := NewSpotifyWebService(shared.SpotifyConfig{ClientID: "id"}, log.New(io.Discard)); !errors.Is(err, shared.ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", err)
	}

	svc, err := NewSpotifyWebService(shared.SpotifyConfig{ClientID: "id", ClientSecret: "s", RedirectURI: "http://x/cb"}, log.New(io.Discard))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	authURL := svc.AuthURL("state123")
	if !strings.HasPrefix(authURL, spotifyAuthURL) || !strings.Contains(authURL, "state=state123") {
		t.Errorf("unexpected auth URL %s", authURL)
	}
	if !strings.Contains(authURL, "user-modify-playback-state") {
		t.Errorf("auth URL should request playback scopes: %s", authURL)
	}

	if _, err := svc.CurrentSession(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated before Authenticate, got %v", err)
	}
	if _, err := svc.Token(); !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSpotifyCurrentSession(t *testing.T) {
	ctx := context.Background()

	t.Run("playing", func(t *testing.T) {
		svc, reqs := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, playbackJSON)
		})

		s, err := svc.CurrentSession(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if s.State != models.Playing || s.Volume != models.Some(55) {
			t.Errorf("unexpected state/volume %v/%v", s.State, s.Volume)
		}
		if s.Repeat != models.Some(true) || s.Shuffle != models.Some(true) {
			t.Errorf("unexpected repeat/shuffle %v/%v", s.Repeat, s.Shuffle)
		}
		if s.Position != models.Some(61.5) {
			t.Errorf("expected position 61.5, got %v", s.Position)
		}
		if s.Track.ID != models.Some("spotify:track:4uLU6hMCjMI75M1A2tKUQC") {
			t.Errorf("expected URI as id, got %v", s.Track.ID)
		}
		if s.Track.AlbumArtist != models.Some("Rick Astley") || s.Track.ArtworkURL != models.Some("https://i.scdn.co/image/abc") {
			t.Errorf("unexpected album facts %+v", s.Track)
		}

		got := reqs()[0]
		if got.Path != "/v1/me/player" || got.Auth != "Bearer test-token" {
			t.Errorf("unexpected request %+v", got)
		}
	})

	t.Run("no content means no session", func(t *testing.T) {
		svc, _ := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		if _, err := svc.CurrentSession(ctx); !errors.Is(err, shared.ErrNoSession) {
			t.Errorf("expected ErrNoSession, got %v", err)
		}
	})

	t.Run("no active device", func(t *testing.T) {
		svc, _ := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error": {"status": 404, "message": "Player command failed: No active device found", "reason": "NO_ACTIVE_DEVICE"}}`)
		})
		if _, err := svc.CurrentSession(ctx); !errors.Is(err, shared.ErrNoSession) {
			t.Errorf("expected ErrNoSession, got %v", err)
		}
	})

	t.Run("server error is transient", func(t *testing.T) {
		svc, _ := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := svc.CurrentSession(ctx)
		if !errors.Is(err, shared.ErrAPIRequest) || errors.Is(err, shared.ErrNoSession) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		svc, _ := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		if _, err := svc.CurrentSession(ctx); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestSpotifyPlaybackSession(t *testing.T) {
	vol := 30
	tests := []struct {
		name     string
		playback SpotifyPlayback
		want     models.PlaybackState
	}{
		{"playing", SpotifyPlayback{IsPlaying: true, Item: &SpotifyTrack{}}, models.Playing},
		{"paused", SpotifyPlayback{Item: &SpotifyTrack{}}, models.Paused},
		{"stopped", SpotifyPlayback{Device: SpotifyDevice{VolumePercent: &vol}}, models.Stopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.playback.Session()
			if s.State != tt.want {
				t.Errorf("expected %v, got %v", tt.want, s.State)
			}
		})
	}

	t.Run("stopped keeps volume only", func(t *testing.T) {
		p := SpotifyPlayback{Device: SpotifyDevice{VolumePercent: &vol}, ShuffleState: true}
		s := p.Session()
		if s.Volume != models.Some(30) || s.Shuffle.IsKnown() || s.Track != nil {
			t.Errorf("unexpected stopped session %+v", s)
		}
	})

	t.Run("restricted device has no volume", func(t *testing.T) {
		p := SpotifyPlayback{IsPlaying: true, Item: &SpotifyTrack{URI: "spotify:track:x"}}
		if p.Session().Volume.IsKnown() {
			t.Error("null volume_percent should be None")
		}
	})
}

func TestSpotifyCommands(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func(*SpotifyWebService) error
		method string
		path   string
		query  string
	}{
		{"play", func(s *SpotifyWebService) error { return s.Play(ctx) }, "PUT", "/v1/me/player/play", ""},
		{"pause", func(s *SpotifyWebService) error { return s.Pause(ctx) }, "PUT", "/v1/me/player/pause", ""},
		{"next", func(s *SpotifyWebService) error { return s.Next(ctx) }, "POST", "/v1/me/player/next", ""},
		{"previous", func(s *SpotifyWebService) error { return s.Previous(ctx) }, "POST", "/v1/me/player/previous", ""},
		{"volume", func(s *SpotifyWebService) error { return s.SetVolume(ctx, -5) }, "PUT", "/v1/me/player/volume", "volume_percent=0"},
		{"shuffle", func(s *SpotifyWebService) error { return s.SetShuffle(ctx, true) }, "PUT", "/v1/me/player/shuffle", "state=true"},
		{"repeat on", func(s *SpotifyWebService) error { return s.SetRepeat(ctx, true) }, "PUT", "/v1/me/player/repeat", "state=context"},
		{"repeat off", func(s *SpotifyWebService) error { return s.SetRepeat(ctx, false) }, "PUT", "/v1/me/player/repeat", "state=off"},
		{"seek", func(s *SpotifyWebService) error { return s.Seek(ctx, 12.345) }, "PUT", "/v1/me/player/seek", "position_ms=12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, reqs := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})

			if err := tt.call(svc); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := reqs()[0]
			if got.Method != tt.method || got.Path != tt.path || got.Query != tt.query {
				t.Errorf("expected %s %s?%s, got %s %s?%s", tt.method, tt.path, tt.query, got.Method, got.Path, got.Query)
			}
		})
	}

	t.Run("toggle pauses when playing", func(t *testing.T) {
		svc, reqs := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				fmt.Fprint(w, playbackJSON)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		if err := svc.Toggle(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reqs()) != 2 || reqs()[1].Path != "/v1/me/player/pause" {
			t.Errorf("expected GET then pause, got %+v", reqs())
		}
	})

	t.Run("premium required", func(t *testing.T) {
		svc, _ := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error": {"status": 403, "message": "Player command failed: Premium required", "reason": "PREMIUM_REQUIRED"}}`)
		})
		err := svc.Next(ctx)
		if !errors.Is(err, shared.ErrAPIRequest) || !strings.Contains(err.Error(), "Premium required") {
			t.Errorf("expected API error with message, got %v", err)
		}
	})
}

func TestFromConfig(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard)

	t.Run("applescript", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		svc, err := FromConfig(ctx, cfg, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := svc.(*AppleScriptService); !ok {
			t.Errorf("expected AppleScriptService, got %T", svc)
		}
	})

	t.Run("web without token", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Bridge.Source = "web"
		if _, err := FromConfig(ctx, cfg, logger); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("web with token", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Bridge.Source = "web"
		cfg.Credentials.Spotify.AccessToken = "tok"
		svc, err := FromConfig(ctx, cfg, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if svc.Name() != "Spotify (Web API)" {
			t.Errorf("unexpected service %s", svc.Name())
		}
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Bridge.Source = "itunes"
		if _, err := FromConfig(ctx, cfg, logger); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
