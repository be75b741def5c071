// Spotify Web API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mprisd/internal/models"
	"github.com/desertthunder/mprisd/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	Images  []SpotifyImage  `json:"images"`
	URI     string          `json:"uri"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	DiscNumber   int             `json:"disc_number"`
	DurationMS   int             `json:"duration_ms"`
	URI          string          `json:"uri"`
	ExternalURLs externalURLs    `json:"external_urls"`
}

// SpotifyDevice is the device a playback state belongs to.
type SpotifyDevice struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	VolumePercent *int   `json:"volume_percent"`
}

// SpotifyPlayback is the response of GET /me/player.
type SpotifyPlayback struct {
	Device       SpotifyDevice `json:"device"`
	ShuffleState bool          `json:"shuffle_state"`
	RepeatState  string        `json:"repeat_state"` // off, track, context
	ProgressMS   *int          `json:"progress_ms"`
	IsPlaying    bool          `json:"is_playing"`
	Item         *SpotifyTrack `json:"item"`
}

type spotifyError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Reason  string `json:"reason"`
	} `json:"error"`
}

// Session converts a playback state into a [models.Session].
//
// A state without an item is Stopped and only carries the volume.
func (p *SpotifyPlayback) Session() *models.Session {
	session := &models.Session{Volume: models.FromPtr(p.Device.VolumePercent)}
	switch {
	case p.IsPlaying:
		session.State = models.Playing
	case p.Item != nil:
		session.State = models.Paused
	default:
		session.State = models.Stopped
		return session
	}

	session.Shuffle = models.Some(p.ShuffleState)
	session.Repeat = models.Some(p.RepeatState != "" && p.RepeatState != "off")
	if p.ProgressMS != nil {
		session.Position = models.Some(float64(*p.ProgressMS) / 1000)
	}
	if p.Item != nil {
		session.Track = p.Item.Info()
	}
	return session
}

// Info maps the track onto [models.TrackInfo]. The URI is used as the id to match the desktop client.
func (t *SpotifyTrack) Info() *models.TrackInfo {
	info := &models.TrackInfo{
		ID:       models.NonEmpty(t.URI),
		Title:    models.NonEmpty(t.Name),
		Album:    models.NonEmpty(t.Album.Name),
		URL:      models.NonEmpty(t.ExternalURLs.Spotify),
		Duration: models.Some(t.DurationMS),
	}
	if t.DiscNumber > 0 {
		info.DiscNumber = models.Some(t.DiscNumber)
	}
	if len(t.Artists) > 0 {
		info.Artist = models.NonEmpty(t.Artists[0].Name)
	}
	if len(t.Album.Artists) > 0 {
		info.AlbumArtist = models.NonEmpty(t.Album.Artists[0].Name)
	}
	if len(t.Album.Images) > 0 {
		info.ArtworkURL = models.NonEmpty(t.Album.Images[0].URL)
	}
	return info
}

// SpotifyWebService implements [Service] against the Spotify Web API player endpoints.
// Uses [oauth2] for authentication and a [rate.Limiter] in front of every request.
type SpotifyWebService struct {
	config     *oauth2.Config
	source     oauth2.TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	logger     *log.Logger
}

// NewSpotifyWebService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyWebService(creds shared.SpotifyConfig, logger *log.Logger) (*SpotifyWebService, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes: []string{
			"user-read-playback-state",
			"user-modify-playback-state",
			"user-read-currently-playing",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyWebService{
		config:  config,
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 4),
		baseURL: spotifyBaseURL,
		logger:  shared.WithLogger(logger, "service", "spotify"),
	}, nil
}

// WithBaseURL points the service at another API root.
func (s *SpotifyWebService) WithBaseURL(u string) *SpotifyWebService {
	s.baseURL = u
	return s
}

// Authenticate installs tok. Expired access tokens are refreshed automatically.
func (s *SpotifyWebService) Authenticate(ctx context.Context, tok *oauth2.Token) {
	s.source = s.config.TokenSource(ctx, tok)
	s.httpClient = oauth2.NewClient(ctx, s.source)
}

// Exchange trades an authorization code for a token and authenticates with it.
func (s *SpotifyWebService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	s.Authenticate(ctx, tok)
	return tok, nil
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyWebService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Token returns the current (possibly refreshed) token so it can be persisted.
func (s *SpotifyWebService) Token() (*oauth2.Token, error) {
	if s.source == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return s.source.Token()
}

func (s *SpotifyWebService) Name() string {
	return "Spotify (Web API)"
}

// doRequest performs an authenticated HTTP request to the Spotify API.
//
// 204 responses leave result untouched and return errNoContent.
func (s *SpotifyWebService) doRequest(ctx context.Context, method, endpoint string, query url.Values, result any) error {
	if s.httpClient == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return errNoContent
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: spotify returned 401", shared.ErrNotAuthenticated)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return apiError(resp)
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		if errors.Is(err, io.EOF) {
			return errNoContent
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

var errNoContent = fmt.Errorf("no content")

// apiError maps an error response. NO_ACTIVE_DEVICE means there is no session to report.
func apiError(resp *http.Response) error {
	var body spotifyError
	_ = json.NewDecoder(resp.Body).Decode(&body)

	if resp.StatusCode == http.StatusNotFound && body.Error.Reason == "NO_ACTIVE_DEVICE" {
		return fmt.Errorf("%w: %s", shared.ErrNoSession, body.Error.Message)
	}
	return fmt.Errorf("%w: status %d %s", shared.ErrAPIRequest, resp.StatusCode, body.Error.Message)
}

// Playback retrieves GET /me/player.
func (s *SpotifyWebService) Playback(ctx context.Context) (*SpotifyPlayback, error) {
	var playback SpotifyPlayback
	err := s.doRequest(ctx, http.MethodGet, "/me/player", nil, &playback)
	if errors.Is(err, errNoContent) {
		return nil, fmt.Errorf("%w: no playback state", shared.ErrNoSession)
	}
	if err != nil {
		return nil, err
	}
	return &playback, nil
}

func (s *SpotifyWebService) CurrentSession(ctx context.Context) (*models.Session, error) {
	playback, err := s.Playback(ctx)
	if err != nil {
		return nil, err
	}
	return playback.Session(), nil
}

func (s *SpotifyWebService) command(ctx context.Context, method, endpoint string, query url.Values) error {
	err := s.doRequest(ctx, method, endpoint, query, nil)
	if errors.Is(err, errNoContent) {
		return nil
	}
	if err != nil {
		s.logger.Debug("command failed", "endpoint", endpoint, "error", err)
	}
	return err
}

func (s *SpotifyWebService) Play(ctx context.Context) error {
	return s.command(ctx, http.MethodPut, "/me/player/play", nil)
}

func (s *SpotifyWebService) Pause(ctx context.Context) error {
	return s.command(ctx, http.MethodPut, "/me/player/pause", nil)
}

// Toggle pauses when playing and plays otherwise.
func (s *SpotifyWebService) Toggle(ctx context.Context) error {
	playback, err := s.Playback(ctx)
	if err != nil {
		return err
	}
	if playback.IsPlaying {
		return s.Pause(ctx)
	}
	return s.Play(ctx)
}

func (s *SpotifyWebService) Next(ctx context.Context) error {
	return s.command(ctx, http.MethodPost, "/me/player/next", nil)
}

func (s *SpotifyWebService) Previous(ctx context.Context) error {
	return s.command(ctx, http.MethodPost, "/me/player/previous", nil)
}

func (s *SpotifyWebService) SetVolume(ctx context.Context, percent int) error {
	q := url.Values{"volume_percent": {strconv.Itoa(clampVolume(percent))}}
	return s.command(ctx, http.MethodPut, "/me/player/volume", q)
}

func (s *SpotifyWebService) SetShuffle(ctx context.Context, on bool) error {
	q := url.Values{"state": {strconv.FormatBool(on)}}
	return s.command(ctx, http.MethodPut, "/me/player/shuffle", q)
}

func (s *SpotifyWebService) SetRepeat(ctx context.Context, on bool) error {
	state := "off"
	if on {
		state = "context"
	}
	return s.command(ctx, http.MethodPut, "/me/player/repeat", url.Values{"state": {state}})
}

func (s *SpotifyWebService) Seek(ctx context.Context, position float64) error {
	ms := int(math.Round(max(position, 0) * 1000))
	return s.command(ctx, http.MethodPut, "/me/player/seek", url.Values{"position_ms": {strconv.Itoa(ms)}})
}
