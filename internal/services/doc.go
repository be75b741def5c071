// Package services defines the [Service] interface for media sources and implements it for
// the Spotify desktop client and the Spotify Web API.
//
// # Service Interface
//
// A source answers one question, [Service.CurrentSession], and accepts the transport commands
// in [Commander]. Commands are fire-and-forget: the bridge never reads their results back, the
// next sample does.
//
// # AppleScript Implementation
//
// [AppleScriptService] runs a single osascript program per sample. The program returns state and
// volume for stopped sessions and every field otherwise. osascript error numbers -600 (application
// not running) and -609 (connection invalid) are reported as [shared.ErrNoSession].
//
// # Spotify Web API Implementation
//
// [SpotifyWebService] uses OAuth2 with automatic token refresh and waits on a [rate.Limiter]
// before every request. A 204 from GET /me/player or a 404 with reason NO_ACTIVE_DEVICE is
// reported as [shared.ErrNoSession].
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNoSession] : nothing is playing anywhere
//   - [shared.ErrNotAuthenticated] : no token, or the API rejected it
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrSourceUnavailable] : unparseable osascript output
package services
