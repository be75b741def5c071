// Package server exposes the status aggregate over HTTP and WebSocket, and handles the OAuth2 callback.
//
// # Routes
//
//   - GET /status returns the current [status.Snapshot] as JSON.
//   - GET /ws upgrades to a WebSocket. The client first receives every group with the full status,
//     then one [Update] per change notification.
//   - POST /player/{verb} forwards a transport command (play, pause, toggle, next, previous,
//     volume?value=, shuffle?on=, repeat?on=, seek?position=).
//
// Routing uses gorilla/mux. [Middleware] is applied in the order passed to [NewRouter].
//
// # OAuth Callback Handler
//
// [OAuthHandler] validates the state parameter, exchanges the authorization code for a token,
// and delivers a single [OAuthResult]. [AwaitToken] runs a temporary server around it for the
// auth command.
package server
