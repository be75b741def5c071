package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Media source errors
	ErrNoSession          = fmt.Errorf("no active playback session")
	ErrSourceUnavailable  = fmt.Errorf("media source unavailable")
	ErrUnsupportedCommand = fmt.Errorf("command not supported by media source")
	ErrAPIRequest         = fmt.Errorf("API request failed")

	// Publish handshake errors
	ErrPublisherUnresponsive = fmt.Errorf("publisher did not acknowledge change")

	// Sink errors
	ErrSinkUnavailable = fmt.Errorf("status sink unavailable")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
