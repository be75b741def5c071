// AppleScript implementation of [Service] for the Spotify desktop client on macOS
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mprisd/internal/models"
	"github.com/desertthunder/mprisd/internal/shared"
)

const (
	// application isn't running
	errAppNotRunning = -600
	// connection is invalid (application quit mid-query)
	errConnectionInvalid = -609

	fieldSep = "\x1f"
)

// sessionScript reports the session as fields separated by ASCII unit separators.
//
// Stopped sessions only report state and volume.
const sessionScript = `if application "Spotify" is not running then error number -600
set sep to character id 31
tell application "Spotify"
	set st to player state as string
	set vol to sound volume as string
	if st is "stopped" then return st & sep & vol
	set out to st & sep & vol & sep & (shuffling as string) & sep & (repeating as string) & sep & (player position as string)
	try
		set t to current track
		set out to out & sep & (id of t) & sep & (name of t) & sep & (artist of t) & sep & (album of t) & sep & (album artist of t) & sep & (artwork url of t) & sep & ((disc number of t) as string) & sep & ((duration of t) as string) & sep & (spotify url of t)
	end try
	return out
end tell`

var scriptErrCode = regexp.MustCompile(`\((-?\d+)\)\s*$`)

// ScriptRunner executes an AppleScript program and returns its standard output.
type ScriptRunner func(ctx context.Context, script string) (string, error)

// ScriptError is a failed osascript invocation.
type ScriptError struct {
	Code    int
	Message string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("osascript error %d: %s", e.Code, e.Message)
}

// Is maps the "not running" and "connection invalid" codes onto [shared.ErrNoSession].
func (e *ScriptError) Is(target error) bool {
	return target == shared.ErrNoSession && (e.Code == errAppNotRunning || e.Code == errConnectionInvalid)
}

// parseScriptError extracts the trailing "(-600)" style error number from osascript's stderr.
func parseScriptError(stderr string) *ScriptError {
	msg := strings.TrimSpace(stderr)
	m := scriptErrCode.FindStringSubmatch(msg)
	if m == nil {
		return &ScriptError{Message: msg}
	}
	code, _ := strconv.Atoi(m[1])
	return &ScriptError{Code: code, Message: msg}
}

// Osascript runs script through /usr/bin/osascript.
func Osascript(ctx context.Context, script string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", parseScriptError(stderr.String())
		}
		return "", fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// AppleScriptService queries and controls the Spotify desktop client.
type AppleScriptService struct {
	run    ScriptRunner
	logger *log.Logger
}

// NewAppleScriptService creates an [AppleScriptService]. A nil runner uses [Osascript].
func NewAppleScriptService(run ScriptRunner, logger *log.Logger) *AppleScriptService {
	if run == nil {
		run = Osascript
	}
	return &AppleScriptService{run: run, logger: shared.WithLogger(logger, "service", "applescript")}
}

func (s *AppleScriptService) Name() string {
	return "Spotify (AppleScript)"
}

// CurrentSession runs one query script and parses its output.
func (s *AppleScriptService) CurrentSession(ctx context.Context) (*models.Session, error) {
	out, err := s.run(ctx, sessionScript)
	if err != nil {
		return nil, err
	}
	return parseSession(out)
}

func parseSession(out string) (*models.Session, error) {
	fields := strings.Split(strings.TrimSpace(out), fieldSep)
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: unexpected script output %q", shared.ErrSourceUnavailable, out)
	}

	state, err := models.ParsePlaybackState(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}

	session := &models.Session{State: state, Volume: parseInt(fields[1])}
	if state == models.Stopped || len(fields) < 5 {
		return session, nil
	}

	session.Shuffle = parseBool(fields[2])
	session.Repeat = parseBool(fields[3])
	session.Position = parseFloat(fields[4])

	if len(fields) >= 14 {
		session.Track = &models.TrackInfo{
			ID:          parseString(fields[5]),
			Title:       parseString(fields[6]),
			Artist:      parseString(fields[7]),
			Album:       parseString(fields[8]),
			AlbumArtist: parseString(fields[9]),
			ArtworkURL:  parseString(fields[10]),
			DiscNumber:  parseInt(fields[11]),
			Duration:    parseInt(fields[12]),
			URL:         parseString(fields[13]),
		}
	}
	return session, nil
}

func parseString(s string) models.Optional[string] {
	s = strings.TrimSpace(s)
	if s == "missing value" {
		return models.None[string]()
	}
	return models.NonEmpty(s)
}

func parseInt(s string) models.Optional[int] {
	f := parseFloat(s)
	v, ok := f.Get()
	if !ok {
		return models.None[int]()
	}
	return models.Some(int(v))
}

// parseFloat accepts both decimal separators since AppleScript formats numbers with the user's locale.
func parseFloat(s string) models.Optional[float64] {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return models.None[float64]()
	}
	return models.Some(v)
}

func parseBool(s string) models.Optional[bool] {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return models.None[bool]()
	}
	return models.Some(v)
}

func (s *AppleScriptService) tell(ctx context.Context, command string) error {
	script := fmt.Sprintf("if application \"Spotify\" is not running then error number -600\ntell application \"Spotify\" to %s", command)
	if _, err := s.run(ctx, script); err != nil {
		s.logger.Debug("command failed", "command", command, "error", err)
		return fmt.Errorf("spotify %q: %w", command, err)
	}
	return nil
}

func (s *AppleScriptService) Play(ctx context.Context) error     { return s.tell(ctx, "play") }
func (s *AppleScriptService) Pause(ctx context.Context) error    { return s.tell(ctx, "pause") }
func (s *AppleScriptService) Toggle(ctx context.Context) error   { return s.tell(ctx, "playpause") }
func (s *AppleScriptService) Next(ctx context.Context) error     { return s.tell(ctx, "next track") }
func (s *AppleScriptService) Previous(ctx context.Context) error { return s.tell(ctx, "previous track") }

func (s *AppleScriptService) SetVolume(ctx context.Context, percent int) error {
	return s.tell(ctx, fmt.Sprintf("set sound volume to %d", clampVolume(percent)))
}

func (s *AppleScriptService) SetShuffle(ctx context.Context, on bool) error {
	return s.tell(ctx, fmt.Sprintf("set shuffling to %t", on))
}

func (s *AppleScriptService) SetRepeat(ctx context.Context, on bool) error {
	return s.tell(ctx, fmt.Sprintf("set repeating to %t", on))
}

func (s *AppleScriptService) Seek(ctx context.Context, position float64) error {
	if position < 0 {
		position = 0
	}
	return s.tell(ctx, fmt.Sprintf("set player position to %s", strconv.FormatFloat(position, 'f', 3, 64)))
}
