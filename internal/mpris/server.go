package mpris

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mprisd/internal/bridge"
	"github.com/desertthunder/mprisd/internal/services"
	"github.com/desertthunder/mprisd/internal/shared"
	"github.com/desertthunder/mprisd/internal/status"
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	ObjectPath      = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	RootInterface   = "org.mpris.MediaPlayer2"
	PlayerInterface = "org.mpris.MediaPlayer2.Player"
	PropsInterface  = "org.freedesktop.DBus.Properties"
	BusNamePrefix   = "org.mpris.MediaPlayer2."

	commandTimeout = 5 * time.Second
)

// Conn is the part of [dbus.Conn] the server uses.
type Conn interface {
	Export(v any, path dbus.ObjectPath, iface string) error
	Emit(path dbus.ObjectPath, name string, values ...any) error
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)
	ReleaseName(name string) (dbus.ReleaseNameReply, error)
	Close() error
}

// Snapshotter reads the current status.
type Snapshotter interface {
	Snapshot() status.Snapshot
}

// Server is an MPRIS2 player backed by a [Snapshotter] and a [services.Commander].
type Server struct {
	conn     Conn
	status   Snapshotter
	cmd      services.Commander
	busName  string
	identity string
	logger   *log.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// Options configures a [Server].
type Options struct {
	BusName  string
	Identity string
}

// OptionsFromConfig reads the [mpris] config section.
func OptionsFromConfig(c shared.MPRISConfig) Options {
	return Options{BusName: c.BusName, Identity: c.Identity}
}

// Connect opens the session bus and registers a [Server] on it.
func Connect(st Snapshotter, cmd services.Commander, opts Options, logger *log.Logger) (*Server, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSinkUnavailable, err)
	}

	s := New(conn, st, cmd, opts, logger)
	if err := s.Register(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// New creates a [Server] on conn without touching the bus.
func New(conn Conn, st Snapshotter, cmd services.Commander, opts Options, logger *log.Logger) *Server {
	identity := opts.Identity
	if identity == "" {
		identity = "Spotify"
	}
	return &Server{
		conn:     conn,
		status:   st,
		cmd:      cmd,
		busName:  BusNamePrefix + opts.BusName,
		identity: identity,
		logger:   shared.WithLogger(logger, "sink", "mpris"),
	}
}

// BusName returns the well-known name the server owns.
func (s *Server) BusName() string {
	return s.busName
}

// Register exports every interface and claims the bus name.
func (s *Server) Register() error {
	exports := []struct {
		v     any
		iface string
	}{
		{&root{s}, RootInterface},
		{&player{s}, PlayerInterface},
		{&properties{s}, PropsInterface},
		{introspect.NewIntrospectable(node()), "org.freedesktop.DBus.Introspectable"},
	}

	for _, e := range exports {
		if err := s.conn.Export(e.v, ObjectPath, e.iface); err != nil {
			return fmt.Errorf("failed to export %s: %w", e.iface, err)
		}
	}

	reply, err := s.conn.RequestName(s.busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request %s: %w", s.busName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("%w: %s is already taken", shared.ErrSinkUnavailable, s.busName)
	}

	s.logger.Info("registered on session bus", "name", s.busName)
	return nil
}

// EmitChanged sends PropertiesChanged for the player interface carrying exactly groups.
//
// Position is left out: the player interface declares it as not emitting
// PropertiesChanged, and clients read it with Get.
func (s *Server) EmitChanged(ctx context.Context, groups []bridge.Group, snap status.Snapshot) error {
	groups = slices.DeleteFunc(slices.Clone(groups), func(g bridge.Group) bool {
		return g == bridge.Position
	})
	if len(groups) == 0 {
		return nil
	}

	changed := Changed(groups, snap)
	err := s.conn.Emit(ObjectPath, PropsInterface+".PropertiesChanged", PlayerInterface, changed, []string{})
	if err != nil {
		return fmt.Errorf("failed to emit PropertiesChanged: %w", err)
	}

	s.logger.Debug("emitted", "groups", groups)
	return nil
}

// Run serves D-Bus calls until ctx is done, then releases the name and closes the connection.
//
// godbus dispatches incoming calls on its own goroutines, so Run only waits. Commands
// arriving after shutdown starts are dropped; those already running finish first.
func (s *Server) Run(ctx context.Context) error {
	<-ctx.Done()

	if _, err := s.conn.ReleaseName(s.busName); err != nil {
		s.logger.Warn("failed to release bus name", "error", err)
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()

	return s.conn.Close()
}

// dispatch forwards a command to the source without blocking the D-Bus caller.
func (s *Server) dispatch(name string, fn func(c services.Commander, ctx context.Context) error) {
	if s.cmd == nil {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug("shutting down, command dropped", "command", name)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		if err := fn(s.cmd, ctx); err != nil {
			s.logger.Warn("command failed", "command", name, "error", err)
		}
	}()
}
