package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mprisd/internal/bridge"
	"github.com/desertthunder/mprisd/internal/services"
	"github.com/desertthunder/mprisd/internal/shared"
	"github.com/desertthunder/mprisd/internal/status"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware = mux.MiddlewareFunc

// Handler is an [http.Handler] that knows the path patterns it serves.
type Handler interface {
	http.Handler
	Routes() []string
}

// Snapshotter is the pull side of the status aggregate.
type Snapshotter interface {
	Snapshot() status.Snapshot
}

// Update is the WebSocket payload pushed on every change notification.
type Update struct {
	Changed []bridge.Group  `json:"changed"`
	Status  status.Snapshot `json:"status"`
}

// Server exposes the status over HTTP. It is a [bridge.Sink] and a [bridge.Runner].
type Server struct {
	addr   string
	source Snapshotter
	cmd    services.Commander
	hub    *Hub
	router *mux.Router
	logger *log.Logger
}

var (
	_ bridge.Sink   = (*Server)(nil)
	_ bridge.Runner = (*Server)(nil)
)

// New builds a [Server] listening on addr. cmd may be nil, in which case player routes answer 503.
func New(addr string, source Snapshotter, cmd services.Commander, logger *log.Logger) *Server {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	s := &Server{
		addr:   addr,
		source: source,
		cmd:    cmd,
		hub:    NewHub(logger),
		logger: logger,
	}
	s.router = NewRouter(s.routes, Logging(logger), Recover(logger))
	return s
}

func (s *Server) routes(r *mux.Router) {
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
	r.HandleFunc("/player/{verb}", s.handlePlayer).Methods(http.MethodPost)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the WebSocket client hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// EmitChanged broadcasts the changed groups and snapshot to every WebSocket client.
func (s *Server) EmitChanged(ctx context.Context, groups []bridge.Group, snap status.Snapshot) error {
	data, err := json.Marshal(Update{Changed: groups, Status: snap})
	if err != nil {
		return fmt.Errorf("failed to encode update: %w", err)
	}
	return s.hub.Broadcast(ctx, data)
}

// Run serves HTTP until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSinkUnavailable, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is like [Server.Run] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go s.hub.Run(ctx)

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("http sink listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("http sink: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("error shutting down http sink", "error", err)
	}
	return nil
}
