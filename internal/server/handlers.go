package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/mprisd/internal/bridge"
	"github.com/desertthunder/mprisd/internal/services"
	"github.com/desertthunder/mprisd/internal/shared"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// playerCommand runs one transport verb with its query arguments.
type playerCommand func(c services.Commander, ctx context.Context, args url.Values) error

var playerCommands = map[string]playerCommand{
	"play":     noArgs(services.Commander.Play),
	"pause":    noArgs(services.Commander.Pause),
	"toggle":   noArgs(services.Commander.Toggle),
	"next":     noArgs(services.Commander.Next),
	"previous": noArgs(services.Commander.Previous),
	"volume": func(c services.Commander, ctx context.Context, args url.Values) error {
		v, err := intArg(args, "value")
		if err != nil {
			return err
		}
		return c.SetVolume(ctx, v)
	},
	"shuffle": func(c services.Commander, ctx context.Context, args url.Values) error {
		on, err := boolArg(args, "on")
		if err != nil {
			return err
		}
		return c.SetShuffle(ctx, on)
	},
	"repeat": func(c services.Commander, ctx context.Context, args url.Values) error {
		on, err := boolArg(args, "on")
		if err != nil {
			return err
		}
		return c.SetRepeat(ctx, on)
	},
	"seek": func(c services.Commander, ctx context.Context, args url.Values) error {
		raw := args.Get("position")
		if raw == "" {
			return fmt.Errorf("%w: position", shared.ErrMissingArgument)
		}
		pos, err := strconv.ParseFloat(raw, 64)
		if err != nil || pos < 0 {
			return fmt.Errorf("%w: position %q", shared.ErrInvalidArgument, raw)
		}
		return c.Seek(ctx, pos)
	},
}

func noArgs(fn func(services.Commander, context.Context) error) playerCommand {
	return func(c services.Commander, ctx context.Context, _ url.Values) error {
		return fn(c, ctx)
	}
}

func intArg(args url.Values, name string) (int, error) {
	raw := args.Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", shared.ErrInvalidArgument, name, raw)
	}
	return v, nil
}

func boolArg(args url.Values, name string) (bool, error) {
	raw := args.Get(name)
	if raw == "" {
		return false, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s %q", shared.ErrInvalidArgument, name, raw)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.source.Snapshot())
}

// handleWS upgrades the connection and greets the client with the full status.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	hello, err := json.Marshal(Update{Changed: bridge.AllGroups, Status: s.source.Snapshot()})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade websocket", "error", err)
		return
	}

	client, err := s.hub.Register(conn, hello)
	if err != nil {
		s.logger.Warn("rejecting websocket client", "error", err)
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	verb := mux.Vars(r)["verb"]
	run, ok := playerCommands[verb]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", shared.ErrUnsupportedCommand, verb))
		return
	}
	if s.cmd == nil {
		writeError(w, http.StatusServiceUnavailable, shared.ErrSourceUnavailable)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := run(s.cmd, r.Context(), r.Form)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, shared.ErrMissingArgument), errors.Is(err, shared.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, shared.ErrNoSession):
		writeError(w, http.StatusConflict, err)
	default:
		s.logger.Warn("player command failed", "verb", verb, "error", err)
		writeError(w, http.StatusBadGateway, err)
	}
}
