package mpris

import (
	"context"
	"math"

	"github.com/desertthunder/mprisd/internal/services"
	"github.com/desertthunder/mprisd/internal/status"
	"github.com/godbus/dbus/v5"
)

const (
	errUnknownInterface = "org.freedesktop.DBus.Error.UnknownInterface"
	errUnknownProperty  = "org.freedesktop.DBus.Error.UnknownProperty"
	errReadOnly         = "org.freedesktop.DBus.Error.PropertyReadOnly"
	errInvalidArgs      = "org.freedesktop.DBus.Error.InvalidArgs"
	errNotSupported     = "org.freedesktop.DBus.Error.NotSupported"
)

func dbusError(name, msg string) *dbus.Error {
	return dbus.NewError(name, []any{msg})
}

// root implements org.mpris.MediaPlayer2.
type root struct{ s *Server }

func (r *root) Raise() *dbus.Error { return nil }
func (r *root) Quit() *dbus.Error  { return nil }

// player implements org.mpris.MediaPlayer2.Player.
type player struct{ s *Server }

func (p *player) Next() *dbus.Error {
	p.s.dispatch("next", services.Commander.Next)
	return nil
}

func (p *player) Previous() *dbus.Error {
	p.s.dispatch("previous", services.Commander.Previous)
	return nil
}

func (p *player) Pause() *dbus.Error {
	p.s.dispatch("pause", services.Commander.Pause)
	return nil
}

func (p *player) PlayPause() *dbus.Error {
	p.s.dispatch("playpause", services.Commander.Toggle)
	return nil
}

func (p *player) Stop() *dbus.Error {
	p.s.dispatch("stop", services.Commander.Pause)
	return nil
}

func (p *player) Play() *dbus.Error {
	p.s.dispatch("play", services.Commander.Play)
	return nil
}

// Seek moves relative to the current position. Seeking past the end skips to the next track.
func (p *player) Seek(offset int64) *dbus.Error {
	snap := p.s.status.Snapshot()
	target := snap.Position.OrZero() + float64(offset)/1_000_000

	if length, ok := snap.Track.Duration.Get(); ok && target*1000 > float64(length) {
		p.s.dispatch("next", services.Commander.Next)
		return nil
	}

	target = math.Max(target, 0)
	p.s.dispatch("seek", func(c services.Commander, ctx context.Context) error { return c.Seek(ctx, target) })
	return nil
}

// SetPosition is ignored unless trackID names the current track.
func (p *player) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	snap := p.s.status.Snapshot()
	if trackID != TrackPath(snap.Track.ID) || position < 0 {
		return nil
	}
	if length, ok := snap.Track.Duration.Get(); ok && position/1000 > int64(length) {
		return nil
	}

	seconds := float64(position) / 1_000_000
	p.s.dispatch("seek", func(c services.Commander, ctx context.Context) error { return c.Seek(ctx, seconds) })
	return nil
}

func (p *player) OpenUri(uri string) *dbus.Error {
	return dbusError(errNotSupported, "OpenUri is not supported")
}

// properties implements org.freedesktop.DBus.Properties, rendering from the live status on every call.
type properties struct{ s *Server }

func (p *properties) all(iface string) (map[string]dbus.Variant, *dbus.Error) {
	switch iface {
	case RootInterface:
		return RootProperties(p.s.identity), nil
	case PlayerInterface:
		return PlayerProperties(p.s.status.Snapshot()), nil
	default:
		return nil, dbusError(errUnknownInterface, iface)
	}
}

func (p *properties) Get(iface, property string) (dbus.Variant, *dbus.Error) {
	props, err := p.all(iface)
	if err != nil {
		return dbus.Variant{}, err
	}
	v, ok := props[property]
	if !ok {
		return dbus.Variant{}, dbusError(errUnknownProperty, property)
	}
	return v, nil
}

func (p *properties) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	return p.all(iface)
}

func (p *properties) Set(iface, property string, value dbus.Variant) *dbus.Error {
	if iface != PlayerInterface {
		if iface == RootInterface {
			return dbusError(errReadOnly, property)
		}
		return dbusError(errUnknownInterface, iface)
	}

	switch property {
	case "LoopStatus":
		v, ok := value.Value().(string)
		if !ok {
			return dbusError(errInvalidArgs, "LoopStatus must be a string")
		}
		on := v == "Playlist" || v == "Track"
		p.s.dispatch("repeat", func(c services.Commander, ctx context.Context) error { return c.SetRepeat(ctx, on) })
	case "Shuffle":
		on, ok := value.Value().(bool)
		if !ok {
			return dbusError(errInvalidArgs, "Shuffle must be a boolean")
		}
		p.s.dispatch("shuffle", func(c services.Commander, ctx context.Context) error { return c.SetShuffle(ctx, on) })
	case "Volume":
		v, ok := value.Value().(float64)
		if !ok {
			return dbusError(errInvalidArgs, "Volume must be a double")
		}
		percent := int(math.Round(v * 100))
		p.s.dispatch("volume", func(c services.Commander, ctx context.Context) error { return c.SetVolume(ctx, percent) })
	case "Rate":
		// only 1.0 is supported
	default:
		if _, ok := PlayerProperties(status.Snapshot{})[property]; ok {
			return dbusError(errReadOnly, property)
		}
		return dbusError(errUnknownProperty, property)
	}
	return nil
}
