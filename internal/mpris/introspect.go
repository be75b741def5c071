package mpris

import (
	"github.com/godbus/dbus/v5/introspect"
)

func prop(name, sig, access string) introspect.Property {
	return introspect.Property{Name: name, Type: sig, Access: access}
}

func method(name string, args ...introspect.Arg) introspect.Method {
	return introspect.Method{Name: name, Args: args}
}

func in(name, sig string) introspect.Arg {
	return introspect.Arg{Name: name, Type: sig, Direction: "in"}
}

func out(name, sig string) introspect.Arg {
	return introspect.Arg{Name: name, Type: sig, Direction: "out"}
}

// node describes the object at [ObjectPath] for org.freedesktop.DBus.Introspectable.
func node() *introspect.Node {
	return &introspect.Node{
		Name: string(ObjectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name: PropsInterface,
				Methods: []introspect.Method{
					method("Get", in("interface_name", "s"), in("property_name", "s"), out("value", "v")),
					method("GetAll", in("interface_name", "s"), out("properties", "a{sv}")),
					method("Set", in("interface_name", "s"), in("property_name", "s"), in("value", "v")),
				},
				Signals: []introspect.Signal{{
					Name: "PropertiesChanged",
					Args: []introspect.Arg{
						{Name: "interface_name", Type: "s"},
						{Name: "changed_properties", Type: "a{sv}"},
						{Name: "invalidated_properties", Type: "as"},
					},
				}},
			},
			{
				Name:    RootInterface,
				Methods: []introspect.Method{method("Raise"), method("Quit")},
				Properties: []introspect.Property{
					prop("CanQuit", "b", "read"),
					prop("CanRaise", "b", "read"),
					prop("CanSetFullscreen", "b", "read"),
					prop("HasTrackList", "b", "read"),
					prop("Identity", "s", "read"),
					prop("DesktopEntry", "s", "read"),
					prop("SupportedUriSchemes", "as", "read"),
					prop("SupportedMimeTypes", "as", "read"),
				},
			},
			{
				Name: PlayerInterface,
				Methods: []introspect.Method{
					method("Next"),
					method("Previous"),
					method("Pause"),
					method("PlayPause"),
					method("Stop"),
					method("Play"),
					method("Seek", in("Offset", "x")),
					method("SetPosition", in("TrackId", "o"), in("Position", "x")),
					method("OpenUri", in("Uri", "s")),
				},
				Properties: []introspect.Property{
					prop("PlaybackStatus", "s", "read"),
					prop("LoopStatus", "s", "readwrite"),
					prop("Rate", "d", "readwrite"),
					prop("Shuffle", "b", "readwrite"),
					prop("Metadata", "a{sv}", "read"),
					prop("Volume", "d", "readwrite"),
					prop("Position", "x", "read"),
					prop("MinimumRate", "d", "read"),
					prop("MaximumRate", "d", "read"),
					prop("CanGoNext", "b", "read"),
					prop("CanGoPrevious", "b", "read"),
					prop("CanPlay", "b", "read"),
					prop("CanPause", "b", "read"),
					prop("CanSeek", "b", "read"),
					prop("CanControl", "b", "read"),
				},
				Signals: []introspect.Signal{{
					Name: "Seeked",
					Args: []introspect.Arg{{Name: "Position", Type: "x"}},
				}},
			},
		},
	}
}
