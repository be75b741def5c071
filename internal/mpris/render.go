package mpris

import (
	"math"
	"regexp"
	"strings"

	"github.com/desertthunder/mprisd/internal/bridge"
	"github.com/desertthunder/mprisd/internal/models"
	"github.com/desertthunder/mprisd/internal/status"
	"github.com/godbus/dbus/v5"
)

// NoTrack is the track id MPRIS reserves for "nothing loaded".
const NoTrack = dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")

var invalidPathChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// TrackPath turns a track id such as "spotify:track:4uLU6h" into "/com/spotify/track/4uLU6h".
func TrackPath(id models.Optional[string]) dbus.ObjectPath {
	v, ok := id.Get()
	if !ok {
		return NoTrack
	}

	parts := strings.Split(v, ":")
	for i, p := range parts {
		parts[i] = invalidPathChars.ReplaceAllString(p, "_")
		if parts[i] == "" {
			parts[i] = "_"
		}
	}

	path := dbus.ObjectPath("/com/" + strings.Join(parts, "/"))
	if !path.IsValid() {
		return NoTrack
	}
	return path
}

// Metadata renders the xesam/mpris metadata map. Unknown fields are left out.
func Metadata(t models.TrackInfo) map[string]dbus.Variant {
	m := map[string]dbus.Variant{
		"mpris:trackid":     dbus.MakeVariant(TrackPath(t.ID)),
		"xesam:trackNumber": dbus.MakeVariant(int32(0)),
	}

	if v, ok := t.Duration.Get(); ok {
		m["mpris:length"] = dbus.MakeVariant(int64(v) * 1000)
	}
	if v, ok := t.ArtworkURL.Get(); ok {
		m["mpris:artUrl"] = dbus.MakeVariant(v)
	}
	if v, ok := t.Title.Get(); ok {
		m["xesam:title"] = dbus.MakeVariant(v)
	}
	if v, ok := t.Album.Get(); ok {
		m["xesam:album"] = dbus.MakeVariant(v)
	}
	if v, ok := t.Artist.Get(); ok {
		m["xesam:artist"] = dbus.MakeVariant([]string{v})
	}
	if v, ok := t.AlbumArtist.Get(); ok {
		m["xesam:albumArtist"] = dbus.MakeVariant([]string{v})
	}
	if v, ok := t.DiscNumber.Get(); ok {
		m["xesam:discNumber"] = dbus.MakeVariant(int32(v))
	}
	if v, ok := t.URL.Get(); ok {
		m["xesam:url"] = dbus.MakeVariant(v)
	}
	return m
}

// LoopStatus maps the repeat flag onto "Playlist" or "None".
func LoopStatus(repeat models.Optional[bool]) string {
	if repeat.OrZero() {
		return "Playlist"
	}
	return "None"
}

// PositionMicros converts seconds to the microseconds MPRIS uses.
func PositionMicros(pos models.Optional[float64]) int64 {
	return int64(math.Round(pos.OrZero() * 1_000_000))
}

// VolumeFraction converts percent to the 0.0-1.0 range MPRIS uses.
func VolumeFraction(vol models.Optional[int]) float64 {
	return float64(vol.OrZero()) / 100
}

// groupValue renders the player property named by g.
func groupValue(g bridge.Group, snap status.Snapshot) dbus.Variant {
	switch g {
	case bridge.Metadata:
		return dbus.MakeVariant(Metadata(snap.Track))
	case bridge.PlaybackStatus:
		return dbus.MakeVariant(snap.State.String())
	case bridge.LoopStatus:
		return dbus.MakeVariant(LoopStatus(snap.Repeat))
	case bridge.Shuffle:
		return dbus.MakeVariant(snap.Shuffle.OrZero())
	case bridge.Volume:
		return dbus.MakeVariant(VolumeFraction(snap.Volume))
	default:
		return dbus.MakeVariant(PositionMicros(snap.Position))
	}
}

// Changed renders the PropertiesChanged payload for groups.
func Changed(groups []bridge.Group, snap status.Snapshot) map[string]dbus.Variant {
	m := make(map[string]dbus.Variant, len(groups))
	for _, g := range groups {
		m[string(g)] = groupValue(g, snap)
	}
	return m
}

// PlayerProperties renders every org.mpris.MediaPlayer2.Player property.
func PlayerProperties(snap status.Snapshot) map[string]dbus.Variant {
	m := Changed(bridge.AllGroups, snap)
	m["Rate"] = dbus.MakeVariant(1.0)
	m["MinimumRate"] = dbus.MakeVariant(1.0)
	m["MaximumRate"] = dbus.MakeVariant(1.0)
	m["CanGoNext"] = dbus.MakeVariant(true)
	m["CanGoPrevious"] = dbus.MakeVariant(true)
	m["CanPlay"] = dbus.MakeVariant(true)
	m["CanPause"] = dbus.MakeVariant(true)
	m["CanSeek"] = dbus.MakeVariant(true)
	m["CanControl"] = dbus.MakeVariant(true)
	return m
}

// RootProperties renders every org.mpris.MediaPlayer2 property.
func RootProperties(identity string) map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"CanQuit":             dbus.MakeVariant(false),
		"CanRaise":            dbus.MakeVariant(false),
		"CanSetFullscreen":    dbus.MakeVariant(false),
		"HasTrackList":        dbus.MakeVariant(false),
		"Identity":            dbus.MakeVariant(identity),
		"DesktopEntry":        dbus.MakeVariant("spotify"),
		"SupportedUriSchemes": dbus.MakeVariant([]string{"spotify"}),
		"SupportedMimeTypes":  dbus.MakeVariant([]string{}),
	}
}
