// Package mpris exposes the playback status on the session bus as an MPRIS2 media player.
//
// Desktop widgets and playerctl read properties on demand through org.freedesktop.DBus.Properties
// (the pull side, rendered from the live status) and listen for PropertiesChanged, which
// [Server.EmitChanged] sends once per publish round with exactly the changed groups (the push side).
//
// Writes to LoopStatus, Shuffle and Volume and every Player method are forwarded to the media
// source without waiting; the next sample reports the outcome.
package mpris
