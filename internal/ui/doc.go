// Package ui implements a terminal status sink using bubbletea's Elm architecture.
//
// The (view) [Model] pulls a fresh snapshot on a short timer and receives pushed change
// notifications from the publisher through [Sink.EmitChanged], which briefly highlights the
// changed groups. Transport keys are forwarded to the media source as fire-and-forget commands.
//
// Keyboard bindings (space, n/b, +/-, s, r, ←/→, q) are listed via charmbracelet/bubbles/help.
package ui
