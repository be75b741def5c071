package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mprisd/internal/bridge"
	"github.com/desertthunder/mprisd/internal/status"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgChanged MsgKind = iota
	MsgPull
	MsgCommandDone
)

type changedData struct {
	groups []bridge.Group
	snap   status.Snapshot
}

type commandData struct {
	name string
	err  error
}

// changedMsg is the constructor for [MsgChanged]
func changedMsg(groups []bridge.Group, snap status.Snapshot) Msg {
	return Msg{kind: MsgChanged, data: changedData{groups, snap}}
}

// pullMsg is the constructor for [MsgPull]
func pullMsg() Msg {
	return Msg{kind: MsgPull}
}

// commandDoneMsg is the constructor for [MsgCommandDone]
func commandDoneMsg(name string, err error) Msg {
	return Msg{kind: MsgCommandDone, data: commandData{name, err}}
}
