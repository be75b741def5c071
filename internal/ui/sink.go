package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mprisd/internal/bridge"
	"github.com/desertthunder/mprisd/internal/services"
	"github.com/desertthunder/mprisd/internal/shared"
	"github.com/desertthunder/mprisd/internal/status"
)

// Sink pushes change notifications into a running bubbletea program.
//
// A single forwarder started by Run hands messages to the program, so a stalled
// terminal parks at most that one goroutine.
type Sink struct {
	program *tea.Program
	updates chan tea.Msg
}

var (
	_ bridge.Sink   = (*Sink)(nil)
	_ bridge.Runner = (*Sink)(nil)
)

// NewSink builds the terminal sink. Extra program options (e.g. [tea.WithInput]) are appended to the defaults.
func NewSink(source Snapshotter, cmd services.Commander, identity string, opts ...tea.ProgramOption) *Sink {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return &Sink{
		program: tea.NewProgram(NewModel(source, cmd, identity), opts...),
		updates: make(chan tea.Msg),
	}
}

// EmitChanged hands the changed groups to the forwarder. It gives up when ctx is done,
// which includes the case where the program is not running or is still busy with the
// previous update.
func (s *Sink) EmitChanged(ctx context.Context, groups []bridge.Group, snap status.Snapshot) error {
	select {
	case s.updates <- changedMsg(groups, snap):
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: terminal not accepting updates", shared.ErrSinkUnavailable)
	}
}

func (s *Sink) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.updates:
			s.program.Send(msg)
		}
	}
}

// Run runs the program until the user quits or ctx is done.
func (s *Sink) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.forward(ctx)
	go func() {
		<-ctx.Done()
		s.program.Quit()
	}()

	if _, err := s.program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
