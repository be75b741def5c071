package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/mprisd/internal/bridge"
	"github.com/desertthunder/mprisd/internal/models"
	"github.com/desertthunder/mprisd/internal/services"
	"github.com/desertthunder/mprisd/internal/status"
)

const (
	pullInterval   = 500 * time.Millisecond
	highlightFor   = 1500 * time.Millisecond
	commandTimeout = 5 * time.Second
	volumeStep     = 5
	seekStep       = 10.0
)

// Snapshotter is the pull side of the status aggregate.
type Snapshotter interface {
	Snapshot() status.Snapshot
}

// Model is the root bubbletea model for the status view.
type Model struct {
	source   Snapshotter
	cmd      services.Commander
	identity string

	snap    status.Snapshot
	changed map[bridge.Group]time.Time
	lastCmd string
	err     error

	keys     keyMap
	help     help.Model
	progress progress.Model
	width    int
	now      func() time.Time
}

// NewModel builds a [Model]. cmd may be nil, in which case transport keys only report an error.
func NewModel(source Snapshotter, cmd services.Commander, identity string) Model {
	if identity == "" {
		identity = "Spotify"
	}
	return Model{
		source:   source,
		cmd:      cmd,
		identity: identity,
		snap:     source.Snapshot(),
		changed:  map[bridge.Group]time.Time{},
		keys:     newKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithSolidFill("#1DB954"), progress.WithoutPercentage()),
		now:      time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return pull()
}

func pull() tea.Cmd {
	return tea.Tick(pullInterval, func(time.Time) tea.Msg { return pullMsg() })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = max(msg.Width-24, 10)
		return m, nil
	case tea.KeyMsg:
		return m.handleKeys(msg)
	case Msg:
		return m.handleMsg(msg)
	}
	return m, nil
}

func (m Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgChanged:
		data := msg.data.(changedData)
		m.snap = data.snap
		now := m.now()
		for _, g := range data.groups {
			m.changed[g] = now
		}
		return m, nil
	case MsgPull:
		m.snap = m.source.Snapshot()
		now := m.now()
		for g, at := range m.changed {
			if now.Sub(at) > highlightFor {
				delete(m.changed, g)
			}
		}
		return m, pull()
	case MsgCommandDone:
		data := msg.data.(commandData)
		m.lastCmd = data.name
		m.err = data.err
		return m, nil
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		return m, m.command("toggle", services.Commander.Toggle)
	case key.Matches(msg, m.keys.next):
		return m, m.command("next", services.Commander.Next)
	case key.Matches(msg, m.keys.previous):
		return m, m.command("previous", services.Commander.Previous)
	case key.Matches(msg, m.keys.volUp), key.Matches(msg, m.keys.volDown):
		step := volumeStep
		if key.Matches(msg, m.keys.volDown) {
			step = -volumeStep
		}
		target := m.snap.Volume.Or(50) + step
		return m, m.command(fmt.Sprintf("volume %d", target), func(c services.Commander, ctx context.Context) error {
			return c.SetVolume(ctx, target)
		})
	case key.Matches(msg, m.keys.forward), key.Matches(msg, m.keys.back):
		pos, ok := m.snap.Position.Get()
		if !ok {
			return m, nil
		}
		delta := seekStep
		if key.Matches(msg, m.keys.back) {
			delta = -seekStep
		}
		target := max(pos+delta, 0)
		return m, m.command("seek", func(c services.Commander, ctx context.Context) error {
			return c.Seek(ctx, target)
		})
	case key.Matches(msg, m.keys.shuffle):
		on := !m.snap.Shuffle.OrZero()
		return m, m.command(fmt.Sprintf("shuffle %t", on), func(c services.Commander, ctx context.Context) error {
			return c.SetShuffle(ctx, on)
		})
	case key.Matches(msg, m.keys.repeat):
		on := !m.snap.Repeat.OrZero()
		return m, m.command(fmt.Sprintf("repeat %t", on), func(c services.Commander, ctx context.Context) error {
			return c.SetRepeat(ctx, on)
		})
	}
	return m, nil
}

// command wraps a transport call into a [tea.Cmd] reporting a [MsgCommandDone].
func (m Model) command(name string, fn func(services.Commander, context.Context) error) tea.Cmd {
	c := m.cmd
	return func() tea.Msg {
		if c == nil {
			return commandDoneMsg(name, fmt.Errorf("no source to control"))
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return commandDoneMsg(name, fn(c, ctx))
	}
}

// highlight renders s with the changed style while g is highlighted.
func (m Model) highlight(g bridge.Group, s string) string {
	if _, ok := m.changed[g]; ok {
		return styles.changed.Render(s)
	}
	return s
}

func (m Model) View() string {
	var b strings.Builder
	t := m.snap.Track

	b.WriteString(styles.title.Render("♫ " + m.identity))
	b.WriteString("\n")

	state := styles.stateStyle(m.snap.State).Render(m.snap.State.String())
	b.WriteString(m.line("status", m.highlight(bridge.PlaybackStatus, state)))
	b.WriteString(m.line("title", m.highlight(bridge.Metadata, t.Title.Or("-"))))
	b.WriteString(m.line("artist", t.Artist.Or("-")))
	b.WriteString(m.line("album", t.Album.Or("-")))
	b.WriteString(m.line("position", m.highlight(bridge.Position, m.position())))
	b.WriteString(m.line("volume", m.highlight(bridge.Volume, optional(m.snap.Volume, "%d%%"))))
	b.WriteString(m.line("shuffle", m.highlight(bridge.Shuffle, onOff(m.snap.Shuffle))))
	b.WriteString(m.line("repeat", m.highlight(bridge.LoopStatus, onOff(m.snap.Repeat))))

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("%s: %v", m.lastCmd, m.err)))
	case m.lastCmd != "":
		b.WriteString(styles.help.Render("sent " + m.lastCmd))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return styles.frame.Render(b.String())
}

func (m Model) line(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, styles.label.Render(label), value) + "\n"
}

func (m Model) position() string {
	pos, ok := m.snap.Position.Get()
	if !ok {
		return "-"
	}
	dur, ok := m.snap.Track.Duration.Get()
	if !ok || dur <= 0 {
		return clock(pos)
	}
	total := float64(dur) / 1000
	ratio := min(max(pos/total, 0), 1)
	return fmt.Sprintf("%s %s / %s", m.progress.ViewAs(ratio), clock(pos), clock(total))
}

func clock(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func onOff(o models.Optional[bool]) string {
	v, ok := o.Get()
	switch {
	case !ok:
		return "-"
	case v:
		return "on"
	default:
		return "off"
	}
}

func optional[T comparable](o models.Optional[T], format string) string {
	v, ok := o.Get()
	if !ok {
		return "-"
	}
	return fmt.Sprintf(format, v)
}
