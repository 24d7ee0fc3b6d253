// Package tui renders the wake screen for a ringing alarm.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/snaprise/internal/wake"
)

const tickInterval = 250 * time.Millisecond

type tickMsg time.Time

// changedMsg reports that a session timer changed state off the update loop.
type changedMsg struct{}

type Model struct {
	ctx     context.Context
	session *wake.Session
	changes <-chan struct{}

	keys   KeyMap
	help   help.Model
	input  textinput.Model
	bar    progress.Model
	styles Styles

	status      string
	statusStyle lipgloss.Style

	width     int
	quitting  bool
	dismissed bool
}

type Option func(*Model)

// WithChanges redraws the screen whenever ch receives, so snooze expiry and
// timeouts show up immediately instead of on the next tick.
func WithChanges(ch <-chan struct{}) Option {
	return func(m *Model) { m.changes = ch }
}

func WithDarkTheme(dark bool) Option {
	return func(m *Model) { m.styles = NewStyles(dark) }
}

func New(ctx context.Context, session *wake.Session, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 128
	ti.Width = 40

	m := Model{
		ctx:     ctx,
		session: session,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		input:   ti,
		styles:  NewStyles(false),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.bar = progress.New(
		progress.WithGradient(m.styles.BarFrom, m.styles.BarTo),
		progress.WithoutPercentage(),
		progress.WithWidth(40),
	)
	m.statusStyle = m.styles.Muted
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), waitForChange(m.changes))
}

// Dismissed reports whether the alarm was dismissed rather than abandoned.
func (m Model) Dismissed() bool {
	return m.dismissed
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (m *Model) setStatus(text string, style lipgloss.Style) {
	m.status = text
	m.statusStyle = style
}
