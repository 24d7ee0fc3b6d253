package system

import (
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/snaprise/internal/cli"
	"github.com/julianstephens/snaprise/internal/clock"
	"github.com/julianstephens/snaprise/internal/feedback"
	"github.com/julianstephens/snaprise/internal/models"
	"github.com/julianstephens/snaprise/internal/tui"
	"github.com/julianstephens/snaprise/internal/wake"
)

// changeFeed forwards session timer changes to the wake screen. Sends after
// close are dropped.
type changeFeed struct {
	mu     sync.Mutex
	ch     chan struct{}
	closed bool
}

func newChangeFeed() *changeFeed {
	return &changeFeed{ch: make(chan struct{}, 1)}
}

func (f *changeFeed) notify() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.ch <- struct{}{}:
	default:
	}
}

func (f *changeFeed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
}

// runWakeSession rings alarm on the terminal until it is dismissed or
// abandoned. buddy overrides the configured buddy mode when non-nil.
func runWakeSession(ctx *cli.Context, alarm models.Alarm, buddy *bool) (bool, error) {
	st, err := ctx.Settings().Get(ctx.Ctx)
	if err != nil {
		return false, err
	}
	resolver, err := ctx.Resolver()
	if err != nil {
		return false, err
	}

	buddyMode := st.BuddyMode
	if buddy != nil {
		buddyMode = *buddy
	}

	feed := newChangeFeed()
	defer feed.close()

	bell := feedback.NewTerminal(os.Stderr)
	session := wake.New(alarm, wake.Options{
		Settings:  st,
		BuddyMode: buddyMode,
		Resolver:  resolver,
		Clock:     clock.Real{},
		Device:    bell,
		Ringer:    bell,
		OnChange:  feed.notify,
	})
	defer session.Close()

	m := tui.New(ctx.Ctx, session, tui.WithChanges(feed.ch), tui.WithDarkTheme(st.DarkTheme))
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx.Ctx)).Run()
	if err != nil {
		return false, fmt.Errorf("wake screen failed: %w", err)
	}
	fm, ok := final.(tui.Model)
	return ok && fm.Dismissed(), nil
}
