package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/snaprise/internal/challenge"
	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/logger"
	"github.com/julianstephens/snaprise/internal/wake"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.bar.Width = max(min(msg.Width-8, 60), 10)
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		return m, tick()

	case changedMsg:
		return m, waitForChange(m.changes)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		logger.Warn("Wake session abandoned", "alarm", m.session.Snapshot().Alarm.ID)
		m.session.Close()
		m.quitting = true
		return m, tea.Quit
	}

	st := m.session.Snapshot()
	switch st.ChallengeState() {
	case constants.ChallengeNotStarted:
		return m.handleRinging(msg)
	case constants.ChallengeSucceeded:
		if key.Matches(msg, m.keys.Dismiss) {
			if err := m.session.Dismiss(); err != nil {
				m.setStatus(err.Error(), m.styles.Danger)
				return m, nil
			}
			m.dismissed = true
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}
	return m.handleChallenge(msg, st)
}

func (m Model) handleRinging(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Snooze):
		res := m.session.Snooze()
		if res == wake.SnoozeAccepted {
			until := m.session.Snapshot().SnoozedUntil
			m.setStatus("Snoozed until "+until.Format(constants.TimeFormat), m.styles.Muted)
		} else {
			m.setStatus(capitalize(res.String()), m.styles.Warning)
		}
	case key.Matches(msg, m.keys.Wake):
		if err := m.session.BeginChallenge(m.ctx); err != nil {
			m.setStatus(err.Error(), m.styles.Danger)
			return m, nil
		}
		m.setStatus("", m.styles.Muted)
		m.input.Reset()
		m.input.Placeholder = placeholder(m.session.Snapshot().Challenge)
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) handleChallenge(msg tea.KeyMsg, st wake.State) (tea.Model, tea.Cmd) {
	c := st.Challenge
	switch {
	case key.Matches(msg, m.keys.Skip):
		if err := m.session.Skip(); err != nil {
			m.setStatus(capitalize(err.Error()), m.styles.Warning)
		} else {
			m.setStatus("Here's a different one.", m.styles.Muted)
			m.input.Reset()
		}
		return m, nil

	case key.Matches(msg, m.keys.Fallback):
		if err := m.session.AcceptFallback(); err != nil {
			if errors.Is(err, challenge.ErrFallbackUnavailable) {
				m.setStatus("A riddle is only offered once the scan times out.", m.styles.Warning)
			} else {
				m.setStatus(err.Error(), m.styles.Danger)
			}
			return m, nil
		}
		m.setStatus("Answer this riddle instead.", m.styles.Muted)
		m.input.Reset()
		m.input.Placeholder = placeholder(m.session.Snapshot().Challenge)
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if c.State == constants.ChallengeTimedOut {
			m.setStatus("Time's up. Press ctrl+r to answer a riddle instead.", m.styles.Warning)
			return m, nil
		}
		value := m.input.Value()
		if strings.TrimSpace(value) == "" {
			return m, nil
		}

		var passed bool
		if c.Kind == constants.ChallengeBarcode {
			passed = m.session.SubmitBarcode(value)
		} else {
			passed = m.session.SubmitAnswer(value)
		}
		m.input.Reset()
		if passed {
			m.input.Blur()
			m.setStatus("Correct! Press enter to dismiss.", m.styles.Success)
		} else if c.Kind == constants.ChallengeBarcode {
			m.setStatus("That code doesn't match. Scan again.", m.styles.Danger)
		} else {
			m.setStatus("Not quite. Try again.", m.styles.Danger)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func placeholder(c *challenge.Instance) string {
	if c != nil && c.Kind == constants.ChallengeBarcode {
		return "scan or type the code"
	}
	return "your answer"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
