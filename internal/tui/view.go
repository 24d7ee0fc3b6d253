package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/snaprise/internal/constants"
	"github.com/julianstephens/snaprise/internal/wake"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.session.Snapshot()
	var body string
	switch st.ChallengeState() {
	case constants.ChallengeNotStarted:
		body = m.viewRinging(st)
	case constants.ChallengeSucceeded:
		body = m.styles.Success.Render("Challenge complete. You're awake!")
	default:
		body = m.viewChallenge(st)
	}

	sections := []string{
		m.viewHeader(st),
		body,
	}
	if m.status != "" {
		sections = append(sections, m.statusStyle.Render(m.status))
	}
	sections = append(sections, "", m.help.View(m.helpKeys(st)))

	return m.styles.Doc.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) viewHeader(st wake.State) string {
	title := m.styles.Title.Render("⏰ " + constants.AppName)
	clock := m.styles.Clock.Render(st.Alarm.Time)
	label := m.styles.Label.Render(st.Alarm.DisplayName())
	return lipgloss.JoinVertical(lipgloss.Left, title, clock, label, "")
}

func (m Model) viewRinging(st wake.State) string {
	var lines []string
	if st.Ringing {
		lines = append(lines, m.styles.Danger.Render("Wake up!"))
	} else if !st.SnoozedUntil.IsZero() {
		lines = append(lines, m.styles.Muted.Render("Snoozed until "+st.SnoozedUntil.Format(constants.TimeFormat)))
	}

	switch {
	case st.BuddyMode:
		lines = append(lines, m.styles.Warning.Render("Buddy mode is on: snoozing is disabled."))
	case st.SnoozesLeft() == 0:
		lines = append(lines, m.styles.Warning.Render("No snoozes left."))
	default:
		lines = append(lines, m.styles.Muted.Render(fmt.Sprintf("Snoozes left: %d", st.SnoozesLeft())))
	}
	lines = append(lines, "", "Press enter to start your "+st.Alarm.Challenge.String()+" challenge.")
	return strings.Join(lines, "\n")
}

func (m Model) viewChallenge(st wake.State) string {
	c := st.Challenge
	var lines []string

	if c.Fallback {
		lines = append(lines, m.styles.Warning.Render("Barcode unavailable: answer a riddle instead."))
	}
	if c.Kind == constants.ChallengeRiddle {
		lines = append(lines, m.styles.Label.Render(fmt.Sprintf("Riddle (%s)", c.Difficulty)))
	}
	lines = append(lines, m.styles.Prompt.Render(c.Prompt()))

	if hint := c.Hint(); hint != "" {
		lines = append(lines, m.styles.Hint.Render("Hint: "+hint))
	}
	if c.Attempts > 0 {
		lines = append(lines, m.styles.Muted.Render(fmt.Sprintf("Wrong answers: %d", c.Attempts)))
	}

	if c.State == constants.ChallengeTimedOut {
		lines = append(lines, "", m.styles.Danger.Render("Time's up."))
		if c.FallbackOffered {
			lines = append(lines, "Press ctrl+r to answer a riddle instead.")
		}
		return strings.Join(lines, "\n")
	}

	remaining := c.Remaining(m.session.Now())
	lines = append(lines,
		"",
		m.input.View(),
		"",
		m.bar.ViewAs(fraction(remaining, c.TimeLimit())),
		m.styles.Muted.Render(fmt.Sprintf("%ds left", int(remaining.Round(time.Second).Seconds()))),
	)
	return strings.Join(lines, "\n")
}

func (m Model) helpKeys(st wake.State) KeyMap {
	k := m.keys
	switch st.ChallengeState() {
	case constants.ChallengeNotStarted:
		k.Submit.SetEnabled(false)
		k.Skip.SetEnabled(false)
		k.Fallback.SetEnabled(false)
		k.Dismiss.SetEnabled(false)
		k.Snooze.SetEnabled(st.SnoozesLeft() > 0)
	case constants.ChallengeSucceeded:
		k.Snooze.SetEnabled(false)
		k.Wake.SetEnabled(false)
		k.Submit.SetEnabled(false)
		k.Skip.SetEnabled(false)
		k.Fallback.SetEnabled(false)
	default:
		k.Snooze.SetEnabled(false)
		k.Wake.SetEnabled(false)
		k.Dismiss.SetEnabled(false)
		k.Skip.SetEnabled(st.Challenge.Kind == constants.ChallengeRiddle)
		k.Fallback.SetEnabled(st.Challenge.FallbackOffered && st.Challenge.Kind == constants.ChallengeBarcode)
	}
	return k
}

func fraction(remaining, limit time.Duration) float64 {
	if limit <= 0 {
		return 0
	}
	return min(max(remaining.Seconds()/limit.Seconds(), 0), 1)
}
