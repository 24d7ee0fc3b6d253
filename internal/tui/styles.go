package tui

import "github.com/charmbracelet/lipgloss"

// Styles is the wake screen palette.
type Styles struct {
	Title   lipgloss.Style
	Clock   lipgloss.Style
	Label   lipgloss.Style
	Prompt  lipgloss.Style
	Hint    lipgloss.Style
	Success lipgloss.Style
	Danger  lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
	Doc     lipgloss.Style
	// progress bar gradient
	BarFrom string
	BarTo   string
}

func NewStyles(dark bool) Styles {
	fg, muted, accent := "236", "244", "205"
	if dark {
		fg, muted, accent = "252", "240", "212"
	}

	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(accent)).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			Bold(true),
		Clock: lipgloss.NewStyle().
			Foreground(lipgloss.Color(fg)).
			Bold(true).
			MarginTop(1),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(muted)).
			Italic(true),
		Prompt: lipgloss.NewStyle().
			Foreground(lipgloss.Color(fg)).
			Bold(true).
			Width(60),
		Hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true),
		Danger: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(muted)),
		Doc:     lipgloss.NewStyle().Padding(1, 2),
		BarFrom: "#FF7CCB",
		BarTo:   "#FDFF8C",
	}
}
