package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Snooze   key.Binding
	Wake     key.Binding
	Submit   key.Binding
	Skip     key.Binding
	Fallback key.Binding
	Dismiss  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp lists every binding; the wake screen disables the ones that do
// not apply to the current state.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Snooze, k.Wake, k.Submit, k.Skip, k.Fallback, k.Dismiss, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Snooze, k.Wake, k.Dismiss},
		{k.Submit, k.Skip, k.Fallback},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap uses ctrl chords for challenge actions so plain keys can
// still be typed into the answer field.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Snooze: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "snooze"),
		),
		Wake: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "start challenge"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Skip: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new riddle"),
		),
		Fallback: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "answer a riddle instead"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("enter", "d"),
			key.WithHelp("enter", "dismiss"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "abandon"),
		),
	}
}
