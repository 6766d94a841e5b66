package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Send       key.Binding
	PaddleUp   key.Binding
	PaddleDown key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Quit       key.Binding
}

var Keys = KeyMap{
	Send: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
	PaddleUp: key.NewBinding(
		key.WithKeys("up", "w"),
		key.WithHelp("↑/w", "paddle up"),
	),
	PaddleDown: key.NewBinding(
		key.WithKeys("down", "s"),
		key.WithHelp("↓/s", "paddle down"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "scroll down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "quit"),
	),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.ScrollUp, k.ScrollDown, k.Quit}
}

func (k KeyMap) GameHelp() []key.Binding {
	return []key.Binding{k.PaddleUp, k.PaddleDown, k.Quit}
}
