package sim

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Menu    key.Binding
	Payment key.Binding
	Plain   key.Binding
	Inject  key.Binding
	Reset   key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Menu: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "toggle menu"),
		),
		Payment: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "with payments"),
		),
		Plain: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "without payments"),
		),
		Inject: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "render late email"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset position"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Menu, k.Payment, k.Plain, k.Inject, k.Reset, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
