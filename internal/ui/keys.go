package ui

import "charm.land/bubbles/v2/key"

// KeyMap defines all global keybindings.
type KeyMap struct {
	Quit       key.Binding
	Select     key.Binding
	Survey     key.Binding
	ZoomMode   key.Binding
	ResetZoom  key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	PanLeft    key.Binding
	PanRight   key.Binding
	PanUp      key.Binding
	PanDown    key.Binding
	TimeFormat key.Binding
	Clear      key.Binding
	Pause      key.Binding
	Inspect    key.Binding
	DevTools   key.Binding
	Help       key.Binding
	Dismiss    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Select: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "select"),
		),
		Survey: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "measure"),
		),
		ZoomMode: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "zoom axis"),
		),
		ResetZoom: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset zoom"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "zoom out"),
		),
		PanLeft: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "pan left"),
		),
		PanRight: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "pan right"),
		),
		PanUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "pan up"),
		),
		PanDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "pan down"),
		),
		TimeFormat: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "abs/rel time"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear data"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Inspect: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "inspect"),
		),
		DevTools: key.NewBinding(
			key.WithKeys("d", "f12"),
			key.WithHelp("d", "diagnostics"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss"),
		),
	}
}

// ShortHelp returns keybindings to show in the help bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.ZoomMode, k.ResetZoom, k.Pause, k.Inspect, k.Help, k.Quit}
}

// FullHelp returns keybindings for the help dialog, one group per section.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ZoomIn, k.ZoomOut, k.ZoomMode, k.ResetZoom},
		{k.PanLeft, k.PanRight, k.PanUp, k.PanDown},
		{k.Select, k.Survey, k.Inspect, k.Dismiss},
		{k.Pause, k.Clear, k.TimeFormat},
		{k.DevTools, k.Help, k.Quit},
	}
}
