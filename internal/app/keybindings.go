package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the application-level key bindings. Panel-local
// navigation (cursor movement, search) lives in the panel key maps.
type KeyMap struct {
	// Global keys
	Quit       key.Binding
	Help       key.Binding
	FocusNext  key.Binding
	CycleTheme key.Binding

	// Secret actions
	NewKey    key.Binding
	Edit      key.Binding
	Rename    key.Binding
	Delete    key.Binding
	CopyValue key.Binding
	CopyPath  key.Binding

	// Cache control
	Refresh    key.Binding
	ClearCache key.Binding

	// Layout
	ShrinkBrowser key.Binding
	WidenBrowser  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+h", "?"),
			key.WithHelp("?", "help"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch panel"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("alt+t"),
			key.WithHelp("alt+t", "cycle theme"),
		),

		NewKey: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add secret"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit value"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename key"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		CopyValue: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy value"),
		),
		CopyPath: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "copy path"),
		),

		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh"),
		),
		ClearCache: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear cache"),
		),

		ShrinkBrowser: key.NewBinding(
			key.WithKeys("alt+["),
			key.WithHelp("alt+[", "shrink browser"),
		),
		WidenBrowser: key.NewBinding(
			key.WithKeys("alt+]"),
			key.WithHelp("alt+]", "widen browser"),
		),
	}
}

// ShortHelp returns the short help text for the key map.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit, k.FocusNext, k.NewKey}
}

// FullHelp returns the full help text for the key map.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NewKey, k.Edit, k.Rename, k.Delete},
		{k.CopyValue, k.CopyPath, k.Refresh, k.ClearCache},
		{k.FocusNext, k.CycleTheme, k.ShrinkBrowser, k.WidenBrowser},
		{k.Help, k.Quit},
	}
}
