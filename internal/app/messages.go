package app

// PanelID identifies a focusable panel.
type PanelID int

const (
	PanelBrowser PanelID = iota
	PanelViewer
)

func (p PanelID) String() string {
	switch p {
	case PanelBrowser:
		return "browser"
	case PanelViewer:
		return "viewer"
	default:
		return "unknown"
	}
}

// Mode is the current interaction mode, derived from whichever overlay
// or prompt is active. Browsing is the default.
type Mode int

const (
	ModeBrowsing Mode = iota
	ModeSearching
	ModeEnteringNewKeyName
	ModeEnteringNewKeyValue
	ModeEnteringRenameTarget
	ModeEnteringEditedValue
	ModeConfirmingDelete
	ModeShowingHelp
)

func (m Mode) String() string {
	switch m {
	case ModeSearching:
		return "searching"
	case ModeEnteringNewKeyName:
		return "new-key-name"
	case ModeEnteringNewKeyValue:
		return "new-key-value"
	case ModeEnteringRenameTarget:
		return "rename"
	case ModeEnteringEditedValue:
		return "edit"
	case ModeConfirmingDelete:
		return "confirm-delete"
	case ModeShowingHelp:
		return "help"
	default:
		return "browsing"
	}
}

// StatusMsg shows a transient message in the status bar.
type StatusMsg struct {
	Text  string
	Error bool
}

// ErrorMsg reports an error to the status bar.
type ErrorMsg struct {
	Err error
}

// TokenReloadedMsg is emitted when the watched token file changes on disk.
type TokenReloadedMsg struct {
	Token string
	Err   error
}

// statusClearMsg expires a transient status message. Seq guards against
// clearing a newer message than the one the timer was armed for.
type statusClearMsg struct {
	Seq int
}
