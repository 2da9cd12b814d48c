package theme

// Entry icons
const (
	IconFolder      = "" // Nerd Font open folder
	IconFolderPlain = "▸"
	IconSecret      = "" // Nerd Font key
	IconSecretPlain = "·"
	IconLock        = ""
)

// Panel decorations
const (
	PanelDiamond = "◈"
)

// Status indicators
const (
	StatusRunning = "●"
	StatusIdle    = "○"
)

// Breadcrumb separator for the path display in the status bar.
const BreadcrumbSep = " / "

// Spinner frames for loading animations
var SpinnerDots = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
