package layout

// Layout constants
const (
	DefaultBrowserPercent = 35
	MinBrowserPercent     = 20
	MaxBrowserPercent     = 65
	PromptHeight          = 3 // bordered single-line input strip
	StatusBarHeight       = 1
	MinPanelWidth         = 20
	MinPanelHeight        = 5
)

// Layout holds calculated dimensions for all panels.
type Layout struct {
	// Total terminal dimensions
	TotalWidth  int
	TotalHeight int

	// Panel widths
	BrowserWidth int
	ViewerWidth  int

	// Panel heights
	MainHeight int

	// Status bar
	StatusHeight int

	// Visibility flags
	PromptVisible bool
}

// Calculate computes the layout dimensions based on terminal size.
// browserPercent controls the width of the left panel (entry browser).
// promptVisible reserves a strip above the status bar for text entry.
func Calculate(width, height int, promptVisible bool, browserPercent int) Layout {
	l := Layout{
		TotalWidth:    width,
		TotalHeight:   height,
		StatusHeight:  StatusBarHeight,
		PromptVisible: promptVisible,
	}

	// Clamp browser panel percentage to valid range
	if browserPercent < MinBrowserPercent {
		browserPercent = MinBrowserPercent
	}
	if browserPercent > MaxBrowserPercent {
		browserPercent = MaxBrowserPercent
	}

	// Calculate horizontal split
	l.BrowserWidth = max(width*browserPercent/100, MinPanelWidth)
	l.ViewerWidth = max(width-l.BrowserWidth, MinPanelWidth)

	// Ensure we don't exceed total width
	if l.BrowserWidth+l.ViewerWidth > width {
		l.ViewerWidth = width - l.BrowserWidth
	}

	// Reserve status bar and, when active, the prompt strip
	availableHeight := height - l.StatusHeight
	if promptVisible {
		availableHeight -= PromptHeight
	}
	l.MainHeight = max(availableHeight, MinPanelHeight)

	return l
}

// ContentWidth returns the inner width for content (excluding borders).
func (l Layout) ContentWidth(panelWidth int, borderWidth int) int {
	return max(panelWidth-borderWidth*2, 0)
}

// ContentHeight returns the inner height for content (excluding borders).
func (l Layout) ContentHeight(panelHeight int, borderHeight int) int {
	return max(panelHeight-borderHeight*2, 0)
}

// BrowserBounds returns the position and size of the entry browser panel.
func (l Layout) BrowserBounds() (x, y, width, height int) {
	return 0, 0, l.BrowserWidth, l.MainHeight
}

// ViewerBounds returns the position and size of the secret viewer panel.
func (l Layout) ViewerBounds() (x, y, width, height int) {
	return l.BrowserWidth, 0, l.ViewerWidth, l.MainHeight
}

// PromptBounds returns the position and size of the prompt strip.
func (l Layout) PromptBounds() (x, y, width, height int) {
	if !l.PromptVisible {
		return 0, 0, 0, 0
	}
	return 0, l.MainHeight, l.TotalWidth, PromptHeight
}

// StatusBarBounds returns the position and size of the status bar.
func (l Layout) StatusBarBounds() (x, y, width, height int) {
	statusY := l.MainHeight
	if l.PromptVisible {
		statusY += PromptHeight
	}
	return 0, statusY, l.TotalWidth, l.StatusHeight
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
