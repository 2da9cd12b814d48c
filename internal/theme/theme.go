package theme

import "github.com/charmbracelet/lipgloss"

// Theme holds all visual configuration for the application.
type Theme struct {
	// Name of the theme
	Name string

	// Color palette
	Colors ColorPalette

	// Whether to use Nerd Font icons
	UseNerdFonts bool
}

// ColorPalette holds all color definitions.
type ColorPalette struct {
	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Focus     lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	// Background colors
	BgPrimary     lipgloss.Color
	BgPanel       lipgloss.Color
	BgPanelActive lipgloss.Color
	BgPrompt      lipgloss.Color

	// Text colors
	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color
	TextDim       lipgloss.Color
}

// GetFolderIcon returns the icon for a folder entry, respecting the
// UseNerdFonts setting.
func (t *Theme) GetFolderIcon() string {
	if !t.UseNerdFonts {
		return IconFolderPlain
	}
	return IconFolder
}

// GetSecretIcon returns the icon for a secret leaf entry.
func (t *Theme) GetSecretIcon() string {
	if !t.UseNerdFonts {
		return IconSecretPlain
	}
	return IconSecret
}
