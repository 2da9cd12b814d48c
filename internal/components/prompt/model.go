package prompt

import (
	"github.com/avitaltamir/vaultwalker/internal/components"
	"github.com/avitaltamir/vaultwalker/internal/theme"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Kind identifies what the prompt is collecting.
type Kind int

const (
	KindNone Kind = iota
	KindNewKeyName
	KindNewKeyValue
	KindRenameTarget
	KindEditValue
	KindConfirmDelete
)

// String returns the kind name for trace events.
func (k Kind) String() string {
	switch k {
	case KindNewKeyName:
		return "new-key-name"
	case KindNewKeyValue:
		return "new-key-value"
	case KindRenameTarget:
		return "rename-target"
	case KindEditValue:
		return "edit-value"
	case KindConfirmDelete:
		return "confirm-delete"
	default:
		return "none"
	}
}

// Messages
type (
	// SubmitMsg is sent when the user confirms the input with enter.
	SubmitMsg struct {
		Kind  Kind
		Value string
	}

	// CancelMsg is sent when the user abandons the prompt with escape.
	CancelMsg struct {
		Kind Kind
	}
)

// Model is the prompt strip used for every text-entry and confirmation
// interaction. Only one prompt is ever open at a time; the app decides
// what to do with the submitted value.
type Model struct {
	components.Base

	input  textinput.Model
	kind   Kind
	label  string
	danger bool
}

// New creates an inactive prompt.
func New() Model {
	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.CharLimit = 512

	return Model{
		input: ti,
	}
}

// Init initializes the prompt.
func (m Model) Init() tea.Cmd {
	return nil
}

// Open activates the prompt for the given kind. The initial value is
// preloaded for edit-style prompts; danger switches the label styling for
// destructive confirmations.
func (m Model) Open(kind Kind, label, placeholder, initial string, danger bool) (Model, tea.Cmd) {
	m.kind = kind
	m.label = label
	m.danger = danger
	m.input.Placeholder = placeholder
	m.input.SetValue(initial)
	m.input.CursorEnd()
	m.input.Focus()
	m.Base.Focus()
	return m, textinput.Blink
}

// Close deactivates the prompt.
func (m Model) Close() Model {
	m.kind = KindNone
	m.label = ""
	m.danger = false
	m.input.SetValue("")
	m.input.Blur()
	m.Base.Blur()
	return m
}

// Active reports whether a prompt is open.
func (m Model) Active() bool {
	return m.kind != KindNone
}

// Kind returns the kind of the open prompt.
func (m Model) Kind() Kind {
	return m.kind
}

// Value returns the current input text.
func (m Model) Value() string {
	return m.input.Value()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.Active() {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			kind := m.kind
			value := m.input.Value()
			return m, func() tea.Msg {
				return SubmitMsg{Kind: kind, Value: value}
			}

		case tea.KeyEsc:
			kind := m.kind
			return m, func() tea.Msg {
				return CancelMsg{Kind: kind}
			}
		}
	}

	// Anything else, cursor blinks included, goes to the input.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt strip.
func (m Model) View() string {
	w, _ := m.Size()
	if w == 0 || !m.Active() {
		return ""
	}

	labelStyle := theme.PromptLabelStyle
	borderColor := theme.CyberCyan
	if m.danger {
		labelStyle = theme.PromptDangerStyle
		borderColor = theme.NeonRed
	}

	line := labelStyle.Render(m.label) + " " + m.input.View()

	return lipgloss.NewStyle().
		Border(theme.GlowBorder).
		BorderForeground(borderColor).
		Width(w - 2).
		Render(line)
}

// Focus gives focus to this component.
func (m Model) Focus() Model {
	m.Base.Focus()
	m.input.Focus()
	return m
}

// Blur removes focus from this component.
func (m Model) Blur() Model {
	m.Base.Blur()
	m.input.Blur()
	return m
}

// SetSize updates the component's dimensions.
func (m Model) SetSize(width, height int) Model {
	m.Base.SetSize(width, height)
	m.input.Width = width - 6 // Account for border, label gap and prompt
	return m
}
