package viewer

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/avitaltamir/vaultwalker/internal/components"
	"github.com/avitaltamir/vaultwalker/internal/theme"
	"github.com/avitaltamir/vaultwalker/internal/tree"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const redactedValue = "••••••••"

// KeyMap defines the key bindings for the secret viewer.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Reveal   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
		),
		Reveal: key.NewBinding(
			key.WithKeys("v"),
		),
	}
}

// Model is the secret viewer component. It renders a leaf's key/value
// mapping as highlighted JSON with a cursor over the mapping keys, which
// the app uses as the target for edit, rename and copy actions.
type Model struct {
	components.Base

	viewport viewport.Model
	ready    bool

	path   tree.Path
	secret map[string]string
	keys   []string // sorted mapping keys, cursor indexes into this
	cursor int

	revealed bool
	stale    bool
	err      error

	keymap KeyMap
}

// New creates a new secret viewer.
func New() Model {
	return Model{
		keymap: DefaultKeyMap(),
	}
}

// Init initializes the viewer.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetSecret loads a leaf mapping into the viewer. When the path changes
// the key cursor resets and values are redacted again.
func (m Model) SetSecret(p tree.Path, secret map[string]string) Model {
	samePath := m.path.Equal(p)
	m.path = p
	m.secret = secret
	m.err = nil
	m.stale = false

	m.keys = make([]string, 0, len(secret))
	for k := range secret {
		m.keys = append(m.keys, k)
	}
	sort.Strings(m.keys)

	if !samePath {
		m.cursor = 0
		m.revealed = false
	}
	if m.cursor >= len(m.keys) {
		m.cursor = len(m.keys) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	if m.ready {
		m.viewport.SetContent(m.renderContent())
		if !samePath {
			m.viewport.GotoTop()
		}
	}
	return m
}

// SetStale marks the displayed mapping as possibly out of date after a
// failed refresh.
func (m Model) SetStale(stale bool) Model {
	m.stale = stale
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
	return m
}

// SetError displays a fetch error in place of content.
func (m Model) SetError(err error) Model {
	m.err = err
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
	return m
}

// Clear empties the viewer.
func (m Model) Clear() Model {
	m.path = nil
	m.secret = nil
	m.keys = nil
	m.cursor = 0
	m.revealed = false
	m.stale = false
	m.err = nil
	if m.ready {
		m.viewport.SetContent("")
	}
	return m
}

// Path returns the leaf currently displayed.
func (m Model) Path() tree.Path {
	return m.path
}

// SelectedKey returns the mapping key under the cursor, or false when the
// mapping is empty.
func (m Model) SelectedKey() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.keys) {
		return "", false
	}
	return m.keys[m.cursor], true
}

// SelectedValue returns the value for the key under the cursor.
func (m Model) SelectedValue() (string, bool) {
	k, ok := m.SelectedKey()
	if !ok {
		return "", false
	}
	return m.secret[k], true
}

// SelectKey moves the cursor to the given mapping key if present.
func (m Model) SelectKey(name string) Model {
	for i, k := range m.keys {
		if k == name {
			m.cursor = i
			break
		}
	}
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
	return m
}

// Revealed reports whether values are shown in the clear.
func (m Model) Revealed() bool {
	return m.revealed
}

// Stale reports whether the displayed data survived a failed refetch.
func (m Model) Stale() bool {
	return m.stale
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.Focused() {
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keymap.Up):
			m.moveCursor(-1)
			return m, nil

		case key.Matches(msg, m.keymap.Down):
			m.moveCursor(1)
			return m, nil

		case key.Matches(msg, m.keymap.Reveal):
			m.revealed = !m.revealed
			if m.ready {
				m.viewport.SetContent(m.renderContent())
			}
			return m, nil

		case key.Matches(msg, m.keymap.PageUp), key.Matches(msg, m.keymap.PageDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.keys) {
		m.cursor = len(m.keys) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.ready {
		m.viewport.SetContent(m.renderContent())
		m.scrollToCursor()
	}
}

func (m *Model) scrollToCursor() {
	// Key i sits on line i+1 of the rendered body (line 0 is "{"); the
	// stale banner pushes everything down one more line.
	line := m.cursor + 1
	if m.stale {
		line++
	}
	if line < m.viewport.YOffset {
		m.viewport.SetYOffset(line)
	}
	if line >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

// View renders the viewer.
func (m Model) View() string {
	if !m.ready {
		return ""
	}
	if m.path == nil && m.err == nil {
		return m.renderPlaceholder()
	}
	return m.viewport.View()
}

func (m Model) renderPlaceholder() string {
	w, h := m.Size()
	style := lipgloss.NewStyle().
		Width(w).
		Height(h).
		Foreground(theme.MutedLavender).
		Align(lipgloss.Center, lipgloss.Center)

	return style.Render("Select a secret to view its values...")
}

func (m Model) renderContent() string {
	if m.err != nil {
		return theme.StatusBarError.Render("Error: " + m.err.Error())
	}

	if len(m.keys) == 0 {
		return theme.TextMutedStyle.Render("(no values)")
	}

	var lines []string
	if m.revealed {
		// MarshalIndent sorts keys, matching m.keys order.
		raw, err := json.MarshalIndent(m.secret, "", "  ")
		if err != nil {
			return theme.StatusBarError.Render("Error: " + err.Error())
		}
		lines = strings.Split(highlightJSON(string(raw)), "\n")
	} else {
		// All-redacted values leave nothing for the JSON highlighter to
		// do; render the same shape by hand so the cursor math holds in
		// both views.
		lines = make([]string, 0, len(m.keys)+2)
		lines = append(lines, "{")
		for i, k := range m.keys {
			line := "  " + theme.SecretKeyStyle.Render(strconv.Quote(k)+":") +
				" " + theme.SecretRedactedStyle.Render(strconv.Quote(redactedValue))
			if i < len(m.keys)-1 {
				line += ","
			}
			lines = append(lines, line)
		}
		lines = append(lines, "}")
	}

	// The cursor key sits on line cursor+1, after the opening brace.
	cursorLine := m.cursor + 1

	var result strings.Builder
	if m.stale {
		result.WriteString(theme.StatusBarWarning.Render("(stale)"))
		result.WriteString("\n")
	}
	for i, line := range lines {
		if i == cursorLine {
			result.WriteString(theme.SecretSelectedKey.Render("▸ "))
			result.WriteString(line)
		} else {
			result.WriteString("  ")
			result.WriteString(line)
		}
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}

	return result.String()
}

// highlightJSON runs the mapping through chroma's JSON lexer.
func highlightJSON(content string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return content
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return content
	}

	return buf.String()
}

// Focus gives focus to this component.
func (m Model) Focus() Model {
	m.Base.Focus()
	return m
}

// Blur removes focus from this component.
func (m Model) Blur() Model {
	m.Base.Blur()
	return m
}

// SetSize updates the component's dimensions.
func (m Model) SetSize(width, height int) Model {
	m.Base.SetSize(width, height)

	if !m.ready {
		m.viewport = viewport.New(width, height)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = height
	}

	if m.secret != nil || m.err != nil {
		m.viewport.SetContent(m.renderContent())
	}

	return m
}

// ScrollPercent returns the current scroll position as a percentage (0-100).
func (m Model) ScrollPercent() float64 {
	if !m.ready {
		return 100
	}
	return m.viewport.ScrollPercent() * 100
}
