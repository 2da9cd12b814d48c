package browser

import (
	"strconv"

	"github.com/avitaltamir/vaultwalker/internal/components"
	"github.com/avitaltamir/vaultwalker/internal/theme"
	"github.com/avitaltamir/vaultwalker/internal/tree"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Messages
type (
	// OpenMsg is sent when the user opens the entry under the cursor.
	OpenMsg struct {
		Entry tree.Entry
	}

	// BackMsg is sent when the user navigates up to the parent folder.
	BackMsg struct{}
)

// KeyMap defines the key bindings for the entry browser.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
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
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
		),
	}
}

// Model is the entry browser component. It renders the children of the
// current folder and owns cursor movement and fuzzy filtering; navigation
// itself is requested from the app through OpenMsg/BackMsg.
type Model struct {
	components.Base

	path    tree.Path    // folder currently displayed
	entries []tree.Entry // full child listing
	visible []tree.Entry // entries after filtering
	cursor  int
	offset  int

	loading bool
	spin    spinner.Model

	// Search/filter functionality
	searching   bool
	searchInput textinput.Model
	searchQuery string

	keys KeyMap
}

// New creates a new entry browser.
func New() Model {
	ti := textinput.New()
	ti.Placeholder = "Search entries..."
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.SpinnerStyle

	return Model{
		searchInput: ti,
		spin:        sp,
		keys:        DefaultKeyMap(),
	}
}

// Init initializes the browser.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetEntries replaces the displayed listing. When the folder changes the
// cursor resets to the top and any active filter is cleared.
func (m Model) SetEntries(p tree.Path, entries []tree.Entry) Model {
	samePath := m.path.Equal(p)
	m.path = p
	m.entries = entries
	if !samePath {
		m.cursor = 0
		m.offset = 0
		m.searching = false
		m.searchQuery = ""
		m.searchInput.SetValue("")
	}
	m.rebuildVisible()
	return m
}

// SetLoading toggles the in-flight fetch indicator.
func (m Model) SetLoading(loading bool) Model {
	m.loading = loading
	return m
}

// Loading reports whether a fetch is in flight for the displayed folder.
func (m Model) Loading() bool {
	return m.loading
}

// Path returns the folder currently displayed.
func (m Model) Path() tree.Path {
	return m.path
}

// Searching reports whether the filter input is capturing keys.
func (m Model) Searching() bool {
	return m.searching
}

// SelectedEntry returns the entry under the cursor, or false when the
// listing is empty.
func (m Model) SelectedEntry() (tree.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return tree.Entry{}, false
	}
	return m.visible[m.cursor], true
}

// SelectName moves the cursor to the entry with the given name if present.
func (m Model) SelectName(name string) Model {
	for i, e := range m.visible {
		if e.Name == name {
			m.cursor = i
			m.ensureVisible()
			break
		}
	}
	return m
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.Focused() {
			return m, nil
		}
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)
	}

	// Cursor blinks and friends go to the search input while it is open.
	if m.searching {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Tick returns the command that keeps the spinner animating.
func (m Model) Tick() tea.Cmd {
	return m.spin.Tick
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "/" {
		m.searching = true
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		return m, textinput.Blink
	}

	// Escape clears a confirmed filter
	if msg.String() == "esc" && m.searchQuery != "" {
		m.searchQuery = ""
		m.rebuildVisible()
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.PageUp):
		_, h := m.Size()
		m.moveCursor(-h / 2)

	case key.Matches(msg, m.keys.PageDown):
		_, h := m.Size()
		m.moveCursor(h / 2)

	case key.Matches(msg, m.keys.Home):
		m.cursor = 0
		m.offset = 0

	case key.Matches(msg, m.keys.End):
		if len(m.visible) > 0 {
			m.cursor = len(m.visible) - 1
			m.ensureVisible()
		}

	case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Right):
		return m.handleOpen()

	case key.Matches(msg, m.keys.Left):
		return m, func() tea.Msg { return BackMsg{} }
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		// Confirm search and exit search mode
		m.searching = false
		m.searchQuery = m.searchInput.Value()
		m.searchInput.Blur()
		m.rebuildVisible()
		if len(m.visible) > 0 {
			m.cursor = 0
			m.offset = 0
		}
		return m, nil

	case "esc":
		// Cancel search, clear filter, exit search mode
		m.searching = false
		m.searchQuery = ""
		m.searchInput.Blur()
		m.rebuildVisible()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Apply filter as user types
	m.searchQuery = m.searchInput.Value()
	m.rebuildVisible()

	return m, cmd
}

func (m Model) handleOpen() (Model, tea.Cmd) {
	entry, ok := m.SelectedEntry()
	if !ok {
		return m, nil
	}
	return m, func() tea.Msg {
		return OpenMsg{Entry: entry}
	}
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureVisible()
}

func (m *Model) ensureVisible() {
	_, h := m.Size()
	viewportHeight := h - 3 // Account for borders and search bar

	if viewportHeight <= 0 {
		return
	}

	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+viewportHeight {
		m.offset = m.cursor - viewportHeight + 1
	}
}

func (m *Model) rebuildVisible() {
	m.visible = filterEntries(m.entries, m.searchQuery)

	// Keep cursor in bounds
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureVisible()
}

// filterEntries narrows the listing with a fuzzy match, preserving the
// server's order. An empty query or a query with no matches leaves the
// listing untouched.
func filterEntries(entries []tree.Entry, query string) []tree.Entry {
	if query == "" {
		return entries
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	if len(ranks) == 0 {
		return entries
	}

	matched := make(map[int]struct{}, len(ranks))
	for _, rank := range ranks {
		matched[rank.OriginalIndex] = struct{}{}
	}

	result := make([]tree.Entry, 0, len(matched))
	for i, e := range entries {
		if _, ok := matched[i]; ok {
			result = append(result, e)
		}
	}
	return result
}

// View renders the entry listing.
func (m Model) View() string {
	w, h := m.Size()
	if w == 0 || h == 0 {
		return ""
	}

	// Reserve space for search bar if searching or filtered
	searchBarHeight := 0
	if m.searching || m.searchQuery != "" {
		searchBarHeight = 1
	}

	contentHeight := h - 2 - searchBarHeight

	var lines []string

	if m.loading && len(m.visible) == 0 {
		lines = append(lines, m.spin.View()+" "+theme.TextMutedStyle.Render("loading..."))
	}

	for i := m.offset; i < len(m.visible) && len(lines) < contentHeight; i++ {
		line := m.renderEntry(m.visible[i], i == m.cursor, w-4)
		lines = append(lines, line)
	}

	if len(m.visible) == 0 && !m.loading {
		lines = append(lines, theme.TextDimStyle.Render("(empty)"))
	}

	// Pad with empty lines if needed
	for len(lines) < contentHeight {
		lines = append(lines, "")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)

	if m.searching || m.searchQuery != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.renderSearchBar())
	}

	return content
}

func (m Model) renderSearchBar() string {
	if m.searching {
		return "/" + m.searchInput.View()
	}

	bar := theme.StatusBarHighlight.Render("/ " + m.searchQuery)
	if n := len(m.visible); n > 0 && n != len(m.entries) {
		bar += theme.TextMutedStyle.Render(" (" + strconv.Itoa(n) + " matches)")
	}
	return bar
}

func (m Model) renderEntry(entry tree.Entry, selected bool, maxWidth int) string {
	th := theme.CurrentTheme()

	var icon string
	if entry.Folder {
		icon = th.GetFolderIcon()
	} else {
		icon = th.GetSecretIcon()
	}

	line := icon + " " + entry.Display()

	// Truncate by display width; a byte slice would split multi-byte
	// icons and names.
	if maxWidth > 1 && lipgloss.Width(line) > maxWidth {
		line = ansi.Truncate(line, maxWidth, "…")
	}

	var style lipgloss.Style
	switch {
	case selected:
		style = theme.EntrySelected.Width(maxWidth)
	case m.searchQuery != "":
		style = theme.EntryMatch
	case entry.Folder:
		style = theme.EntryFolder
	default:
		style = theme.EntrySecret
	}

	result := style.Render(line)

	if selected && m.loading {
		result += " " + m.spin.View()
	}

	return result
}

// ScrollPercent returns the current scroll position as a percentage (0-100).
func (m Model) ScrollPercent() float64 {
	if len(m.visible) == 0 {
		return 100
	}
	_, h := m.Size()
	viewportHeight := h - 3
	if viewportHeight <= 0 {
		return 100
	}
	maxOffset := len(m.visible) - viewportHeight
	if maxOffset <= 0 {
		return 100
	}
	return float64(m.offset) / float64(maxOffset) * 100
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
	m.ensureVisible()
	return m
}
