package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/avitaltamir/vaultwalker/internal/clipboard"
	"github.com/avitaltamir/vaultwalker/internal/components/browser"
	"github.com/avitaltamir/vaultwalker/internal/components/prompt"
	"github.com/avitaltamir/vaultwalker/internal/components/viewer"
	"github.com/avitaltamir/vaultwalker/internal/config"
	"github.com/avitaltamir/vaultwalker/internal/layout"
	"github.com/avitaltamir/vaultwalker/internal/logging"
	"github.com/avitaltamir/vaultwalker/internal/theme"
	"github.com/avitaltamir/vaultwalker/internal/tree"
	"github.com/avitaltamir/vaultwalker/internal/vault"
)

// Version is stamped by the build, "dev" otherwise.
var Version = "dev"

const (
	// quitTapWindow is how fast a second ctrl+q must follow the first to
	// skip the confirmation dialog.
	quitTapWindow = 400 * time.Millisecond

	// statusTimeout is how long a transient status message stays visible.
	statusTimeout = 4 * time.Second

	browserPercentStep = 5
)

// tokenSetter is implemented by clients whose auth token can be swapped
// at runtime (vault.HTTPClient). Test fakes usually don't bother.
type tokenSetter interface {
	SetToken(token string)
}

// Model is the root application model.
type Model struct {
	tree   *tree.Model
	client vault.Client
	clip   clipboard.Sink

	browser browser.Model
	viewer  viewer.Model
	prompt  prompt.Model

	keys  KeyMap
	focus PanelID

	// current is the folder shown in the browser; viewing is the leaf
	// shown in the viewer, nil when none is open.
	current tree.Path
	viewing tree.Path

	// Carried between the two create prompts, and into edit/rename.
	pendingNewKey string
	editKey       string

	// Delete target captured when the confirmation prompt opens.
	deleteTarget tree.Path

	// Selection to restore once the next listing/secret arrives.
	selectName string
	selectKey  string

	// Key whose value is copied once a fresh fetch of the open leaf
	// lands. Stale values are never copied directly.
	copyKeyPending string

	width          int
	height         int
	ready          bool
	browserPercent int

	status    string
	statusErr bool
	statusSeq int

	showHelp  bool
	showQuit  bool
	lastCtrlQ time.Time

	tokenFile string
	watcher   *fsnotify.Watcher
}

// New creates the application model. The token file, when non-empty, is
// watched for rotation and reloaded into the client.
func New(client vault.Client, cfg config.Config, clip clipboard.Sink) Model {
	state := config.Load()
	theme.SetThemeIndex(state.ThemeIndex)

	root := tree.ParsePath(cfg.RootPath)
	current := root
	if last := tree.ParsePath(state.LastPath); len(last) > 0 && last.HasPrefix(root) {
		current = last
	}

	m := Model{
		tree:           tree.NewModel(client, root),
		client:         client,
		clip:           clip,
		browser:        browser.New(),
		viewer:         viewer.New(),
		prompt:         prompt.New(),
		keys:           DefaultKeyMap(),
		focus:          PanelBrowser,
		current:        current,
		browserPercent: layout.DefaultBrowserPercent,
		tokenFile:      cfg.TokenFile,
	}
	m.browser = m.browser.Focus()

	if cfg.TokenFile != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			logging.Error(err)
		} else if err := watcher.Add(filepath.Dir(cfg.TokenFile)); err != nil {
			logging.Error(err)
			watcher.Close()
		} else {
			m.watcher = watcher
		}
	}

	return m
}

// Mode returns the current interaction mode.
func (m Model) Mode() Mode {
	switch {
	case m.showHelp:
		return ModeShowingHelp
	case m.prompt.Active():
		switch m.prompt.Kind() {
		case prompt.KindNewKeyName:
			return ModeEnteringNewKeyName
		case prompt.KindNewKeyValue:
			return ModeEnteringNewKeyValue
		case prompt.KindRenameTarget:
			return ModeEnteringRenameTarget
		case prompt.KindEditValue:
			return ModeEnteringEditedValue
		case prompt.KindConfirmDelete:
			return ModeConfirmingDelete
		}
	case m.browser.Searching():
		return ModeSearching
	}
	return ModeBrowsing
}

// Init starts the initial fetch and, when configured, the token watch.
func (m Model) Init() tea.Cmd {
	logging.Trace("start", map[string]string{"path": m.current.String()})
	cmds := []tea.Cmd{
		m.tree.Enter(m.current, tree.KindFolder),
		m.browser.Tick(),
	}
	if cmd := m.watchTokenCmd(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateSizes()
		m.syncFromCache()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd

	case tree.FetchedMsg:
		return m.handleFetched(msg)

	case tree.MutationDoneMsg:
		return m.handleMutationDone(msg)

	case browser.OpenMsg:
		return m.handleOpen(msg.Entry)

	case browser.BackMsg:
		return m.handleBack()

	case prompt.SubmitMsg:
		return m.handleSubmit(msg)

	case prompt.CancelMsg:
		m.prompt = m.prompt.Close()
		m.pendingNewKey = ""
		m.editKey = ""
		m.deleteTarget = nil
		m.updateSizes()
		return m.setStatus("cancelled", false)

	case TokenReloadedMsg:
		return m.handleTokenReloaded(msg)

	case StatusMsg:
		return m.setStatus(msg.Text, msg.Error)

	case ErrorMsg:
		logging.Error(msg.Err)
		return m.setStatus(msg.Err.Error(), true)

	case statusClearMsg:
		if msg.Seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
		return m, nil
	}

	// Component-internal messages (cursor blinks) for whichever input
	// is open.
	var cmd tea.Cmd
	if m.prompt.Active() {
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	if m.browser.Searching() {
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit dialog swallows everything.
	if m.showQuit {
		switch msg.String() {
		case "y", "Y", "enter", "ctrl+q":
			return m.quit()
		default:
			m.showQuit = false
			return m, nil
		}
	}

	// Help overlay closes on any key.
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// ctrl+q always reaches the quit flow, even with a prompt open.
	if msg.String() == "ctrl+q" {
		if time.Since(m.lastCtrlQ) < quitTapWindow {
			return m.quit()
		}
		m.lastCtrlQ = time.Now()
		m.showQuit = true
		return m, nil
	}

	// An active prompt owns the keyboard.
	if m.prompt.Active() {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	// An active search owns everything except global keys.
	if m.browser.Searching() {
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.FocusNext):
		return m.toggleFocus(), nil

	case key.Matches(msg, m.keys.CycleTheme):
		t := theme.NextTheme()
		theme.ApplyTheme(t)
		m.saveState()
		return m.setStatus(fmt.Sprintf("theme: %s", t.Name), false)

	case key.Matches(msg, m.keys.ShrinkBrowser):
		m.browserPercent -= browserPercentStep
		if m.browserPercent < layout.MinBrowserPercent {
			m.browserPercent = layout.MinBrowserPercent
		}
		m.updateSizes()
		return m, nil

	case key.Matches(msg, m.keys.WidenBrowser):
		m.browserPercent += browserPercentStep
		if m.browserPercent > layout.MaxBrowserPercent {
			m.browserPercent = layout.MaxBrowserPercent
		}
		m.updateSizes()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m.refresh()

	case key.Matches(msg, m.keys.ClearCache):
		m.tree.ClearCache()
		m.viewer = m.viewer.Clear()
		m.viewing = nil
		cmd := m.tree.Enter(m.current, tree.KindFolder)
		m.syncFromCache()
		mm, clear := m.setStatus("cache cleared", false)
		return mm, tea.Batch(cmd, clear, mm.browser.Tick())

	case key.Matches(msg, m.keys.NewKey):
		return m.startCreate()

	case key.Matches(msg, m.keys.Edit):
		return m.startEdit()

	case key.Matches(msg, m.keys.Rename):
		return m.startRename()

	case key.Matches(msg, m.keys.Delete):
		return m.startDelete()

	case key.Matches(msg, m.keys.CopyValue):
		return m.copyValue()

	case key.Matches(msg, m.keys.CopyPath):
		return m.copyPath()
	}

	// Everything else goes to the focused panel.
	var cmd tea.Cmd
	switch m.focus {
	case PanelBrowser:
		m.browser, cmd = m.browser.Update(msg)
	case PanelViewer:
		if msg.Type == tea.KeyEsc {
			return m.toggleFocus(), nil
		}
		m.viewer, cmd = m.viewer.Update(msg)
	}
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.saveState()
	if m.watcher != nil {
		m.watcher.Close()
	}
	return m, tea.Quit
}

func (m Model) toggleFocus() Model {
	if m.focus == PanelBrowser {
		m.focus = PanelViewer
		m.browser = m.browser.Blur()
		m.viewer = m.viewer.Focus()
	} else {
		m.focus = PanelBrowser
		m.viewer = m.viewer.Blur()
		m.browser = m.browser.Focus()
	}
	return m
}

// refresh marks the current folder, and the open leaf if any, stale and
// refetches them. Cached data stays on screen until results arrive.
func (m Model) refresh() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.tree.Refresh(m.current, tree.KindFolder)}
	if m.viewing != nil {
		cmds = append(cmds, m.tree.Refresh(m.viewing, tree.KindLeaf))
	}
	m.syncFromCache()
	mm, clear := m.setStatus("refreshing", false)
	return mm, tea.Batch(append(cmds, clear, mm.browser.Tick())...)
}

func (m Model) startCreate() (tea.Model, tea.Cmd) {
	if p := m.tree.Pending(); p != nil {
		return m.setStatus(fmt.Sprintf("%s still in flight", p.Op), true)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Open(
		prompt.KindNewKeyName,
		fmt.Sprintf("New secret under %s", m.current.String()),
		"name", "", false,
	)
	m.updateSizes()
	return m, cmd
}

func (m Model) startEdit() (tea.Model, tea.Cmd) {
	if p := m.tree.Pending(); p != nil {
		return m.setStatus(fmt.Sprintf("%s still in flight", p.Op), true)
	}
	key, ok := m.viewer.SelectedKey()
	if !ok {
		return m.setStatus("select a key in the viewer first", true)
	}
	value, _ := m.viewer.SelectedValue()
	m.editKey = key
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Open(
		prompt.KindEditValue,
		fmt.Sprintf("Edit %s", key),
		"value", value, false,
	)
	m.updateSizes()
	return m, cmd
}

func (m Model) startRename() (tea.Model, tea.Cmd) {
	if p := m.tree.Pending(); p != nil {
		return m.setStatus(fmt.Sprintf("%s still in flight", p.Op), true)
	}
	key, ok := m.viewer.SelectedKey()
	if !ok {
		return m.setStatus("select a key in the viewer first", true)
	}
	m.editKey = key
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Open(
		prompt.KindRenameTarget,
		fmt.Sprintf("Rename %s to", key),
		"new name", key, false,
	)
	m.updateSizes()
	return m, cmd
}

func (m Model) startDelete() (tea.Model, tea.Cmd) {
	if p := m.tree.Pending(); p != nil {
		return m.setStatus(fmt.Sprintf("%s still in flight", p.Op), true)
	}
	entry, ok := m.browser.SelectedEntry()
	if !ok {
		return m.setStatus("nothing selected", true)
	}
	m.deleteTarget = m.current.Child(entry.Name)
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Open(
		prompt.KindConfirmDelete,
		fmt.Sprintf("Type \"yes\" to delete %s", m.deleteTarget.String()),
		"", "", true,
	)
	m.updateSizes()
	return m, cmd
}

// copyValue copies the selected value to the clipboard. The value itself
// never appears in the status bar or the trace log. A stale value is
// refetched first and copied when the fresh data arrives.
func (m Model) copyValue() (tea.Model, tea.Cmd) {
	value, ok := m.viewer.SelectedValue()
	if !ok {
		return m.setStatus("select a value in the viewer first", true)
	}
	if m.viewer.Stale() {
		key, _ := m.viewer.SelectedKey()
		m.copyKeyPending = key
		cmd := m.tree.Refresh(m.viewing, tree.KindLeaf)
		mm, clear := m.setStatus("value is stale, refetching", false)
		return mm, tea.Batch(cmd, clear)
	}
	if err := m.clip.Copy(value); err != nil {
		logging.Error(err)
		return m.setStatus("clipboard unavailable", true)
	}
	key, _ := m.viewer.SelectedKey()
	logging.Trace("copy", map[string]string{"key": key})
	return m.setStatus(fmt.Sprintf("copied value of %s", key), false)
}

func (m Model) copyPath() (tea.Model, tea.Cmd) {
	var p tree.Path
	if m.focus == PanelViewer && m.viewing != nil {
		p = m.viewing
	} else if entry, ok := m.browser.SelectedEntry(); ok {
		p = m.current.Child(entry.Name)
	} else {
		p = m.current
	}
	if err := m.clip.Copy(p.String()); err != nil {
		logging.Error(err)
		return m.setStatus("clipboard unavailable", true)
	}
	return m.setStatus(fmt.Sprintf("copied %s", p.String()), false)
}

func (m Model) handleOpen(entry tree.Entry) (tea.Model, tea.Cmd) {
	child := m.current.Child(entry.Name)
	if entry.Folder {
		m.current = child
		cmd := m.tree.Enter(child, tree.KindFolder)
		m.syncFromCache()
		m.saveState()
		return m, tea.Batch(cmd, m.browser.Tick())
	}
	m.viewing = child
	cmd := m.tree.Enter(child, tree.KindLeaf)
	m.syncFromCache()
	if m.focus == PanelBrowser {
		m = m.toggleFocus()
	}
	return m, cmd
}

func (m Model) handleBack() (tea.Model, tea.Cmd) {
	if m.current.Equal(m.tree.Root()) {
		return m.setStatus("already at root", false)
	}
	parent, ok := m.current.Parent()
	if !ok || !parent.HasPrefix(m.tree.Root()) {
		return m.setStatus("already at root", false)
	}
	m.selectName = m.current.Name()
	m.current = parent
	cmd := m.tree.Enter(parent, tree.KindFolder)
	m.syncFromCache()
	m.saveState()
	return m, tea.Batch(cmd, m.browser.Tick())
}

func (m Model) handleFetched(msg tree.FetchedMsg) (tea.Model, tea.Cmd) {
	m.tree.Apply(msg)
	logging.Trace("fetch", map[string]interface{}{
		"path": msg.Path.String(),
		"kind": msg.Kind.String(),
		"err":  msg.Err != nil,
	})
	m.syncFromCache()

	if m.copyKeyPending != "" && m.viewing != nil && msg.Path.Equal(m.viewing) {
		key := m.copyKeyPending
		m.copyKeyPending = ""
		if msg.Err != nil {
			return m.setStatus("copy aborted: refetch failed", true)
		}
		if value, ok := msg.Secret[key]; ok {
			if err := m.clip.Copy(value); err != nil {
				logging.Error(err)
				return m.setStatus("clipboard unavailable", true)
			}
			logging.Trace("copy", map[string]string{"key": key})
			return m.setStatus(fmt.Sprintf("copied value of %s", key), false)
		}
		return m.setStatus(fmt.Sprintf("%s is gone upstream", key), true)
	}

	if msg.Kind == tree.KindFolder && msg.Path.Equal(m.current) && !m.current.Equal(m.tree.Root()) {
		node := m.tree.Node(m.current)
		if node.Resolved() && len(node.Children) == 0 {
			// The folder we are inside lost its last entry, so it no
			// longer exists upstream. Climb to the parent and refresh
			// it so its listing drops the vanished name.
			parent, _ := m.current.Parent()
			m.current = parent
			cmd := m.tree.Refresh(parent, tree.KindFolder)
			m.syncFromCache()
			m.saveState()
			mm, clear := m.setStatus(fmt.Sprintf("%s is empty", msg.Path.String()), false)
			return mm, tea.Batch(cmd, clear)
		}
	}

	if msg.Err != nil {
		// A not-found listing resolves the node as an empty folder;
		// that is an answer, not an error worth surfacing.
		if n, ok := m.tree.Lookup(msg.Path); !ok || !n.Resolved() {
			return m.setStatus(msg.Err.Error(), true)
		}
	}
	return m, nil
}

func (m Model) handleSubmit(msg prompt.SubmitMsg) (tea.Model, tea.Cmd) {
	m.prompt = m.prompt.Close()
	m.updateSizes()

	switch msg.Kind {
	case prompt.KindNewKeyName:
		name := strings.TrimSpace(msg.Value)
		if name == "" {
			return m.setStatus("name cannot be empty", true)
		}
		if strings.Contains(name, "/") {
			return m.setStatus("name cannot contain /", true)
		}
		if m.tree.Node(m.current).HasChild(name) {
			return m.setStatus(fmt.Sprintf("%s already exists here", name), true)
		}
		m.pendingNewKey = name
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Open(
			prompt.KindNewKeyValue,
			fmt.Sprintf("Value for %s", name),
			"value", "", false,
		)
		m.updateSizes()
		return m, cmd

	case prompt.KindNewKeyValue:
		name := m.pendingNewKey
		m.pendingNewKey = ""
		cmd, err := m.tree.CreateSecret(m.current, name, msg.Value)
		if err != nil {
			return m.setStatus(err.Error(), true)
		}
		m.selectName = name
		mm, clear := m.setStatus(fmt.Sprintf("creating %s", name), false)
		return mm, tea.Batch(cmd, clear)

	case prompt.KindEditValue:
		key := m.editKey
		m.editKey = ""
		cmd, err := m.tree.EditValue(m.viewing, key, msg.Value)
		if err != nil {
			return m.setStatus(err.Error(), true)
		}
		m.selectKey = key
		mm, clear := m.setStatus(fmt.Sprintf("updating %s", key), false)
		return mm, tea.Batch(cmd, clear)

	case prompt.KindRenameTarget:
		oldKey := m.editKey
		m.editKey = ""
		newKey := strings.TrimSpace(msg.Value)
		cmd, err := m.tree.RenameKey(m.viewing, oldKey, newKey)
		if err != nil {
			return m.setStatus(err.Error(), true)
		}
		m.selectKey = newKey
		mm, clear := m.setStatus(fmt.Sprintf("renaming %s", oldKey), false)
		return mm, tea.Batch(cmd, clear)

	case prompt.KindConfirmDelete:
		target := m.deleteTarget
		m.deleteTarget = nil
		if msg.Value != "yes" {
			return m.setStatus("delete aborted", false)
		}
		cmd, err := m.tree.DeleteEntry(target)
		if err != nil {
			return m.setStatus(err.Error(), true)
		}
		mm, clear := m.setStatus(fmt.Sprintf("deleting %s", target.String()), false)
		return mm, tea.Batch(cmd, clear)
	}

	return m, nil
}

func (m Model) handleMutationDone(msg tree.MutationDoneMsg) (tea.Model, tea.Cmd) {
	m.tree.CompleteMutation(msg)
	mut := msg.Mutation
	logging.Trace("mutation", map[string]interface{}{
		"op":   mut.Op.String(),
		"path": mut.Path.String(),
		"err":  msg.Err != nil,
	})

	if msg.Err != nil {
		m.selectName = ""
		m.selectKey = ""
		return m.setStatus(fmt.Sprintf("%s failed: %v", mut.Op, msg.Err), true)
	}

	var cmds []tea.Cmd
	switch mut.Op {
	case tree.OpCreate:
		if parent, ok := mut.Path.Parent(); ok {
			cmds = append(cmds, m.tree.Enter(parent, tree.KindFolder))
		}
		cmds = append(cmds, m.tree.Enter(mut.Path, tree.KindLeaf))

	case tree.OpEdit, tree.OpRename:
		cmds = append(cmds, m.tree.Enter(mut.Path, tree.KindLeaf))

	case tree.OpDelete:
		if m.viewing != nil && m.viewing.HasPrefix(mut.Path) {
			m.viewer = m.viewer.Clear()
			m.viewing = nil
		}
		if m.current.HasPrefix(mut.Path) {
			// The folder we were inside is gone; climb to its parent.
			if parent, ok := mut.Path.Parent(); ok && parent.HasPrefix(m.tree.Root()) {
				m.current = parent
			} else {
				m.current = m.tree.Root()
			}
		}
		cmds = append(cmds, m.tree.Enter(m.current, tree.KindFolder))
	}

	m.syncFromCache()
	mm, clear := m.setStatus(fmt.Sprintf("%s: %s done", mut.Op, mut.Path.String()), false)
	return mm, tea.Batch(append(cmds, clear, mm.browser.Tick())...)
}

func (m Model) handleTokenReloaded(msg TokenReloadedMsg) (tea.Model, tea.Cmd) {
	rearm := m.watchTokenCmd()
	if msg.Err != nil {
		logging.Error(msg.Err)
		mm, clear := m.setStatus("token reload failed", true)
		return mm, tea.Batch(rearm, clear)
	}
	if setter, ok := m.client.(tokenSetter); ok {
		setter.SetToken(msg.Token)
	}
	logging.Trace("token-reload", nil)
	mm, clear := m.setStatus("auth token reloaded", false)
	return mm, tea.Batch(rearm, clear)
}

// watchTokenCmd blocks on the next filesystem event touching the token
// file. It re-arms itself from handleTokenReloaded.
func (m Model) watchTokenCmd() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	watcher := m.watcher
	tokenFile := m.tokenFile
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if ev.Name == tokenFile && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					token, err := config.ReadTokenFile(tokenFile)
					return TokenReloadedMsg{Token: token, Err: err}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logging.Error(err)
			}
		}
	}
}

// syncFromCache pushes the cached state of the current folder and the
// open leaf into the panels. Stale data stays on screen after a failed
// refresh; only the flags change.
func (m *Model) syncFromCache() {
	node := m.tree.Node(m.current)
	if node.Children != nil || node.Resolved() {
		m.browser = m.browser.SetEntries(m.current, node.Children)
		if m.selectName != "" {
			m.browser = m.browser.SelectName(m.selectName)
			m.selectName = ""
		}
	}
	m.browser = m.browser.SetLoading(node.FetchState == tree.FetchInFlight)

	if m.viewing == nil {
		return
	}
	leaf := m.tree.Node(m.viewing)
	switch {
	case leaf.Secret != nil:
		m.viewer = m.viewer.SetSecret(m.viewing, leaf.Secret)
		m.viewer = m.viewer.SetStale(leaf.FetchState == tree.FetchFailed)
		if m.selectKey != "" {
			m.viewer = m.viewer.SelectKey(m.selectKey)
			m.selectKey = ""
		}
	case leaf.FetchState == tree.FetchFailed:
		m.viewer = m.viewer.SetError(leaf.FetchErr)
	}
}

func (m Model) setStatus(text string, isErr bool) (Model, tea.Cmd) {
	m.status = text
	m.statusErr = isErr
	m.statusSeq++
	seq := m.statusSeq
	return m, tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return statusClearMsg{Seq: seq}
	})
}

func (m *Model) updateSizes() {
	if !m.ready {
		return
	}
	l := layout.Calculate(m.width, m.height, m.prompt.Active(), m.browserPercent)
	m.browser = m.browser.SetSize(l.BrowserWidth-2, l.MainHeight-2)
	m.viewer = m.viewer.SetSize(l.ViewerWidth-2, l.MainHeight-2)
	m.prompt = m.prompt.SetSize(l.TotalWidth, layout.PromptHeight)
}

func (m Model) saveState() {
	err := config.Save(config.State{
		ThemeIndex: theme.CurrentThemeIndex(),
		LastPath:   m.current.String(),
	})
	if err != nil {
		logging.Error(err)
	}
}

// View renders the application.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	l := layout.Calculate(m.width, m.height, m.prompt.Active(), m.browserPercent)

	browserPanel := theme.RenderPanelWithTitle(
		m.browser.View(),
		theme.PanelTitleOptions{
			Title:         "SECRETS",
			StatusRunning: m.browser.Loading(),
			ShowStatus:    true,
			ScrollPercent: m.browser.ScrollPercent(),
			BottomHints:   "a:add  d:del  /:search",
		},
		l.BrowserWidth, l.MainHeight,
		m.focus == PanelBrowser,
	)

	viewerTitle := "VIEWER"
	if m.viewing != nil {
		viewerTitle = m.viewing.String()
	}
	viewerPanel := theme.RenderPanelWithTitle(
		m.viewer.View(),
		theme.PanelTitleOptions{
			Title:         viewerTitle,
			ScrollPercent: m.viewer.ScrollPercent(),
			BottomHints:   "v:reveal  e:edit  r:rename  y:copy",
		},
		l.ViewerWidth, l.MainHeight,
		m.focus == PanelViewer,
	)

	sections := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, browserPanel, viewerPanel),
	}
	if m.prompt.Active() {
		sections = append(sections, m.prompt.View())
	}
	sections = append(sections, m.renderStatusBar())

	view := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.showHelp {
		return m.renderOverlay(m.renderHelp())
	}
	if m.showQuit {
		return m.renderOverlay(m.renderQuitDialog())
	}
	return view
}

func (m Model) renderStatusBar() string {
	t := theme.CurrentTheme()

	left := theme.StatusBarHighlight.Render(" " + theme.PanelDiamond + " vaultwalker ")
	left += theme.StatusBarSection.Render(" " + m.current.String() + " ")
	if mode := m.Mode(); mode != ModeBrowsing {
		left += theme.StatusBarSection.Render(" " + mode.String() + " ")
	}
	if p := m.tree.Pending(); p != nil {
		left += theme.StatusBarWarning.Render(" " + theme.StatusRunning + " " + p.Op.String() + " ")
	}
	if m.status != "" {
		style := theme.StatusBarSuccess
		if m.statusErr {
			style = theme.StatusBarError
		}
		left += style.Render(" " + m.status + " ")
	}

	right := theme.StatusBarSection.Render(" " + t.Name + " ")
	right += theme.StatusBarStyle.Render(" " + Version + " ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	bar := left + theme.StatusBarStyle.Render(strings.Repeat(" ", gap)) + right
	return theme.StatusBarStyle.Width(m.width).Render(bar)
}

func (m Model) renderOverlay(box string) string {
	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		box,
	)
}

func (m Model) renderQuitDialog() string {
	content := theme.TextH2.Render("Quit vaultwalker?") + "\n\n" +
		theme.TextMutedStyle.Render("y/enter to quit, any other key to stay")
	return theme.PanelFocused.Padding(1, 3).Render(content)
}

func (m Model) renderHelp() string {
	lines := []string{
		theme.TextH1.Render("vaultwalker keys"),
		"",
		theme.TextH2.Render("Navigate"),
		"  ↑/k ↓/j     move cursor",
		"  enter/→/l   open folder or secret",
		"  ←/h         go up one folder",
		"  g / G       jump to top / bottom",
		"  /           filter entries",
		"  tab         switch panel",
		"",
		theme.TextH2.Render("Secrets"),
		"  a           add a secret here",
		"  e           edit selected value",
		"  r           rename selected key",
		"  d           delete selection (type \"yes\")",
		"  v           reveal/redact values",
		"  y / p       copy value / copy path",
		"",
		theme.TextH2.Render("Cache"),
		"  R           refresh folder and secret",
		"  ctrl+l      drop the whole cache",
		"",
		theme.TextH2.Render("Misc"),
		"  alt+t       cycle theme",
		"  alt+[ ]     resize panels",
		"  ctrl+q      quit (double-tap skips confirm)",
		"",
		theme.TextMutedStyle.Render("press any key to close"),
	}
	return theme.PanelFocused.Padding(1, 3).Render(strings.Join(lines, "\n"))
}
