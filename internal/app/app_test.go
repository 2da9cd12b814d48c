package app

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avitaltamir/vaultwalker/internal/clipboard"
	"github.com/avitaltamir/vaultwalker/internal/config"
	"github.com/avitaltamir/vaultwalker/internal/vault"
)

// fakeClient is an in-memory store. Listings are derived from the secret
// paths so writes and deletes show up in subsequent lists, like the real
// server.
type fakeClient struct {
	mu      sync.Mutex
	secrets map[string]map[string]string
	fail    error
	token   string
	deletes []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		secrets: map[string]map[string]string{
			"secret/db_creds":  {"username": "admin", "password": "hunter2"},
			"secret/app/api":   {"key": "abc123"},
			"secret/app/cache": {"url": "redis://localhost"},
		},
	}
}

func (f *fakeClient) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeClient) List(_ context.Context, path string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	prefix := path + "/"
	seen := map[string]bool{}
	var keys []string
	for p := range f.secrets {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			rest = rest[:i+1]
		}
		if !seen[rest] {
			seen[rest] = true
			keys = append(keys, rest)
		}
	}
	if len(keys) == 0 {
		return nil, &vault.Error{Kind: vault.KindNotFound, Op: "list", Path: path, Message: "not found"}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeClient) Read(_ context.Context, path string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	secret, ok := f.secrets[path]
	if !ok {
		return nil, &vault.Error{Kind: vault.KindNotFound, Op: "read", Path: path, Message: "not found"}
	}
	out := make(map[string]string, len(secret))
	for k, v := range secret {
		out[k] = v
	}
	return out, nil
}

func (f *fakeClient) Write(_ context.Context, path string, data map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	copied := make(map[string]string, len(data))
	for k, v := range data {
		copied[k] = v
	}
	f.secrets[path] = copied
	return nil
}

func (f *fakeClient) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	delete(f.secrets, path)
	f.deletes = append(f.deletes, path)
	return nil
}

func (f *fakeClient) secret(path string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.secrets[path]
}

// collect runs a command tree and gathers whatever messages arrive within
// the wait window. Timers (status expiry, spinner ticks armed for later)
// simply don't fire in time and are dropped.
func collect(cmd tea.Cmd, wait time.Duration) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msgs := make(chan tea.Msg, 32)
	var run func(c tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, bc := range batch {
					run(bc)
				}
				return
			}
			if msg != nil {
				msgs <- msg
			}
		}()
	}
	run(cmd)

	var out []tea.Msg
	deadline := time.After(wait)
	for {
		select {
		case msg := <-msgs:
			out = append(out, msg)
		case <-deadline:
			return out
		}
	}
}

// pump applies a command's messages back into the model, following up on
// any commands those updates return, up to a small depth. This settles
// fetch and mutation round trips against the fake client.
func pump(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for depth := 0; depth < 4 && cmd != nil; depth++ {
		msgs := collect(cmd, 100*time.Millisecond)
		if len(msgs) == 0 {
			return m
		}
		var next []tea.Cmd
		for _, msg := range msgs {
			model, c := m.Update(msg)
			m = model.(Model)
			if c != nil {
				next = append(next, c)
			}
		}
		cmd = tea.Batch(next...)
	}
	return m
}

func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	model, cmd := m.Update(msg)
	return pump(t, model.(Model), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeString(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func newTestApp(t *testing.T) (Model, *fakeClient) {
	t.Helper()
	fake := newFakeClient()
	return startApp(t, fake), fake
}

func startApp(t *testing.T, fake *fakeClient) Model {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	m := New(fake, config.Config{Addr: "http://127.0.0.1:8200", RootPath: "secret"}, &clipboard.Memory{})
	model, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = model.(Model)
	return pump(t, m, m.Init())
}

// openLeaf navigates the cursor to db_creds and opens it in the viewer.
func openLeaf(t *testing.T, m Model) Model {
	t.Helper()
	m.browser = m.browser.SelectName("db_creds")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.viewing)
	return m
}

func TestInitialFetch(t *testing.T) {
	m, _ := newTestApp(t)

	entry, ok := m.browser.SelectedEntry()
	require.True(t, ok)
	assert.Equal(t, "app", entry.Name)
	assert.True(t, entry.Folder)
	assert.False(t, m.browser.Loading())
	assert.Equal(t, ModeBrowsing, m.Mode())
}

func TestOpenFolderDescends(t *testing.T) {
	m, _ := newTestApp(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "secret/app", m.current.String())

	entry, ok := m.browser.SelectedEntry()
	require.True(t, ok)
	assert.Equal(t, "api", entry.Name)
}

func TestBackStopsAtRoot(t *testing.T) {
	m, _ := newTestApp(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, "secret/app", m.current.String())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "secret", m.current.String())
	// Selection lands back on the folder we came out of.
	entry, ok := m.browser.SelectedEntry()
	require.True(t, ok)
	assert.Equal(t, "app", entry.Name)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "secret", m.current.String())
	assert.Contains(t, m.status, "root")
}

func TestOpenLeafFocusesViewer(t *testing.T) {
	m, _ := newTestApp(t)

	m = openLeaf(t, m)
	assert.Equal(t, "secret/db_creds", m.viewing.String())
	assert.Equal(t, PanelViewer, m.focus)
	assert.False(t, m.viewer.Revealed())

	key, ok := m.viewer.SelectedKey()
	require.True(t, ok)
	assert.Equal(t, "password", key)
}

func TestCreateSecretFlow(t *testing.T) {
	m, fake := newTestApp(t)

	m = press(t, m, runes("a"))
	assert.Equal(t, ModeEnteringNewKeyName, m.Mode())

	m = typeString(t, m, "token")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeEnteringNewKeyValue, m.Mode())

	m = typeString(t, m, "s3cr3t")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ModeBrowsing, m.Mode())
	assert.Equal(t, map[string]string{"token": "s3cr3t"}, fake.secret("secret/token"))

	// Listing was refetched and the new entry selected.
	entry, ok := m.browser.SelectedEntry()
	require.True(t, ok)
	assert.Equal(t, "token", entry.Name)
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	m, fake := newTestApp(t)

	m = press(t, m, runes("a"))
	m = typeString(t, m, "db_creds")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ModeBrowsing, m.Mode())
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "already exists")
	assert.Equal(t, map[string]string{"username": "admin", "password": "hunter2"},
		fake.secret("secret/db_creds"))
}

func TestDeleteRequiresLiteralYes(t *testing.T) {
	m, fake := newTestApp(t)
	m.browser = m.browser.SelectName("db_creds")

	m = press(t, m, runes("d"))
	assert.Equal(t, ModeConfirmingDelete, m.Mode())

	m = typeString(t, m, "y")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, fake.deletes)
	assert.Contains(t, m.status, "aborted")

	m.browser = m.browser.SelectName("db_creds")
	m = press(t, m, runes("d"))
	m = typeString(t, m, "yes")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []string{"secret/db_creds"}, fake.deletes)
	// Listing was refetched without the deleted entry.
	for _, name := range []string{"db_creds"} {
		entry, ok := m.browser.SelectedEntry()
		require.True(t, ok)
		assert.NotEqual(t, name, entry.Name)
	}
}

func TestDeleteViewedLeafClearsViewer(t *testing.T) {
	m, _ := newTestApp(t)
	m = openLeaf(t, m)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, PanelBrowser, m.focus)
	m.browser = m.browser.SelectName("db_creds")

	m = press(t, m, runes("d"))
	m = typeString(t, m, "yes")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, m.viewing)
	assert.Nil(t, m.viewer.Path())
}

func TestDeleteLastEntryClimbsToParent(t *testing.T) {
	fake := newFakeClient()
	fake.secrets = map[string]map[string]string{
		"secret/app/only": {"token": "t0"},
		"secret/db_creds": {"username": "admin"},
	}
	m := startApp(t, fake)

	m.browser = m.browser.SelectName("app")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, "secret/app", m.current.String())

	m = press(t, m, runes("d"))
	m = typeString(t, m, "yes")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// The folder lost its only entry and vanished upstream along with
	// it. The browser climbs back to the parent instead of offering the
	// dead name under a not-found error.
	assert.Equal(t, "secret", m.current.String())
	entry, ok := m.browser.SelectedEntry()
	require.True(t, ok)
	assert.Equal(t, "db_creds", entry.Name)
	assert.NotContains(t, m.status, "not found")
	assert.False(t, m.statusErr)
}

func TestEditValue(t *testing.T) {
	m, fake := newTestApp(t)
	m = openLeaf(t, m)

	// Cursor starts on "password" (sorted order: password, username).
	m = press(t, m, runes("e"))
	require.Equal(t, ModeEnteringEditedValue, m.Mode())
	assert.Equal(t, "hunter2", m.prompt.Value())

	m = typeString(t, m, "!")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, map[string]string{"username": "admin", "password": "hunter2!"},
		fake.secret("secret/db_creds"))
}

func TestRenameKey(t *testing.T) {
	m, fake := newTestApp(t)
	m = openLeaf(t, m)

	m = press(t, m, runes("r"))
	require.Equal(t, ModeEnteringRenameTarget, m.Mode())
	assert.Equal(t, "password", m.prompt.Value())

	m = typeString(t, m, "2")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	secret := fake.secret("secret/db_creds")
	assert.Equal(t, "hunter2", secret["password2"])
	assert.NotContains(t, secret, "password")

	// After the refetch the renamed key is selected.
	key, ok := m.viewer.SelectedKey()
	require.True(t, ok)
	assert.Equal(t, "password2", key)
}

func TestPendingMutationBlocksSecond(t *testing.T) {
	m, _ := newTestApp(t)

	// Start a create but do not run its command: the mutation stays
	// pending inside the tree model.
	m = press(t, m, runes("a"))
	m = typeString(t, m, "token")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeString(t, m, "v")
	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(Model)
	require.NotNil(t, m.tree.Pending())

	m = press(t, m, runes("a"))
	assert.Equal(t, ModeBrowsing, m.Mode())
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "in flight")
}

func TestCopyValue(t *testing.T) {
	m, _ := newTestApp(t)
	clip := &clipboard.Memory{}
	m.clip = clip
	m = openLeaf(t, m)

	m = press(t, m, runes("y"))
	assert.Equal(t, "hunter2", clip.Last())
	// The status line names the key, never the value.
	assert.Contains(t, m.status, "password")
	assert.NotContains(t, m.status, "hunter2")
}

func TestCopyPath(t *testing.T) {
	m, _ := newTestApp(t)
	clip := &clipboard.Memory{}
	m.clip = clip
	m.browser = m.browser.SelectName("db_creds")

	m = press(t, m, runes("p"))
	assert.Equal(t, "secret/db_creds", clip.Last())
}

func TestRefreshKeepsStaleDataOnFailure(t *testing.T) {
	m, fake := newTestApp(t)
	m = openLeaf(t, m)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})

	fake.mu.Lock()
	fake.fail = &vault.Error{Kind: vault.KindUnreachable, Op: "list", Path: "secret", Message: "connection refused"}
	fake.mu.Unlock()

	m = press(t, m, runes("R"))

	// Cached listing and secret stay on screen.
	entry, ok := m.browser.SelectedEntry()
	require.True(t, ok)
	assert.NotEmpty(t, entry.Name)
	assert.Equal(t, "secret/db_creds", m.viewer.Path().String())
	assert.True(t, m.statusErr)
}

func TestCopyStaleValueRefetchesFirst(t *testing.T) {
	m, fake := newTestApp(t)
	clip := &clipboard.Memory{}
	m.clip = clip
	m = openLeaf(t, m)

	fake.mu.Lock()
	fake.fail = &vault.Error{Kind: vault.KindUnreachable, Op: "read", Path: "secret/db_creds", Message: "connection refused"}
	fake.mu.Unlock()
	m = press(t, m, runes("R"))
	require.True(t, m.viewer.Stale())

	// The server comes back with a rotated value; the copy must pick up
	// the fresh one, never the stale cache.
	fake.mu.Lock()
	fake.fail = nil
	fake.secrets["secret/db_creds"]["password"] = "rotated"
	fake.mu.Unlock()

	m = press(t, m, runes("y"))
	assert.Equal(t, "rotated", clip.Last())
	assert.False(t, m.viewer.Stale())
}

func TestHelpOverlay(t *testing.T) {
	m, _ := newTestApp(t)

	m = press(t, m, runes("?"))
	assert.Equal(t, ModeShowingHelp, m.Mode())
	assert.Contains(t, m.View(), "vaultwalker keys")

	m = press(t, m, runes("x"))
	assert.Equal(t, ModeBrowsing, m.Mode())
}

func TestSearchMode(t *testing.T) {
	m, _ := newTestApp(t)

	m = press(t, m, runes("/"))
	assert.Equal(t, ModeSearching, m.Mode())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeBrowsing, m.Mode())
}

func TestQuitDialog(t *testing.T) {
	m, _ := newTestApp(t)

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	m = model.(Model)
	assert.True(t, m.showQuit)
	assert.Contains(t, m.View(), "Quit")

	m = press(t, m, runes("n"))
	assert.False(t, m.showQuit)

	// A quick second ctrl+q skips the dialog.
	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	m = model.(Model)
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	m = model.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestTokenReloaded(t *testing.T) {
	m, fake := newTestApp(t)

	model, _ := m.Update(TokenReloadedMsg{Token: "hvs.rotated"})
	m = model.(Model)

	fake.mu.Lock()
	token := fake.token
	fake.mu.Unlock()
	assert.Equal(t, "hvs.rotated", token)
	assert.Contains(t, m.status, "token reloaded")
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "browsing", ModeBrowsing.String())
	assert.Equal(t, "confirm-delete", ModeConfirmingDelete.String())
	assert.Equal(t, "browser", PanelBrowser.String())
	assert.Equal(t, "viewer", PanelViewer.String())
}
