package tree

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avitaltamir/vaultwalker/internal/vault"
)

// Validation errors caught before any remote call is issued.
var (
	ErrAlreadyExists   = errors.New("name already exists")
	ErrNotFound        = errors.New("no such key")
	ErrInvalidInput    = errors.New("empty name")
	ErrMutationPending = errors.New("another change is still in flight")
)

// MutationOp identifies a user-initiated write operation.
type MutationOp int

const (
	OpCreate MutationOp = iota
	OpEdit
	OpRename
	OpDelete
)

// String returns the operation name for status messages.
func (op MutationOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpEdit:
		return "edit"
	case OpRename:
		return "rename"
	case OpDelete:
		return "delete"
	default:
		return "mutation"
	}
}

// Mutation is the single in-flight user-initiated write/delete/rename.
type Mutation struct {
	Op    MutationOp
	Path  Path   // Target path (the new leaf for creates)
	Key   string // Mapping key being created/edited/renamed
	NewKey string // Rename target, empty otherwise
	Value string
}

// Messages delivered back into the update loop by remote-call commands.
type (
	// FetchedMsg carries the result of a list/read issued by Enter.
	FetchedMsg struct {
		Path       Path
		Generation uint64
		Kind       Kind
		Children   []Entry
		Secret     map[string]string
		Err        error
	}

	// MutationDoneMsg carries the result of a write/delete.
	MutationDoneMsg struct {
		Mutation Mutation
		Err      error
	}
)

// Model is the sole point of contact between the UI and the remote store.
// It owns the path cache, enforces single-flight fetching per path, and
// serializes user-initiated mutations.
type Model struct {
	client  vault.Client
	cache   *Cache
	root    Path
	pending *Mutation
	gen     uint64
}

// NewModel creates a tree model rooted at the given path.
func NewModel(client vault.Client, root Path) *Model {
	m := &Model{
		client: client,
		cache:  NewCache(),
		root:   root,
	}
	m.cache.Get(root)
	return m
}

// Root returns the configured root path.
func (m *Model) Root() Path {
	return m.root
}

// Node returns the cached node for a path, creating a placeholder if absent.
func (m *Model) Node(p Path) *Node {
	return m.cache.Get(p)
}

// Lookup returns the cached node for a path without creating one.
func (m *Model) Lookup(p Path) (*Node, bool) {
	return m.cache.Lookup(p)
}

// Pending returns the in-flight mutation, or nil.
func (m *Model) Pending() *Mutation {
	return m.pending
}

// Enter ensures the node at p is fetched. On a cache hit or when a fetch is
// already outstanding for p it returns nil; otherwise it issues exactly one
// list or read, chosen from the node's known kind or the hint.
func (m *Model) Enter(p Path, hint Kind) tea.Cmd {
	n := m.cache.Get(p)
	if n.FetchState == FetchInFlight {
		return nil // Coalesce into the outstanding request
	}
	if n.Resolved() {
		return nil
	}

	kind := n.Kind
	if kind == KindUnknown {
		kind = hint
	}
	if kind == KindUnknown {
		kind = KindFolder
	}

	n.FetchState = FetchInFlight
	m.gen++
	n.Generation = m.gen
	gen := n.Generation

	client := m.client
	path := p.String()
	if kind == KindLeaf {
		return func() tea.Msg {
			secret, err := client.Read(context.Background(), path)
			return FetchedMsg{Path: p, Generation: gen, Kind: KindLeaf, Secret: secret, Err: err}
		}
	}
	return func() tea.Msg {
		names, err := client.List(context.Background(), path)
		children := make([]Entry, 0, len(names))
		for _, name := range names {
			children = append(children, DecodeEntry(name))
		}
		return FetchedMsg{Path: p, Generation: gen, Kind: KindFolder, Children: children, Err: err}
	}
}

// Refresh busts the freshness of p and re-fetches it. The last-known data
// stays visible until the new fetch resolves, so a failed refresh degrades
// to stale rather than to a blank view.
func (m *Model) Refresh(p Path, hint Kind) tea.Cmd {
	n := m.cache.Get(p)
	if n.FetchState == FetchInFlight {
		return nil
	}
	n.FetchedAt = 0
	if hint == KindUnknown {
		hint = n.Kind
	}
	return m.Enter(p, hint)
}

// Apply folds a fetch completion into the cache. Completions for paths that
// were invalidated in the meantime, or whose generation has advanced, are
// dropped without touching any node.
func (m *Model) Apply(msg FetchedMsg) {
	n, ok := m.cache.Lookup(msg.Path)
	if !ok || n.Generation != msg.Generation {
		return
	}

	if msg.Err != nil {
		// KV v1 folders are implicit: a not-found listing means the
		// folder has no children, or ceased to exist when its last
		// entry was deleted. That answer is authoritative, not a
		// failure.
		if msg.Kind == KindFolder && vault.IsKind(msg.Err, vault.KindNotFound) {
			m.cache.StoreFolder(msg.Path, nil)
			return
		}
		// Degrade to stale: previously cached data stays visible.
		n.FetchState = FetchFailed
		n.FetchErr = msg.Err
		return
	}

	switch msg.Kind {
	case KindFolder:
		m.cache.StoreFolder(msg.Path, msg.Children)
	case KindLeaf:
		m.cache.StoreLeaf(msg.Path, msg.Secret)
	}
}

// CreateSecret starts a mutation adding a new leaf named key under parent,
// holding {key: value}. Validation failures return an error and issue no
// remote call.
func (m *Model) CreateSecret(parent Path, key, value string) (tea.Cmd, error) {
	if m.pending != nil {
		return nil, ErrMutationPending
	}
	if key == "" {
		return nil, ErrInvalidInput
	}
	if n, ok := m.cache.Lookup(parent); ok && n.HasChild(key) {
		return nil, ErrAlreadyExists
	}

	leaf := parent.Child(key)
	mut := Mutation{Op: OpCreate, Path: leaf, Key: key, Value: value}
	m.pending = &mut

	client := m.client
	path := leaf.String()
	data := map[string]string{key: value}
	return func() tea.Msg {
		err := client.Write(context.Background(), path, data)
		return MutationDoneMsg{Mutation: mut, Err: err}
	}, nil
}

// EditValue starts a mutation replacing one key's value in a cached leaf.
// The store requires whole-mapping writes, so the full mapping is sent with
// the single key swapped.
func (m *Model) EditValue(leaf Path, key, newValue string) (tea.Cmd, error) {
	if m.pending != nil {
		return nil, ErrMutationPending
	}
	n, ok := m.cache.Lookup(leaf)
	if !ok || n.Kind != KindLeaf || n.Secret == nil {
		return nil, ErrNotFound
	}
	if _, ok := n.Secret[key]; !ok {
		return nil, ErrNotFound
	}

	data := make(map[string]string, len(n.Secret))
	for k, v := range n.Secret {
		data[k] = v
	}
	data[key] = newValue

	mut := Mutation{Op: OpEdit, Path: leaf, Key: key, Value: newValue}
	m.pending = &mut

	client := m.client
	path := leaf.String()
	return func() tea.Msg {
		err := client.Write(context.Background(), path, data)
		return MutationDoneMsg{Mutation: mut, Err: err}
	}, nil
}

// RenameKey starts a mutation renaming a mapping key inside a cached leaf.
// Removal and re-add go out as one combined write so an interrupted process
// never leaves a visible half-renamed mapping. This is best-effort only: the
// remote write itself is not transactional.
func (m *Model) RenameKey(leaf Path, oldKey, newKey string) (tea.Cmd, error) {
	if m.pending != nil {
		return nil, ErrMutationPending
	}
	if newKey == "" {
		return nil, ErrInvalidInput
	}
	n, ok := m.cache.Lookup(leaf)
	if !ok || n.Kind != KindLeaf || n.Secret == nil {
		return nil, ErrNotFound
	}
	value, ok := n.Secret[oldKey]
	if !ok {
		return nil, ErrNotFound
	}
	if _, exists := n.Secret[newKey]; exists {
		return nil, ErrAlreadyExists
	}

	data := make(map[string]string, len(n.Secret))
	for k, v := range n.Secret {
		if k != oldKey {
			data[k] = v
		}
	}
	data[newKey] = value

	mut := Mutation{Op: OpRename, Path: leaf, Key: oldKey, NewKey: newKey, Value: value}
	m.pending = &mut

	client := m.client
	path := leaf.String()
	return func() tea.Msg {
		err := client.Write(context.Background(), path, data)
		return MutationDoneMsg{Mutation: mut, Err: err}
	}, nil
}

// DeleteEntry starts a mutation removing the entry at p. The confirmation
// gate lives in the interaction layer; by the time this is called the user
// has confirmed.
func (m *Model) DeleteEntry(p Path) (tea.Cmd, error) {
	if m.pending != nil {
		return nil, ErrMutationPending
	}

	mut := Mutation{Op: OpDelete, Path: p}
	m.pending = &mut

	client := m.client
	path := p.String()
	return func() tea.Msg {
		err := client.Delete(context.Background(), path)
		return MutationDoneMsg{Mutation: mut, Err: err}
	}, nil
}

// CompleteMutation ends the pending mutation and, on success, invalidates
// exactly the affected cache regions so the next visit re-fetches ground
// truth. Value-only edits leave every folder listing untouched.
func (m *Model) CompleteMutation(msg MutationDoneMsg) {
	m.pending = nil
	if msg.Err != nil {
		return
	}

	switch msg.Mutation.Op {
	case OpCreate:
		if parent, ok := msg.Mutation.Path.Parent(); ok {
			m.cache.Invalidate(parent, false)
		}
		// Re-fetch the new leaf truthfully rather than assuming the write.
		m.cache.Invalidate(msg.Mutation.Path, false)
	case OpEdit, OpRename:
		m.cache.Invalidate(msg.Mutation.Path, false)
	case OpDelete:
		if parent, ok := msg.Mutation.Path.Parent(); ok {
			m.cache.Invalidate(parent, false)
		}
		m.cache.Invalidate(msg.Mutation.Path, true)
	}
}

// ClearCache drops every cached node and re-seeds the root placeholder.
func (m *Model) ClearCache() {
	m.cache.Clear()
	m.cache.Get(m.root)
}
