package tree

import "strings"

// Kind is the resolved type of a cached node.
type Kind int

const (
	// KindUnknown means the path has not been fetched yet.
	KindUnknown Kind = iota
	// KindFolder holds child paths and no secret data.
	KindFolder
	// KindLeaf holds a key/value mapping and no children.
	KindLeaf
)

// String returns the kind name for status messages.
func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindLeaf:
		return "secret"
	default:
		return "unknown"
	}
}

// FetchState tracks the remote fetch lifecycle of a node.
type FetchState int

const (
	// FetchIdle means no fetch is outstanding.
	FetchIdle FetchState = iota
	// FetchInFlight means exactly one fetch is outstanding for this path.
	FetchInFlight
	// FetchFailed means the last fetch failed; any prior data is kept.
	FetchFailed
)

// Entry is one child of a folder as reported by the remote listing.
// Folder children arrive with a trailing "/" which is stripped into the flag.
type Entry struct {
	Name   string
	Folder bool
}

// DecodeEntry splits a raw listing name into its entry form.
func DecodeEntry(raw string) Entry {
	if strings.HasSuffix(raw, "/") {
		return Entry{Name: strings.TrimSuffix(raw, "/"), Folder: true}
	}
	return Entry{Name: raw}
}

// Display returns the entry name with the folder marker restored.
func (e Entry) Display() string {
	if e.Folder {
		return e.Name + "/"
	}
	return e.Name
}

// Node is the cached representation of one path.
type Node struct {
	Path Path
	Kind Kind

	// Children is present only for folders, in the order the server
	// returned them. Secret is present only for leaves once fetched.
	Children []Entry
	Secret   map[string]string

	FetchState FetchState
	FetchErr   error

	// Generation is assigned from a model-wide counter each time a fetch
	// is issued for this path; a completion whose generation no longer
	// matches is dropped as stale. The counter is shared so a node that
	// was invalidated and recreated can never reuse a generation an
	// in-flight completion still carries.
	Generation uint64

	// FetchedAt is the cache sequence number of the last successful store,
	// zero if never resolved.
	FetchedAt uint64
}

// Resolved reports whether the node holds successfully fetched data.
func (n *Node) Resolved() bool {
	return n.FetchedAt != 0 && n.Kind != KindUnknown
}

// HasChild reports whether a folder node already lists the given child name.
// Matching is exact and case-sensitive, ignoring the folder marker.
func (n *Node) HasChild(name string) bool {
	for _, e := range n.Children {
		if e.Name == name {
			return true
		}
	}
	return false
}

// ChildEntry returns the listed entry for name, if present.
func (n *Node) ChildEntry(name string) (Entry, bool) {
	for _, e := range n.Children {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}
