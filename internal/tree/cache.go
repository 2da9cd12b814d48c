package tree

// Cache maps normalized paths to their cached nodes. It holds at most one
// node per path and is mutated only from the program's update loop, so it
// carries no locking.
type Cache struct {
	nodes map[string]*Node
	seq   uint64
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{nodes: make(map[string]*Node)}
}

// Get returns the cached node for a path, creating an unknown-kind
// placeholder if absent. It never fails.
func (c *Cache) Get(p Path) *Node {
	key := p.String()
	if n, ok := c.nodes[key]; ok {
		return n
	}
	n := &Node{Path: p}
	c.nodes[key] = n
	return n
}

// Lookup returns the cached node without creating a placeholder.
func (c *Cache) Lookup(p Path) (*Node, bool) {
	n, ok := c.nodes[p.String()]
	return n, ok
}

// StoreFolder resolves a path as a folder with the given listing.
func (c *Cache) StoreFolder(p Path, children []Entry) *Node {
	n := c.Get(p)
	n.Kind = KindFolder
	n.Children = children
	n.Secret = nil
	n.FetchState = FetchIdle
	n.FetchErr = nil
	c.seq++
	n.FetchedAt = c.seq
	return n
}

// StoreLeaf resolves a path as a leaf with the given mapping.
func (c *Cache) StoreLeaf(p Path, secret map[string]string) *Node {
	n := c.Get(p)
	n.Kind = KindLeaf
	n.Children = nil
	n.Secret = secret
	n.FetchState = FetchIdle
	n.FetchErr = nil
	c.seq++
	n.FetchedAt = c.seq
	return n
}

// Invalidate removes the cached node for a path so the next visit re-fetches
// ground truth. With recursive set, every descendant is removed as well.
func (c *Cache) Invalidate(p Path, recursive bool) {
	delete(c.nodes, p.String())
	if !recursive {
		return
	}
	for key, n := range c.nodes {
		if n.Path.HasPrefix(p) {
			delete(c.nodes, key)
		}
	}
}

// Clear drops every cached node.
func (c *Cache) Clear() {
	c.nodes = make(map[string]*Node)
}

// Len returns the number of cached nodes.
func (c *Cache) Len() int {
	return len(c.nodes)
}
