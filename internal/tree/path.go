package tree

import "strings"

// Path identifies a location in the secret hierarchy as a normalized
// sequence of non-empty segments. The nil/empty path is the configured root's
// parent and never stored; callers always work with absolute paths that
// include the root's own segments.
type Path []string

// ParsePath normalizes a slash-separated string into a Path. Empty segments
// (leading, trailing or doubled separators) are dropped.
func ParsePath(s string) Path {
	parts := strings.Split(s, "/")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			p = append(p, part)
		}
	}
	return p
}

// String joins the segments with "/". The result carries no trailing
// separator; the remote client appends one for folder listings as needed.
func (p Path) String() string {
	return strings.Join(p, "/")
}

// Child returns a new Path extended by one segment.
func (p Path) Child(name string) Path {
	child := make(Path, len(p)+1)
	copy(child, p)
	child[len(p)] = strings.TrimSuffix(name, "/")
	return child
}

// Parent returns the enclosing path. ok is false at the empty path.
func (p Path) Parent() (Path, bool) {
	if len(p) == 0 {
		return nil, false
	}
	parent := make(Path, len(p)-1)
	copy(parent, p[:len(p)-1])
	return parent, true
}

// Name returns the last segment, or "" for the empty path.
func (p Path) Name() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Equal reports whether two paths have identical segment sequences.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is p itself or an ancestor of p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}
