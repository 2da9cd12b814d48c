package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGet(t *testing.T) {
	c := NewCache()
	p := ParsePath("secret/app")

	n := c.Get(p)
	require.NotNil(t, n)
	assert.Equal(t, KindUnknown, n.Kind)
	assert.Equal(t, FetchIdle, n.FetchState)
	assert.False(t, n.Resolved())

	// Same path yields the same node, never a shadow copy
	again := c.Get(ParsePath("secret/app"))
	assert.Same(t, n, again)
	assert.Equal(t, 1, c.Len())
}

func TestCacheStore(t *testing.T) {
	c := NewCache()
	p := ParsePath("secret/app")

	t.Run("folder", func(t *testing.T) {
		n := c.StoreFolder(p, []Entry{{Name: "db_pass"}, {Name: "nested", Folder: true}})
		assert.Equal(t, KindFolder, n.Kind)
		assert.True(t, n.Resolved())
		assert.True(t, n.HasChild("db_pass"))
		assert.False(t, n.HasChild("DB_PASS")) // case-sensitive
	})

	t.Run("leaf replaces folder data", func(t *testing.T) {
		n := c.StoreLeaf(p, map[string]string{"db_pass": "s3cr3t"})
		assert.Equal(t, KindLeaf, n.Kind)
		assert.Nil(t, n.Children)
		assert.Equal(t, "s3cr3t", n.Secret["db_pass"])
	})

	t.Run("fetched_at advances", func(t *testing.T) {
		a := c.StoreLeaf(ParsePath("secret/a"), nil)
		b := c.StoreLeaf(ParsePath("secret/b"), nil)
		assert.Greater(t, b.FetchedAt, a.FetchedAt)
	})
}

func TestCacheInvalidate(t *testing.T) {
	setup := func() *Cache {
		c := NewCache()
		c.StoreFolder(ParsePath("secret"), []Entry{{Name: "app", Folder: true}})
		c.StoreFolder(ParsePath("secret/app"), []Entry{{Name: "db_pass"}})
		c.StoreLeaf(ParsePath("secret/app/db_pass"), map[string]string{"db_pass": "x"})
		c.StoreLeaf(ParsePath("secret/appendix"), map[string]string{"k": "v"})
		return c
	}

	t.Run("non-recursive removes only the path", func(t *testing.T) {
		c := setup()
		c.Invalidate(ParsePath("secret/app"), false)

		_, ok := c.Lookup(ParsePath("secret/app"))
		assert.False(t, ok)
		_, ok = c.Lookup(ParsePath("secret/app/db_pass"))
		assert.True(t, ok)
	})

	t.Run("recursive removes the whole subtree", func(t *testing.T) {
		c := setup()
		c.Invalidate(ParsePath("secret/app"), true)

		_, ok := c.Lookup(ParsePath("secret/app"))
		assert.False(t, ok)
		_, ok = c.Lookup(ParsePath("secret/app/db_pass"))
		assert.False(t, ok)

		// Sibling with a shared name prefix is untouched: matching is per
		// segment, not per string prefix.
		_, ok = c.Lookup(ParsePath("secret/appendix"))
		assert.True(t, ok)
		_, ok = c.Lookup(ParsePath("secret"))
		assert.True(t, ok)
	})

	t.Run("clear drops everything", func(t *testing.T) {
		c := setup()
		c.Clear()
		assert.Equal(t, 0, c.Len())
	})
}
