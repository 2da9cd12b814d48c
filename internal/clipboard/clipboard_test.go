package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySink(t *testing.T) {
	m := &Memory{}
	assert.Empty(t, m.Last())

	require.NoError(t, m.Copy("hunter2"))
	assert.Equal(t, "hunter2", m.Last())

	require.NoError(t, m.Copy("rotated"))
	assert.Equal(t, "rotated", m.Last())
}
