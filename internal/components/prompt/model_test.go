package prompt

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeString(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestOpenAndClose(t *testing.T) {
	m := New()
	assert.False(t, m.Active())

	m, cmd := m.Open(KindNewKeyName, "New key:", "name", "", false)
	assert.True(t, m.Active())
	assert.Equal(t, KindNewKeyName, m.Kind())
	assert.NotNil(t, cmd)

	m = m.Close()
	assert.False(t, m.Active())
	assert.Empty(t, m.Value())
}

func TestOpenPreloadsInitialValue(t *testing.T) {
	m := New()
	m, _ = m.Open(KindEditValue, "Value:", "", "s3cr3t", false)
	assert.Equal(t, "s3cr3t", m.Value())
}

func TestTypingAndSubmit(t *testing.T) {
	m := New()
	m, _ = m.Open(KindNewKeyName, "New key:", "name", "", false)
	m = typeString(m, "db_pass")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg := cmd()
	submit, ok := msg.(SubmitMsg)
	require.True(t, ok)
	assert.Equal(t, KindNewKeyName, submit.Kind)
	assert.Equal(t, "db_pass", submit.Value)
}

func TestEscapeCancels(t *testing.T) {
	m := New()
	m, _ = m.Open(KindConfirmDelete, "Type yes to delete:", "", "", true)
	m = typeString(m, "ye")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	cancel, ok := cmd().(CancelMsg)
	require.True(t, ok)
	assert.Equal(t, KindConfirmDelete, cancel.Kind)
}

func TestInactivePromptIgnoresInput(t *testing.T) {
	m := New()

	newM, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, m.Active(), newM.Active())
}

func TestView(t *testing.T) {
	t.Run("inactive renders empty", func(t *testing.T) {
		m := New()
		m = m.SetSize(60, 3)
		assert.Empty(t, m.View())
	})

	t.Run("active renders label", func(t *testing.T) {
		m := New()
		m = m.SetSize(60, 3)
		m, _ = m.Open(KindRenameTarget, "Rename to:", "", "old", false)
		assert.Contains(t, m.View(), "Rename to:")
	})

	t.Run("zero width renders empty", func(t *testing.T) {
		m := New()
		m, _ = m.Open(KindNewKeyName, "New key:", "", "", false)
		assert.Empty(t, m.View())
	})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "confirm-delete", KindConfirmDelete.String())
	assert.Equal(t, "none", KindNone.String())
	assert.Equal(t, "new-key-value", KindNewKeyValue.String())
}
