package clipboard

import "github.com/atotto/clipboard"

// Sink receives copy requests (path strings or secret values) from the
// interaction layer.
type Sink interface {
	Copy(text string) error
}

// System writes to the OS clipboard.
type System struct{}

// Copy implements Sink.
func (System) Copy(text string) error {
	return clipboard.WriteAll(text)
}

// Memory captures copied text in-process. Used in tests and as a fallback
// when no system clipboard is available.
type Memory struct {
	Texts []string
}

// Copy implements Sink.
func (m *Memory) Copy(text string) error {
	m.Texts = append(m.Texts, text)
	return nil
}

// Last returns the most recently copied text, or "".
func (m *Memory) Last() string {
	if len(m.Texts) == 0 {
		return ""
	}
	return m.Texts[len(m.Texts)-1]
}
