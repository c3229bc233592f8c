package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrompt(t *testing.T) {
	p := NewPrompt(nil, "Ask", "Ask about a 10-K...")

	require.NotNil(t, p)
	assert.True(t, p.Focused())
	assert.Empty(t, p.Value())
	assert.Contains(t, p.View(), "Ask: ")
}

func TestPrompt_Typing(t *testing.T) {
	p := NewPrompt(nil, "Ask", "")

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("NVDA")})

	assert.Equal(t, "NVDA", p.Value())
}

func TestPrompt_ValueAndReset(t *testing.T) {
	p := NewPrompt(nil, "Search", "")

	p.SetValue("revenue 2023")
	assert.Equal(t, "revenue 2023", p.Value())

	p.Reset()
	assert.Empty(t, p.Value())
}

func TestPrompt_FocusBlur(t *testing.T) {
	p := NewPrompt(nil, "Search", "")

	p.Blur()
	assert.False(t, p.Focused())

	p.Focus()
	assert.True(t, p.Focused())
}

func TestPrompt_SetWidth(t *testing.T) {
	p := NewPrompt(nil, "Ask", "")

	p.SetWidth(100)
	assert.Equal(t, 100, p.Width())

	p.SetWidth(5)
	assert.Equal(t, 5, p.Width())
}
