package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	for name, c := range map[string]lipgloss.Color{
		"primary":   theme.Primary,
		"secondary": theme.Secondary,
		"muted":     theme.Muted,
		"error":     theme.Error,
		"bar":       theme.Bar,
	} {
		assert.NotEmpty(t, string(c), name)
	}
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme().Primary, s.Theme().Primary)
}

func TestStyles_Render(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Question.Render("Which company?"), "Which company?")
	assert.Contains(t, s.Answer.Render("NVIDIA"), "NVIDIA")
	assert.Contains(t, s.Citation.Render("NVDA 2023 p.41"), "NVDA 2023 p.41")
}
