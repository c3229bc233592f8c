package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

func passages() []domain.ScoredChunk {
	return []domain.ScoredChunk{
		{Score: 0.91, Chunk: domain.Chunk{Entity: "NVDA", Period: "2023", Page: 41, SourceID: "NVDA_2023.pdf", Text: "Operating income was $4.2 billion"}},
		{Score: 0.84, Chunk: domain.Chunk{Entity: "MSFT", Period: "2023", Page: 37, SourceID: "MSFT_2023.pdf", Text: "Operating income increased 6%"}},
	}
}

func TestResultList_Empty(t *testing.T) {
	r := NewResultList(nil)

	assert.Equal(t, 0, r.Count())
	assert.Nil(t, r.SelectedResult())
	assert.Contains(t, r.View(), "No results")
}

func TestResultList_View(t *testing.T) {
	r := NewResultList(nil)
	r.SetResults(passages())

	view := r.View()

	assert.Contains(t, view, "Results (2)")
	assert.Contains(t, view, "NVDA 2023  p.41  NVDA_2023.pdf")
	assert.Contains(t, view, "0.910")
	assert.Contains(t, view, "Operating income was $4.2 billion")
}

func TestResultList_Navigation(t *testing.T) {
	r := NewResultList(nil)
	r.SetResults(passages())

	r.MoveUp()
	assert.Equal(t, 0, r.Selected())

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, r.Selected())

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	assert.Equal(t, 1, r.Selected(), "stays on last item")

	r, _ = r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 0, r.Selected())
}

func TestResultList_Expand(t *testing.T) {
	r := NewResultList(nil)
	long := strings.Repeat("segment revenue ", 40)
	results := passages()
	results[0].Chunk.Text = long
	r.SetResults(results)
	r.SetDimensions(60, 20)

	assert.NotContains(t, r.View(), strings.TrimSpace(long))

	r.ToggleExpanded()
	require.True(t, r.Expanded())
	assert.Contains(t, r.View(), "revenue")

	r.SetResults(passages())
	assert.False(t, r.Expanded(), "new results collapse the preview")
}

func TestResultList_TruncatesPreview(t *testing.T) {
	r := NewResultList(nil)
	r.SetDimensions(40, 20)
	results := passages()
	results[0].Chunk.Text = strings.Repeat("x", 200)
	r.SetResults(results)

	assert.Contains(t, r.View(), "...")
}
