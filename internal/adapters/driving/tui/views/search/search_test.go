package search

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/finrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/finrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/finrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/finrag/internal/core/domain"
)

// MockSearchService implements driving.SearchService for testing.
type MockSearchService struct {
	SearchFunc func(ctx context.Context, query string) ([]domain.ScoredChunk, domain.RetrievalFilter, error)
}

func (m *MockSearchService) Search(ctx context.Context, query string) ([]domain.ScoredChunk, domain.RetrievalFilter, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	return nil, domain.RetrievalFilter{}, nil
}

func (m *MockSearchService) ExtractFilter(_ string) domain.RetrievalFilter {
	return domain.RetrievalFilter{}
}

func testResults() []domain.ScoredChunk {
	return []domain.ScoredChunk{
		{Score: 0.9, Chunk: domain.Chunk{Entity: "MSFT", Period: "2023", Page: 37, SourceID: "MSFT_2023.pdf", Text: "Revenue increased $13.6 billion"}},
		{Score: 0.8, Chunk: domain.Chunk{Entity: "MSFT", Period: "2023", Page: 40, SourceID: "MSFT_2023.pdf", Text: "Intelligent Cloud revenue"}},
	}
}

func newReadyView(svc *MockSearchService) *View {
	v := NewView(styles.DefaultStyles(), keymap.DefaultKeyMap(), svc)
	v.SetDimensions(100, 30)
	return v
}

func submit(t *testing.T, v *View, query string) {
	t.Helper()
	v.SetQuery(query)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, nil)

	require.NotNil(t, v)
	assert.True(t, v.InputFocused())
	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_EmptyQueryDoesNothing(t *testing.T) {
	v := newReadyView(&MockSearchService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.True(t, v.InputFocused())
}

func TestView_SubmitSearch(t *testing.T) {
	var got string
	svc := &MockSearchService{SearchFunc: func(_ context.Context, q string) ([]domain.ScoredChunk, domain.RetrievalFilter, error) {
		got = q
		return testResults(), domain.RetrievalFilter{Entities: []string{"MSFT"}, Periods: []string{"2023"}}, nil
	}}
	v := newReadyView(svc)

	submit(t, v, "Microsoft revenue 2023")
	assert.False(t, v.InputFocused())
	assert.Equal(t, status.StateSearching, v.statusbar.State())

	msg := v.performSearch("Microsoft revenue 2023")()
	v.Update(msg)

	assert.Equal(t, "Microsoft revenue 2023", got)
	assert.Len(t, v.Results(), 2)
	out := v.View()
	assert.Contains(t, out, "Filter companies: MSFT; years: 2023")
	assert.Contains(t, out, "MSFT 2023  p.37")
	assert.Contains(t, out, "2 results")
}

func TestView_SearchError(t *testing.T) {
	svc := &MockSearchService{SearchFunc: func(context.Context, string) ([]domain.ScoredChunk, domain.RetrievalFilter, error) {
		return nil, domain.RetrievalFilter{}, errors.New("embedding provider down")
	}}
	v := newReadyView(svc)

	v.Update(v.performSearch("q")())

	require.Error(t, v.Err())
	assert.Contains(t, v.View(), "embedding provider down")
}

func TestView_NoSearchService(t *testing.T) {
	v := NewView(styles.DefaultStyles(), keymap.DefaultKeyMap(), nil)
	v.SetDimensions(100, 30)

	msg := v.performSearch("q")()

	errMsg, ok := msg.(messages.ErrorOccurred)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.Err, ErrNoSearchService)
}

func TestView_ResultsMode(t *testing.T) {
	v := newReadyView(&MockSearchService{})
	submit(t, v, "q")
	v.Update(messages.SearchCompleted{Results: testResults()})

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, v.SelectedIndex())

	v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, v.View(), "Intelligent Cloud revenue")

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.True(t, v.InputFocused())
	assert.Empty(t, v.Query())
}

func TestView_EscReturnsToMenu(t *testing.T) {
	v := newReadyView(&MockSearchService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestView_Reset(t *testing.T) {
	v := newReadyView(&MockSearchService{})
	submit(t, v, "q")
	v.Update(messages.SearchCompleted{Results: testResults(), Filter: domain.RetrievalFilter{Periods: []string{"2023"}}})

	v.Reset()

	assert.True(t, v.InputFocused())
	assert.Empty(t, v.Results())
	assert.NoError(t, v.Err())
	assert.NotContains(t, v.View(), "Filter")
}
