package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

func newTestRetriever(results []domain.ScoredChunk) (*Retriever, *fixedStore) {
	store := &fixedStore{results: results}
	index := NewIndex(newKeywordEmbedder("x"), store)
	return NewRetriever(index, domain.DefaultUniverse(), domain.DefaultAppSettings().Retrieval), store
}

// candidates builds n results for the given entity/period pairs, cycling.
func candidates(n int, pairs ...[2]string) []domain.ScoredChunk {
	out := make([]domain.ScoredChunk, n)
	for i := range out {
		p := pairs[i%len(pairs)]
		out[i] = scored(1-float64(i)/100, p[0], p[1], i+1, fmt.Sprintf("chunk %d", i))
	}
	return out
}

func TestRetriever_ExtractFilter(t *testing.T) {
	r, _ := newTestRetriever(nil)

	tests := []struct {
		name     string
		query    string
		entities []string
		periods  []string
	}{
		{name: "nvidia and year", query: "NVIDIA 2023", entities: []string{"NVDA"}, periods: []string{"2023"}},
		{name: "lowercase alias", query: "how did microsoft do", entities: []string{"MSFT"}},
		{name: "alphabet maps to googl", query: "Alphabet revenue 2024", entities: []string{"GOOGL"}, periods: []string{"2024"}},
		{name: "ticker", query: "googl margin", entities: []string{"GOOGL"}},
		{name: "several", query: "Compare MSFT and Nvidia in 2022 vs 2023", entities: []string{"MSFT", "NVDA"}, periods: []string{"2022", "2023"}},
		{name: "out of range year", query: "Microsoft 2021"},
		{name: "nothing", query: "what is a 10-K"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := r.ExtractFilter(tt.query)
			if tt.name == "out of range year" {
				assert.Equal(t, []string{"MSFT"}, f.Entities)
				assert.Empty(t, f.Periods)
				return
			}
			assert.Equal(t, tt.entities, f.Entities)
			assert.Equal(t, tt.periods, f.Periods)
		})
	}
}

func TestRetriever_Search_Unfiltered(t *testing.T) {
	r, store := newTestRetriever(candidates(12, [2]string{"MSFT", "2023"}))

	results, filter, err := r.Search(t.Context(), "operating margin trends")

	require.NoError(t, err)
	assert.True(t, filter.IsEmpty())
	assert.Equal(t, 12, store.lastK)
	assert.Len(t, results, 8)
	assert.Equal(t, "chunk 0", results[0].Chunk.Text)
}

func TestRetriever_Search_FilteredWhenEnoughMatches(t *testing.T) {
	rec := newCountingRecorder()
	r, _ := newTestRetriever(candidates(12,
		[2]string{"NVDA", "2023"}, [2]string{"MSFT", "2023"}, [2]string{"NVDA", "2022"}))
	r.SetRecorder(rec)

	results, _, err := r.Search(t.Context(), "NVIDIA operating margin 2023")

	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, c := range results {
		assert.Equal(t, "NVDA", c.Chunk.Entity)
		assert.Equal(t, "2023", c.Chunk.Period)
	}
	assert.Equal(t, 1, rec.searches)
	assert.Zero(t, rec.fallbacks)
}

func TestRetriever_Search_FallsBackBelowThreshold(t *testing.T) {
	rec := newCountingRecorder()
	// Only two NVDA 2023 chunks among twelve candidates.
	results := candidates(12, [2]string{"MSFT", "2023"})
	results[3] = scored(0.5, "NVDA", "2023", 3, "nvda a")
	results[7] = scored(0.4, "NVDA", "2023", 7, "nvda b")
	r, _ := newTestRetriever(results)
	r.SetRecorder(rec)

	got, filter, err := r.Search(t.Context(), "NVIDIA 2023")

	require.NoError(t, err)
	assert.Equal(t, []string{"NVDA"}, filter.Entities)
	assert.Equal(t, results[:8], got)
	assert.Equal(t, 1, rec.fallbacks)
}

func TestRetriever_Search_FilterRequiresAllDimensions(t *testing.T) {
	r, _ := newTestRetriever(candidates(12,
		[2]string{"NVDA", "2022"}, [2]string{"MSFT", "2023"}, [2]string{"NVDA", "2023"}))

	got, _, err := r.Search(t.Context(), "NVIDIA 2023")

	require.NoError(t, err)
	require.Len(t, got, 4)
	for _, c := range got {
		assert.Equal(t, "NVDA", c.Chunk.Entity)
		assert.Equal(t, "2023", c.Chunk.Period)
	}
}

func TestRetriever_Search_EmptyIndex(t *testing.T) {
	r, _ := newTestRetriever(nil)

	got, _, err := r.Search(t.Context(), "Microsoft revenue 2023")

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetriever_Defaults(t *testing.T) {
	r := NewRetriever(NewIndex(newKeywordEmbedder("x"), &fixedStore{}), domain.DefaultUniverse(), domain.RetrievalSettings{})

	assert.Equal(t, 8, r.Limit())
	assert.Equal(t, 12, r.cfg.Candidates)
	assert.Equal(t, 3, r.cfg.MinFiltered)
}

func TestRetriever_Search_ZeroMinFilteredStillFallsBack(t *testing.T) {
	cfg := domain.DefaultAppSettings().Retrieval
	cfg.MinFiltered = 0
	store := &fixedStore{results: candidates(12, [2]string{"MSFT", "2023"})}
	r := NewRetriever(NewIndex(newKeywordEmbedder("x"), store), domain.DefaultUniverse(), cfg)

	results, filter, err := r.Search(t.Context(), "NVIDIA revenue 2023")

	require.NoError(t, err)
	assert.Equal(t, []string{"NVDA"}, filter.Entities)
	assert.Len(t, results, 8)
}
