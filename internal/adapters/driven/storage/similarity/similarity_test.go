package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, Cosine([]float32{1}, []float32{1, 2}))
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 2}))
	assert.Zero(t, Cosine(nil, nil))
}

func TestTopK(t *testing.T) {
	entries := []domain.IndexEntry{
		{Chunk: domain.Chunk{ID: "far"}, Embedding: []float32{0, 1}},
		{Chunk: domain.Chunk{ID: "near"}, Embedding: []float32{1, 0.1}},
		{Chunk: domain.Chunk{ID: "tie-a"}, Embedding: []float32{1, 1}},
		{Chunk: domain.Chunk{ID: "tie-b"}, Embedding: []float32{2, 2}},
	}

	got := TopK(entries, []float32{1, 0}, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "near", got[0].Chunk.ID)
	assert.Equal(t, "tie-a", got[1].Chunk.ID)
	assert.Equal(t, "tie-b", got[2].Chunk.ID)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)

	assert.Len(t, TopK(entries, []float32{1, 0}, 10), 4)
	assert.Nil(t, TopK(entries, []float32{1, 0}, 0))
	assert.Nil(t, TopK(nil, []float32{1, 0}, 3))
}

func TestCheckQuery(t *testing.T) {
	entries := []domain.IndexEntry{
		{Chunk: domain.Chunk{ID: "a"}, Embedding: []float32{1, 0, 0}},
		{Chunk: domain.Chunk{ID: "b"}, Embedding: []float32{0, 1, 0}},
	}

	assert.NoError(t, CheckQuery(entries, []float32{1, 1, 1}))
	assert.NoError(t, CheckQuery(nil, []float32{1}))

	err := CheckQuery(entries, []float32{1, 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "query has 2 dimensions, index has 3")
}
