package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

func entry(id string, vec ...float32) domain.IndexEntry {
	return domain.IndexEntry{
		Chunk:     domain.Chunk{ID: id, Text: "text " + id, SourceID: "MSFT_2023.pdf", Entity: "MSFT", Period: "2023", Page: 1},
		Embedding: vec,
	}
}

func TestVectorStore_UpsertSearch(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()

	require.NoError(t, store.Upsert(ctx, []domain.IndexEntry{
		entry("a", 1, 0),
		entry("b", 0, 1),
		entry("c", 0.9, 0.1),
	}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	results, err := store.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Chunk.ID)
	assert.Equal(t, "c", results[1].Chunk.ID)
	assert.Equal(t, "MSFT", results[0].Chunk.Entity)
}

func TestVectorStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()

	require.NoError(t, store.Upsert(ctx, []domain.IndexEntry{entry("a", 1, 0)}))
	require.NoError(t, store.Upsert(ctx, []domain.IndexEntry{entry("a", 0, 1)}))

	count, _ := store.Count(ctx)
	assert.Equal(t, 1, count)

	results, err := store.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestVectorStore_UpsertRejectsEmptyID(t *testing.T) {
	err := NewVectorStore().Upsert(context.Background(), []domain.IndexEntry{entry("", 1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVectorStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()
	require.NoError(t, store.Upsert(ctx, []domain.IndexEntry{entry("a", 1)}))

	require.NoError(t, store.Reset(ctx))

	count, _ := store.Count(ctx)
	assert.Zero(t, count)
	results, err := store.Search(ctx, []float32{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorStore_SearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewVectorStore().Search(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVectorStore_SearchRejectsQueryDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store := NewVectorStore()
	require.NoError(t, store.Upsert(ctx, []domain.IndexEntry{entry("a", 1, 0, 0)}))

	_, err := store.Search(ctx, []float32{1, 0}, 1)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
