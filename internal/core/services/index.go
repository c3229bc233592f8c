package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
)

// Index embeds chunks into a vector store and answers similarity queries.
type Index struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
}

// NewIndex creates an index over the given embedding service and store.
func NewIndex(embedder driven.EmbeddingService, store driven.VectorStore) *Index {
	return &Index{embedder: embedder, store: store}
}

// Upsert embeds chunks in one request and stores them. A failure applies
// to the whole call; nothing is stored.
func (i *Index) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for n, c := range chunks {
		texts[n] = c.Text
	}

	embeddings, err := i.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embed batch: got %d embeddings for %d chunks", len(embeddings), len(chunks))
	}

	entries := make([]domain.IndexEntry, len(chunks))
	for n, c := range chunks {
		entries[n] = domain.IndexEntry{Chunk: c, Embedding: embeddings[n]}
	}
	if err := i.store.Upsert(ctx, entries); err != nil {
		return fmt.Errorf("store batch: %w", err)
	}
	return nil
}

// Query returns up to k chunks most similar to text, most similar first.
func (i *Index) Query(ctx context.Context, text string, k int) ([]domain.ScoredChunk, error) {
	if strings.TrimSpace(text) == "" || k <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	vec, err := i.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := i.store.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return results, nil
}

// Count returns the number of stored entries.
func (i *Index) Count(ctx context.Context) (int, error) {
	return i.store.Count(ctx)
}

// Reset removes every stored entry.
func (i *Index) Reset(ctx context.Context) error {
	return i.store.Reset(ctx)
}
