package driven

import (
	"context"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

// VectorStore persists index entries and answers nearest-neighbour queries.
// Stores are written during an exclusive ingestion phase and are safe for
// concurrent reads afterwards.
type VectorStore interface {
	// Upsert inserts or replaces entries keyed by chunk ID.
	Upsert(ctx context.Context, entries []domain.IndexEntry) error

	// Search returns up to k chunks ordered by descending cosine similarity.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Reset removes every entry.
	Reset(ctx context.Context) error

	// Close releases resources.
	Close() error
}
