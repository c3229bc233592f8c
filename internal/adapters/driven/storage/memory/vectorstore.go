package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/finrag/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory brute-force cosine index. Nothing is
// persisted, so every process start rebuilds it.
type VectorStore struct {
	mu      sync.RWMutex
	entries []domain.IndexEntry
	byID    map[string]int
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		byID: make(map[string]int),
	}
}

// Upsert inserts entries, replacing any with the same chunk ID in place.
func (s *VectorStore) Upsert(_ context.Context, entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if e.Chunk.ID == "" {
			return domain.ErrInvalidInput
		}
		e.Embedding = append([]float32(nil), e.Embedding...)
		if i, ok := s.byID[e.Chunk.ID]; ok {
			s.entries[i] = e
			continue
		}
		s.byID[e.Chunk.ID] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return nil
}

// Search returns the k entries most similar to query.
func (s *VectorStore) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := similarity.CheckQuery(s.entries, query); err != nil {
		return nil, err
	}
	return similarity.TopK(s.entries, query, k), nil
}

// Count returns the number of stored entries.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Reset removes every entry.
func (s *VectorStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.byID = make(map[string]int)
	return nil
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}
