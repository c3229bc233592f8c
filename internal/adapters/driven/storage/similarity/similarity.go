// Package similarity holds the brute-force ranking shared by the
// in-process vector stores.
package similarity

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b. Mismatched lengths and
// zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// CheckQuery reports a query whose length differs from any stored
// embedding. Cosine would score every such entry 0.
func CheckQuery(entries []domain.IndexEntry, query []float32) error {
	for i := range entries {
		if n := len(entries[i].Embedding); n != len(query) {
			return fmt.Errorf("%w: query has %d dimensions, index has %d; rebuild the index after changing the embedding model",
				domain.ErrInvalidInput, len(query), n)
		}
	}
	return nil
}

// TopK scores every entry against query and returns the best k, highest
// first. Equal scores keep insertion order.
func TopK(entries []domain.IndexEntry, query []float32, k int) []domain.ScoredChunk {
	if k <= 0 || len(entries) == 0 {
		return nil
	}
	scored := make([]domain.ScoredChunk, len(entries))
	for i := range entries {
		scored[i] = domain.ScoredChunk{
			Chunk: entries[i].Chunk,
			Score: Cosine(query, entries[i].Embedding),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
