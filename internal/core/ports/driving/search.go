package driving

import (
	"context"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

// SearchService retrieves filing chunks for a free-text query.
type SearchService interface {
	// Search returns at most the configured limit of chunks, most similar
	// first, and the filter that was derived from the query.
	Search(ctx context.Context, query string) ([]domain.ScoredChunk, domain.RetrievalFilter, error)

	// ExtractFilter derives entity/period constraints from the query text.
	ExtractFilter(query string) domain.RetrievalFilter
}
