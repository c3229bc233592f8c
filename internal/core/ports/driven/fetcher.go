package driven

import (
	"context"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

// FilingFetcher retrieves annual filings from a regulatory repository.
type FilingFetcher interface {
	// Fetch returns the primary filing document for an entity and period.
	// Returns domain.ErrNoFilingFound when the repository has none.
	Fetch(ctx context.Context, req domain.FilingRequest) (*domain.Filing, error)
}
