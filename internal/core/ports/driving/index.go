package driving

import (
	"context"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

// IndexService builds or attaches to the filing index.
type IndexService interface {
	// Ensure attaches to a populated store, or builds it when empty.
	Ensure(ctx context.Context) (*domain.IndexReport, error)

	// Rebuild discards stored entries and ingests the data directory.
	Rebuild(ctx context.Context) (*domain.IndexReport, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)
}
