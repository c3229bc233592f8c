package driving

import (
	"context"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

// FilingService downloads annual filings into the data directory.
type FilingService interface {
	// Download fetches every tracked entity and period not already on disk.
	Download(ctx context.Context) (*domain.DownloadReport, error)
}
