package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
	"github.com/custodia-labs/finrag/internal/core/ports/driving"
	"github.com/custodia-labs/finrag/internal/logger"
)

// Ensure FilingService implements the interface.
var _ driving.FilingService = (*FilingService)(nil)

// filingExtensions are the names a downloaded filing may be saved under.
var filingExtensions = []string{"pdf", "html", "htm"}

// FilingService downloads annual filings for every tracked entity and period.
type FilingService struct {
	fetcher  driven.FilingFetcher
	universe domain.Universe
	dataDir  string
}

// NewFilingService creates a filing service writing into dataDir.
func NewFilingService(fetcher driven.FilingFetcher, universe domain.Universe, dataDir string) *FilingService {
	return &FilingService{fetcher: fetcher, universe: universe, dataDir: dataDir}
}

// Download fetches every entity and period without a file on disk.
// Failures for one filing do not stop the others; they are joined into
// the returned error.
func (s *FilingService) Download(ctx context.Context) (*domain.DownloadReport, error) {
	logger.Section("Filing Download")

	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	report := &domain.DownloadReport{}
	var errs []error
	for _, entity := range s.universe.Entities {
		for _, period := range s.universe.Periods {
			name, exists := s.existing(entity.Ticker, period)
			if exists {
				logger.Debug("%s already downloaded", name)
				report.Skipped = append(report.Skipped, name)
				continue
			}

			filing, err := s.fetcher.Fetch(ctx, domain.FilingRequest{Ticker: entity.Ticker, CIK: entity.CIK, Year: period})
			if errors.Is(err, domain.ErrNoFilingFound) {
				logger.Warn("No 10-K filing found for %s %s", entity.Ticker, period)
				report.Missing = append(report.Missing, entity.Ticker+"_"+period)
				continue
			}
			if err != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				errs = append(errs, fmt.Errorf("%s %s: %w", entity.Ticker, period, err))
				continue
			}

			name = filing.FileName()
			if err := os.WriteFile(filepath.Join(s.dataDir, name), filing.Data, 0644); err != nil {
				errs = append(errs, fmt.Errorf("write %s: %w", name, err))
				continue
			}
			logger.Info("Downloaded %s (%d bytes)", name, len(filing.Data))
			report.Downloaded = append(report.Downloaded, name)
		}
	}
	return report, errors.Join(errs...)
}

func (s *FilingService) existing(ticker, period string) (string, bool) {
	for _, ext := range filingExtensions {
		name := ticker + "_" + period + "." + ext
		if _, err := os.Stat(filepath.Join(s.dataDir, name)); err == nil {
			return name, true
		}
	}
	return "", false
}
