package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
	"github.com/custodia-labs/finrag/internal/core/ports/driving"
	"github.com/custodia-labs/finrag/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.SearchService = (*Retriever)(nil)

// Retriever combines semantic search with entity/period filtering.
// Candidates are over-fetched, filtered, and the unfiltered top results
// are used when too few candidates survive the filter.
type Retriever struct {
	index    *Index
	universe domain.Universe
	cfg      domain.RetrievalSettings
	recorder driven.Recorder
}

// NewRetriever creates a retriever. Zero-valued settings fields take the defaults.
func NewRetriever(index *Index, universe domain.Universe, cfg domain.RetrievalSettings) *Retriever {
	d := domain.DefaultAppSettings().Retrieval
	if cfg.Limit <= 0 {
		cfg.Limit = d.Limit
	}
	if cfg.Candidates < cfg.Limit {
		cfg.Candidates = max(d.Candidates, cfg.Limit)
	}
	if cfg.MinFiltered <= 0 {
		cfg.MinFiltered = d.MinFiltered
	}
	cfg.MinFiltered = min(cfg.MinFiltered, cfg.Limit)
	return &Retriever{
		index:    index,
		universe: universe,
		cfg:      cfg,
		recorder: nopRecorder{},
	}
}

// SetRecorder sets the metrics recorder.
func (r *Retriever) SetRecorder(rec driven.Recorder) {
	r.recorder = recorderOrNop(rec)
}

// Limit returns the maximum number of results Search returns.
func (r *Retriever) Limit() int {
	return r.cfg.Limit
}

// ExtractFilter matches entity aliases case-insensitively and periods literally.
func (r *Retriever) ExtractFilter(query string) domain.RetrievalFilter {
	upper := strings.ToUpper(query)

	var filter domain.RetrievalFilter
	for _, e := range r.universe.Entities {
		for _, alias := range e.Aliases {
			if strings.Contains(upper, alias) {
				filter.Entities = append(filter.Entities, e.Ticker)
				break
			}
		}
	}
	for _, p := range r.universe.Periods {
		if strings.Contains(query, p) {
			filter.Periods = append(filter.Periods, p)
		}
	}
	return filter
}

// Search returns at most Limit chunks for the query, most similar first,
// and the filter derived from it.
func (r *Retriever) Search(ctx context.Context, query string) ([]domain.ScoredChunk, domain.RetrievalFilter, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", query)

	filter := r.ExtractFilter(query)
	if strings.TrimSpace(query) == "" {
		return []domain.ScoredChunk{}, filter, nil
	}

	candidates, err := r.index.Query(ctx, query, r.cfg.Candidates)
	if err != nil {
		return nil, filter, err
	}
	logger.Debug("Filter: entities=%v periods=%v, %d candidates", filter.Entities, filter.Periods, len(candidates))

	if filter.IsEmpty() {
		r.recorder.RetrievalCompleted(false)
		return truncate(candidates, r.cfg.Limit), filter, nil
	}

	filtered := make([]domain.ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		if filter.Matches(c.Chunk) {
			filtered = append(filtered, c)
		}
	}

	if len(filtered) < r.cfg.MinFiltered {
		logger.Debug("Only %d filtered results, falling back to unfiltered", len(filtered))
		r.recorder.RetrievalCompleted(true)
		return truncate(candidates, r.cfg.Limit), filter, nil
	}

	r.recorder.RetrievalCompleted(false)
	return truncate(filtered, r.cfg.Limit), filter, nil
}

func truncate(results []domain.ScoredChunk, n int) []domain.ScoredChunk {
	if len(results) > n {
		return results[:n]
	}
	return results
}
