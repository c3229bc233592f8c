package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
	"github.com/custodia-labs/finrag/internal/core/ports/driving"
	"github.com/custodia-labs/finrag/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IndexService = (*IngestService)(nil)

// IngestConfig controls where filings are read from and how batches are paced.
type IngestConfig struct {
	DataDir    string
	BatchSize  int
	BatchDelay time.Duration
}

// IngestService builds the index from filings in the data directory, or
// attaches to an index that already holds entries.
type IngestService struct {
	index      *Index
	extractors driven.ExtractorRegistry
	chunker    driven.Chunker
	cfg        IngestConfig
	recorder   driven.Recorder
	onBatch    func(domain.BatchEvent)
}

// NewIngestService creates an ingestion service.
func NewIngestService(
	index *Index,
	extractors driven.ExtractorRegistry,
	chunker driven.Chunker,
	cfg IngestConfig,
) *IngestService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = domain.DefaultAppSettings().Ingest.BatchSize
	}
	return &IngestService{
		index:      index,
		extractors: extractors,
		chunker:    chunker,
		cfg:        cfg,
		recorder:   nopRecorder{},
	}
}

// SetRecorder sets the metrics recorder.
func (s *IngestService) SetRecorder(r driven.Recorder) {
	s.recorder = recorderOrNop(r)
}

// SetBatchObserver registers a callback invoked after every batch.
func (s *IngestService) SetBatchObserver(fn func(domain.BatchEvent)) {
	s.onBatch = fn
}

// Ensure attaches to a populated store, or builds it when empty.
func (s *IngestService) Ensure(ctx context.Context) (*domain.IndexReport, error) {
	n, err := s.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count index: %w", err)
	}
	if n > 0 {
		logger.Info("Attaching to existing index with %d entries", n)
		return &domain.IndexReport{Attached: true, Stored: n}, nil
	}
	return s.Rebuild(ctx)
}

// Rebuild discards stored entries and ingests the data directory.
// Returns domain.ErrIndexEmpty alongside the report when nothing was stored.
func (s *IngestService) Rebuild(ctx context.Context) (*domain.IndexReport, error) {
	logger.Section("Index Build")

	if err := s.index.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset index: %w", err)
	}

	files, err := s.listFilings()
	if err != nil {
		return nil, err
	}

	report := &domain.IndexReport{Files: len(files)}
	var chunks []domain.Chunk
	for _, path := range files {
		fileChunks, err := s.chunkFile(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Error("Skipping %s: %v", filepath.Base(path), err)
			continue
		}
		logger.Debug("%s: %d chunks", filepath.Base(path), len(fileChunks))
		chunks = append(chunks, fileChunks...)
	}
	report.Chunks = len(chunks)

	logger.Info("Processing %d document chunks...", len(chunks))
	if err := s.ingest(ctx, chunks, report); err != nil {
		return nil, err
	}

	stored, err := s.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count index: %w", err)
	}
	report.Stored = stored
	if stored == 0 {
		return report, fmt.Errorf("%w: %d files, %d chunks in %s", domain.ErrIndexEmpty, report.Files, report.Chunks, s.cfg.DataDir)
	}
	return report, nil
}

// Count returns the number of stored entries.
func (s *IngestService) Count(ctx context.Context) (int, error) {
	return s.index.Count(ctx)
}

// ingest upserts chunks sequentially in fixed-size batches. A failed batch
// is logged and skipped.
func (s *IngestService) ingest(ctx context.Context, chunks []domain.Chunk, report *domain.IndexReport) error {
	limit := rate.Inf
	if s.cfg.BatchDelay > 0 {
		limit = rate.Every(s.cfg.BatchDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	total := (len(chunks) + s.cfg.BatchSize - 1) / s.cfg.BatchSize
	for i := 0; i < len(chunks); i += s.cfg.BatchSize {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait for batch slot: %w", err)
		}

		batch := chunks[i:min(i+s.cfg.BatchSize, len(chunks))]
		event := domain.BatchEvent{Number: i/s.cfg.BatchSize + 1, Total: total, Size: len(batch)}

		event.Err = s.index.Upsert(ctx, batch)
		report.Batches++
		if event.Err != nil {
			if errors.Is(event.Err, context.Canceled) || errors.Is(event.Err, context.DeadlineExceeded) {
				return event.Err
			}
			report.FailedBatches++
			logger.Error("Error processing batch %d: %v", event.Number, event.Err)
		} else {
			logger.Info("Processed batch %d/%d", event.Number, total)
		}

		s.recorder.BatchIngested(event.Size, event.Err != nil)
		if s.onBatch != nil {
			s.onBatch(event)
		}
	}
	return nil
}

// listFilings returns supported files in the data directory, sorted by name.
func (s *IngestService) listFilings() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.DataDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("Data directory %s does not exist", s.cfg.DataDir)
			return nil, nil
		}
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := s.extractors.ForFile(e.Name()); err != nil {
			logger.Debug("Ignoring %s: %v", e.Name(), err)
			continue
		}
		files = append(files, filepath.Join(s.cfg.DataDir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (s *IngestService) chunkFile(ctx context.Context, path string) ([]domain.Chunk, error) {
	name := filepath.Base(path)
	extractor, err := s.extractors.ForFile(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	pages, err := extractor.Extract(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", extractor.Name(), err)
	}
	return s.chunker.BuildChunks(name, pages), nil
}
