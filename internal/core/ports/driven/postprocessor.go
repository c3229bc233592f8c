package driven

import "github.com/custodia-labs/finrag/internal/core/domain"

// Chunker splits extracted pages into retrieval chunks.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// BuildChunks turns the pages of one filing into chunks carrying the
	// entity, period, page and file metadata derived from fileName.
	BuildChunks(fileName string, pages []domain.Page) []domain.Chunk
}
