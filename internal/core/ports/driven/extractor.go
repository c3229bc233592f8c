package driven

import (
	"context"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

// Extractor turns a filing document into page text.
// Paged formats return one Page per page in order; unpaged formats
// return a single page numbered 1.
type Extractor interface {
	// Name identifies the extractor in logs.
	Name() string

	// Extensions returns the lowercase file extensions handled, with the dot.
	Extensions() []string

	// Extract reads the document bytes.
	Extract(ctx context.Context, data []byte) ([]domain.Page, error)
}

// ExtractorRegistry selects an extractor by file extension.
type ExtractorRegistry interface {
	// Register adds an extractor for all of its extensions.
	Register(e Extractor)

	// ForFile returns the extractor for a file name, or ErrUnsupportedType.
	ForFile(name string) (Extractor, error)
}
