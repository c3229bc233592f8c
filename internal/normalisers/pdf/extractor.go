package pdf

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
	"github.com/custodia-labs/finrag/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

var multiSpaces = regexp.MustCompile(`[ \t]+`)

// Extractor handles .pdf filings.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return "pdf"
}

// Extensions returns the handled extensions.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract returns one page per PDF page, numbered from 1. Pages whose text
// cannot be read are returned empty so numbering stays aligned.
func (e *Extractor) Extract(ctx context.Context, data []byte) ([]domain.Page, error) {
	if data == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	count := reader.NumPage()
	pages := make([]domain.Page, 0, count)
	for i := 1; i <= count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, domain.Page{Number: i, Text: pageText(reader, i)})
	}
	return pages, nil
}

// pageText extracts and normalises one page. The reader panics on some
// malformed content streams, which is treated like an extraction error.
func pageText(reader *pdf.Reader, n int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("pdf page %d: %v", n, r)
			text = ""
		}
	}()

	page := reader.Page(n)
	if page.V.IsNull() {
		return ""
	}

	raw, err := page.GetPlainText(nil)
	if err != nil {
		logger.Debug("pdf page %d: %v", n, err)
		return ""
	}
	return strings.TrimSpace(multiSpaces.ReplaceAllString(raw, " "))
}
