// Package chunker splits page text into overlapping token windows and
// attaches filing provenance.
package chunker

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// DefaultChunkTokens is the default window length in tokens.
const DefaultChunkTokens = 500

// DefaultOverlapTokens is the default number of tokens shared by neighbouring windows.
const DefaultOverlapTokens = 100

// Chunker produces token-bounded windows using a reference tokenizer.
type Chunker struct {
	tokenizer     driven.Tokenizer
	chunkTokens   int
	overlapTokens int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkTokens sets the window length in tokens.
func WithChunkTokens(n int) Option {
	return func(c *Chunker) {
		c.chunkTokens = n
	}
}

// WithOverlapTokens sets the overlap between neighbouring windows.
func WithOverlapTokens(n int) Option {
	return func(c *Chunker) {
		c.overlapTokens = n
	}
}

// New creates a chunker. An overlap that is not smaller than the chunk
// length would never advance, so it is rejected as a configuration error.
func New(tokenizer driven.Tokenizer, opts ...Option) (*Chunker, error) {
	if tokenizer == nil {
		return nil, fmt.Errorf("%w: chunker requires a tokenizer", domain.ErrInvalidConfig)
	}

	c := &Chunker{
		tokenizer:     tokenizer,
		chunkTokens:   DefaultChunkTokens,
		overlapTokens: DefaultOverlapTokens,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := validate(c.chunkTokens, c.overlapTokens); err != nil {
		return nil, err
	}
	return c, nil
}

// Name returns the chunker name.
func (c *Chunker) Name() string {
	return "chunker"
}

// Step returns how far each window advances.
func (c *Chunker) Step() int {
	return c.chunkTokens - c.overlapTokens
}

// Chunk splits text into decoded token windows.
func (c *Chunker) Chunk(text string) []string {
	windows, err := Windows(c.tokenizer.Encode(text), c.chunkTokens, c.overlapTokens)
	if err != nil {
		// validated in New
		return nil
	}

	out := make([]string, 0, len(windows))
	for _, w := range windows {
		out = append(out, c.tokenizer.Decode(w))
	}
	return out
}

// BuildChunks turns the extracted pages of one filing into chunks.
// Empty pages and whitespace-only windows are dropped.
func (c *Chunker) BuildChunks(fileName string, pages []domain.Page) []domain.Chunk {
	entity, period := ParseFilingName(fileName)

	var chunks []domain.Chunk
	for _, page := range pages {
		if page.Text == "" {
			continue
		}
		for _, text := range c.Chunk(page.Text) {
			if strings.TrimSpace(text) == "" {
				continue
			}
			chunks = append(chunks, domain.Chunk{
				ID:       uuid.New().String(),
				Text:     text,
				SourceID: fileName,
				Entity:   entity,
				Period:   period,
				Page:     page.Number,
			})
		}
	}
	return chunks
}

// Windows returns consecutive slices of tokens of length chunk, starting
// every chunk-overlap tokens. The final windows may be shorter.
func Windows(tokens []int, chunk, overlap int) ([][]int, error) {
	if err := validate(chunk, overlap); err != nil {
		return nil, err
	}

	step := chunk - overlap
	windows := make([][]int, 0, len(tokens)/step+1)
	for start := 0; start < len(tokens); start += step {
		end := min(start+chunk, len(tokens))
		windows = append(windows, tokens[start:end])
	}
	return windows, nil
}

// ParseFilingName reads the ENTITY_PERIOD.ext naming convention.
// Names that do not split into exactly two non-empty parts yield
// domain.UnknownEntity and domain.UnknownPeriod.
func ParseFilingName(name string) (entity, period string) {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	parts := strings.Split(stem, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return domain.UnknownEntity, domain.UnknownPeriod
	}
	return parts[0], parts[1]
}

func validate(chunk, overlap int) error {
	if chunk <= 0 {
		return fmt.Errorf("%w: chunk tokens must be positive, got %d", domain.ErrInvalidConfig, chunk)
	}
	if overlap < 0 || overlap >= chunk {
		return fmt.Errorf("%w: overlap tokens (%d) must be in [0, %d)", domain.ErrInvalidConfig, overlap, chunk)
	}
	return nil
}
