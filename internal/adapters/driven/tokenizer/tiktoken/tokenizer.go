// Package tiktoken provides the reference BPE tokenizer used for chunking.
package tiktoken

import (
	"fmt"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// DefaultEncoding is the encoding used by OpenAI chat and embedding models.
const DefaultEncoding = domain.DefaultEncoding

var loaderOnce sync.Once

// Tokenizer wraps a tiktoken encoding. BPE tables are embedded in the
// binary so no network access is needed.
type Tokenizer struct {
	name string
	enc  *tiktoken.Tiktoken
}

// New loads the named encoding. An empty name selects DefaultEncoding.
func New(encoding string) (*Tokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: load encoding %q: %v", domain.ErrInvalidConfig, encoding, err)
	}

	return &Tokenizer{name: encoding, enc: enc}, nil
}

// Encode returns token IDs. Filing text may contain special-token markers,
// which are allowed rather than rejected.
func (t *Tokenizer) Encode(text string) []int {
	return t.enc.Encode(text, []string{"all"}, nil)
}

// Decode returns the text for token IDs.
func (t *Tokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// Name returns the encoding name.
func (t *Tokenizer) Name() string {
	return t.name
}
