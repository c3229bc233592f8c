package driven

// Tokenizer converts text to token IDs and back.
// Implementations must be deterministic so chunk boundaries are
// reproducible across runs.
type Tokenizer interface {
	// Encode returns the token IDs for text.
	Encode(text string) []int

	// Decode returns the text for a token ID sequence.
	Decode(tokens []int) string

	// Name identifies the encoding (e.g. "cl100k_base").
	Name() string
}
