package domain

// Sentinel metadata used when a filing name does not follow ENTITY_PERIOD.ext.
const (
	UnknownEntity = "UNK"
	UnknownPeriod = "UNK"
)

// Chunk is the unit of retrieval: a bounded span of filing text with
// provenance. Chunks are immutable once created.
type Chunk struct {
	// ID uniquely identifies the chunk within an index.
	ID string `json:"id"`

	// Text is the chunk content. Never empty after trimming.
	Text string `json:"text"`

	// SourceID is the originating file name (e.g. "NVDA_2023.pdf").
	SourceID string `json:"file"`

	// Entity is the company ticker, or UnknownEntity.
	Entity string `json:"ticker"`

	// Period is the fiscal year, or UnknownPeriod.
	Period string `json:"year"`

	// Page is the 1-based page number; unpaged sources use 1.
	Page int `json:"page"`
}

// IndexEntry is a chunk plus its embedding as held by a vector store.
type IndexEntry struct {
	Chunk     Chunk
	Embedding []float32
}

// ScoredChunk is a query result. Higher scores are more similar.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Chunks strips scores, preserving order.
func Chunks(results []ScoredChunk) []Chunk {
	out := make([]Chunk, len(results))
	for i := range results {
		out[i] = results[i].Chunk
	}
	return out
}
