package domain

import (
	"fmt"
	"time"
)

// Defaults used when neither the config file nor the environment sets a value.
const (
	DefaultDataDir        = "data"
	DefaultPersistDir     = "index_store"
	DefaultCollection     = "sec_filings"
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultChatModel      = "gpt-4o-mini"
	DefaultEncoding       = "cl100k_base"
	DefaultSECBrowseURL   = "https://www.sec.gov/cgi-bin/browse-edgar"
	DefaultSECUserAgent   = "Company-Research-Bot/1.0 (educational use; contact@example.com)"
	DefaultQuestion       = "Which company had the highest operating margin in 2023?"
)

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generation model configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings controls token windowing at ingestion.
type ChunkingSettings struct {
	ChunkTokens   int
	OverlapTokens int

	// Encoding names the reference tokenizer.
	Encoding string
}

// IngestSettings controls embedding batch size and pacing.
type IngestSettings struct {
	BatchSize  int
	BatchDelay time.Duration
}

// RetrievalSettings controls candidate over-fetch and the filter fallback.
type RetrievalSettings struct {
	// Candidates is how many results are requested from the index.
	Candidates int

	// Limit caps the number of results returned to callers.
	Limit int

	// MinFiltered is the smallest filtered set used before falling back
	// to unfiltered results.
	MinFiltered int
}

// AgentSettings controls the orchestration loop.
type AgentSettings struct {
	// MaxSteps bounds the number of tool-calling turns per question.
	MaxSteps int

	// Temperature is passed to the generation model.
	Temperature float64

	// VerifySources enables the post-hoc provenance check.
	VerifySources bool
}

// IndexSettings selects the vector store backend.
type IndexSettings struct {
	Backend IndexBackend

	// PostgresDSN is the connection string for IndexBackendPostgres.
	PostgresDSN string
}

// SECSettings configures the filing fetcher.
type SECSettings struct {
	BrowseURL string
	UserAgent string
}

// AppSettings is the fully resolved application configuration.
type AppSettings struct {
	DataDir    string
	PersistDir string
	Collection string

	Embedding EmbeddingSettings
	LLM       LLMSettings
	Chunking  ChunkingSettings
	Ingest    IngestSettings
	Retrieval RetrievalSettings
	Agent     AgentSettings
	Index     IndexSettings
	SEC       SECSettings
}

// DefaultAppSettings returns settings with every default applied.
// API keys are left empty.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		DataDir:    DefaultDataDir,
		PersistDir: DefaultPersistDir,
		Collection: DefaultCollection,
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModel,
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultChatModel,
		},
		Chunking: ChunkingSettings{
			ChunkTokens:   500,
			OverlapTokens: 100,
			Encoding:      DefaultEncoding,
		},
		Ingest: IngestSettings{
			BatchSize:  20,
			BatchDelay: 500 * time.Millisecond,
		},
		Retrieval: RetrievalSettings{
			Candidates:  12,
			Limit:       8,
			MinFiltered: 3,
		},
		Agent: AgentSettings{
			MaxSteps: 10,
		},
		Index: IndexSettings{
			Backend: IndexBackendSQLite,
		},
		SEC: SECSettings{
			BrowseURL: DefaultSECBrowseURL,
			UserAgent: DefaultSECUserAgent,
		},
	}
}

// Validate reports the first configuration error. All returned errors
// wrap ErrInvalidConfig.
func (s AppSettings) Validate() error {
	if !s.Embedding.Provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: embedding provider %q has no embedding API", ErrInvalidConfig, s.Embedding.Provider)
	}
	if !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown llm provider %q", ErrInvalidConfig, s.LLM.Provider)
	}
	if s.Embedding.Provider == AIProviderOpenAI && s.Embedding.APIKey == "" ||
		s.LLM.Provider == AIProviderOpenAI && s.LLM.APIKey == "" {
		return fmt.Errorf("%w: missing OPENAI_API_KEY in environment or .env", ErrInvalidConfig)
	}
	if s.LLM.Provider == AIProviderAnthropic && s.LLM.APIKey == "" {
		return fmt.Errorf("%w: missing ANTHROPIC_API_KEY in environment or .env", ErrInvalidConfig)
	}
	if s.Chunking.ChunkTokens <= 0 || s.Chunking.OverlapTokens < 0 ||
		s.Chunking.OverlapTokens >= s.Chunking.ChunkTokens {
		return fmt.Errorf("%w: overlap (%d) must be non-negative and smaller than chunk size (%d)",
			ErrInvalidConfig, s.Chunking.OverlapTokens, s.Chunking.ChunkTokens)
	}
	if s.Ingest.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", ErrInvalidConfig)
	}
	if s.Retrieval.Limit <= 0 || s.Retrieval.Candidates < s.Retrieval.Limit {
		return fmt.Errorf("%w: candidates (%d) must be at least the result limit (%d)",
			ErrInvalidConfig, s.Retrieval.Candidates, s.Retrieval.Limit)
	}
	if s.Retrieval.MinFiltered < 1 || s.Retrieval.MinFiltered > s.Retrieval.Limit {
		return fmt.Errorf("%w: min filtered (%d) must be between 1 and the result limit (%d)",
			ErrInvalidConfig, s.Retrieval.MinFiltered, s.Retrieval.Limit)
	}
	if s.Agent.MaxSteps <= 0 {
		return fmt.Errorf("%w: agent max steps must be positive", ErrInvalidConfig)
	}
	if !s.Index.Backend.IsValid() {
		return fmt.Errorf("%w: unknown index backend %q", ErrInvalidConfig, s.Index.Backend)
	}
	if s.Index.Backend == IndexBackendPostgres && s.Index.PostgresDSN == "" {
		return fmt.Errorf("%w: postgres backend requires a DSN", ErrInvalidConfig)
	}
	return nil
}

// IndexReport summarises an index build or attach.
type IndexReport struct {
	// Attached is true when existing entries were reused without embedding.
	Attached bool

	Files         int
	Chunks        int
	Batches       int
	FailedBatches int

	// Stored is the entry count in the store after the run.
	Stored int
}

// BatchEvent reports the outcome of one ingestion batch.
type BatchEvent struct {
	Number int
	Total  int
	Size   int
	Err    error
}
