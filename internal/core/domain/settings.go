package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API. LLM only.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOpenAI || p == AIProviderOllama
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// IndexBackend selects where index entries are stored.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite persists entries in a SQLite file under the persist directory.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendMemory keeps entries in process memory; nothing is persisted.
	IndexBackendMemory IndexBackend = "memory"

	// IndexBackendPostgres stores entries in PostgreSQL with pgvector.
	IndexBackendPostgres IndexBackend = "postgres"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendMemory, IndexBackendPostgres:
		return true
	default:
		return false
	}
}

// IsPersistent returns true if entries survive process restarts.
func (b IndexBackend) IsPersistent() bool {
	return b == IndexBackendSQLite || b == IndexBackendPostgres
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendSQLite:
		return "SQLite (local file)"
	case IndexBackendMemory:
		return "In-memory (not persisted)"
	case IndexBackendPostgres:
		return "PostgreSQL + pgvector"
	default:
		return unknownDescription
	}
}
