package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
	"github.com/custodia-labs/finrag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings.
const (
	keyDataDir    = "data_dir"
	keyPersistDir = "persist_dir"
	keyCollection = "collection"

	keyEmbeddingProvider = "embedding.provider"
	keyEmbeddingModel    = "embedding.model"
	keyEmbeddingBaseURL  = "embedding.base_url"

	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"

	keyChunkTokens   = "chunking.chunk_tokens"
	keyOverlapTokens = "chunking.overlap_tokens"
	keyEncoding      = "chunking.encoding"

	keyBatchSize  = "ingest.batch_size"
	keyBatchDelay = "ingest.batch_delay"

	keyCandidates  = "retrieval.candidates"
	keyLimit       = "retrieval.limit"
	keyMinFiltered = "retrieval.min_filtered"

	keyMaxSteps      = "agent.max_steps"
	keyTemperature   = "agent.temperature"
	keyVerifySources = "agent.verify_sources"

	keyIndexBackend = "index.backend"
	keyPostgresDSN  = "index.postgres_dsn"

	keySECBrowseURL = "sec.browse_url"
	keySECUserAgent = "sec.user_agent"

	keyAPIKeyPrefix = "api_keys."
)

// Environment variables that override the config file.
const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvAnthropicKey  = "ANTHROPIC_API_KEY"
	EnvDataDir       = "DATA_DIR"
	EnvPersistDir    = "PERSIST_DIR"
	EnvEmbedModel    = "EMBED_MODEL"
	EnvChatModel     = "CHAT_MODEL"
	EnvEmbedProvider = "FINRAG_EMBED_PROVIDER"
	EnvLLMProvider   = "FINRAG_LLM_PROVIDER"
	EnvIndexBackend  = "FINRAG_INDEX_BACKEND"
	EnvPostgresDSN   = "FINRAG_POSTGRES_DSN"
	EnvSECUserAgent  = "SEC_USER_AGENT"
)

const defaultOllamaEmbedModel = "nomic-embed-text"

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
)

// settableKeys lists the keys accepted by Set with their value types.
var settableKeys = map[string]valueKind{
	keyDataDir:           kindString,
	keyPersistDir:        kindString,
	keyCollection:        kindString,
	keyEmbeddingProvider: kindString,
	keyEmbeddingModel:    kindString,
	keyEmbeddingBaseURL:  kindString,
	keyLLMProvider:       kindString,
	keyLLMModel:          kindString,
	keyLLMBaseURL:        kindString,
	keyChunkTokens:       kindInt,
	keyOverlapTokens:     kindInt,
	keyEncoding:          kindString,
	keyBatchSize:         kindInt,
	keyBatchDelay:        kindDuration,
	keyCandidates:        kindInt,
	keyLimit:             kindInt,
	keyMinFiltered:       kindInt,
	keyMaxSteps:          kindInt,
	keyTemperature:       kindFloat,
	keyVerifySources:     kindBool,
	keyIndexBackend:      kindString,
	keyPostgresDSN:       kindString,
	keySECBrowseURL:      kindString,
	keySECUserAgent:      kindString,
}

// SettingsService resolves application settings from defaults, the config
// store and the process environment, in increasing priority.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a settings service that reads the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// WithEnv replaces the environment lookup. Used by tests.
func (s *SettingsService) WithEnv(lookup func(string) (string, bool)) *SettingsService {
	s.lookupEnv = lookup
	return s
}

// Get returns the resolved settings. It does not validate them.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	delay, err := s.getDuration(keyBatchDelay, d.Ingest.BatchDelay)
	if err != nil {
		return nil, err
	}

	settings := &domain.AppSettings{
		DataDir:    s.resolve(EnvDataDir, keyDataDir, d.DataDir),
		PersistDir: s.resolve(EnvPersistDir, keyPersistDir, d.PersistDir),
		Collection: s.getString(keyCollection, d.Collection),
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(EnvEmbedProvider, keyEmbeddingProvider, d.Embedding.Provider),
			BaseURL:  s.getString(keyEmbeddingBaseURL, ""),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(EnvLLMProvider, keyLLMProvider, d.LLM.Provider),
			BaseURL:  s.getString(keyLLMBaseURL, ""),
		},
		Chunking: domain.ChunkingSettings{
			ChunkTokens:   s.getInt(keyChunkTokens, d.Chunking.ChunkTokens),
			OverlapTokens: s.getInt(keyOverlapTokens, d.Chunking.OverlapTokens),
			Encoding:      s.getString(keyEncoding, d.Chunking.Encoding),
		},
		Ingest: domain.IngestSettings{
			BatchSize:  s.getInt(keyBatchSize, d.Ingest.BatchSize),
			BatchDelay: delay,
		},
		Retrieval: domain.RetrievalSettings{
			Candidates:  s.getInt(keyCandidates, d.Retrieval.Candidates),
			Limit:       s.getInt(keyLimit, d.Retrieval.Limit),
			MinFiltered: s.getInt(keyMinFiltered, d.Retrieval.MinFiltered),
		},
		Agent: domain.AgentSettings{
			MaxSteps:      s.getInt(keyMaxSteps, d.Agent.MaxSteps),
			Temperature:   s.configStore.GetFloat(keyTemperature),
			VerifySources: s.getBool(keyVerifySources, d.Agent.VerifySources),
		},
		Index: domain.IndexSettings{
			Backend:     domain.IndexBackend(s.resolve(EnvIndexBackend, keyIndexBackend, string(d.Index.Backend))),
			PostgresDSN: s.resolve(EnvPostgresDSN, keyPostgresDSN, ""),
		},
		SEC: domain.SECSettings{
			BrowseURL: s.getString(keySECBrowseURL, d.SEC.BrowseURL),
			UserAgent: s.resolve(EnvSECUserAgent, keySECUserAgent, d.SEC.UserAgent),
		},
	}

	// Ollama has no text-embedding-3-small; pick its common default instead.
	embedDefault := d.Embedding.Model
	if settings.Embedding.Provider == domain.AIProviderOllama {
		embedDefault = defaultOllamaEmbedModel
	}
	settings.Embedding.Model = s.resolve(EnvEmbedModel, keyEmbeddingModel, embedDefault)
	settings.LLM.Model = s.resolve(EnvChatModel, keyLLMModel, d.LLM.Model)

	settings.Embedding.APIKey = s.apiKey(settings.Embedding.Provider)
	settings.LLM.APIKey = s.apiKey(settings.LLM.Provider)

	return settings, nil
}

// Set validates and persists a single config key.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindString:
		if err := validateEnum(key, value); err != nil {
			return err
		}
		parsed = value
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s must be a duration like 500ms", domain.ErrInvalidInput, key)
		}
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetAPIKey stores the API key for a provider.
func (s *SettingsService) SetAPIKey(provider domain.AIProvider, key string) error {
	if !provider.RequiresAPIKey() {
		return fmt.Errorf("%w: %s does not use an API key", domain.ErrInvalidInput, provider)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: API key is empty", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyAPIKeyPrefix+provider.String(), key); err != nil {
		return fmt.Errorf("save api key: %w", err)
	}
	return nil
}

// Path returns the config file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func validateEnum(key, value string) error {
	switch key {
	case keyEmbeddingProvider:
		if !domain.AIProvider(value).SupportsEmbeddings() {
			return fmt.Errorf("%w: %q has no embedding API (use openai or ollama)", domain.ErrInvalidInput, value)
		}
	case keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown llm provider %q", domain.ErrInvalidInput, value)
		}
	case keyIndexBackend:
		if !domain.IndexBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, value)
		}
	}
	return nil
}

// apiKey returns the environment key for a provider, falling back to the
// key stored with SetAPIKey.
func (s *SettingsService) apiKey(provider domain.AIProvider) string {
	var env string
	switch provider {
	case domain.AIProviderOpenAI:
		env = EnvOpenAIKey
	case domain.AIProviderAnthropic:
		env = EnvAnthropicKey
	default:
		return ""
	}
	return s.resolve(env, keyAPIKeyPrefix+provider.String(), "")
}

// Helper methods for reading config with defaults.

func (s *SettingsService) resolve(env, key, defaultVal string) string {
	if v, ok := s.lookupEnv(env); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return s.getString(key, defaultVal)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfig, key, err)
	}
	return d, nil
}

func (s *SettingsService) getProvider(env, key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.resolve(env, key, "")
	if val == "" {
		return defaultVal
	}
	return domain.AIProvider(val)
}
