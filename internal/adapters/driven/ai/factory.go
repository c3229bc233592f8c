// Package ai provides factory functions for creating AI service adapters
// and the vector store they feed.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/finrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/finrag/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/finrag/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/finrag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/finrag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/finrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/finrag/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/finrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult holds the driven services built from settings.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorStore      driven.VectorStore
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorStore != nil {
		r.VectorStore.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init builds every driven AI service. When validate is set, each remote
// provider is pinged before use.
func Init(ctx context.Context, settings *domain.AppSettings, validate bool) (*InitResult, error) {
	result := &InitResult{}

	createEmb := CreateEmbeddingService
	createLLM := CreateLLMService
	if validate {
		createEmb = CreateAndValidateEmbeddingService
		createLLM = CreateAndValidateLLMService
	}

	emb, err := createEmb(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	if emb == nil {
		return nil, fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	result.EmbeddingService = emb

	llm, err := createLLM(&settings.LLM)
	if err != nil {
		result.Close()
		return nil, err
	}
	if llm == nil {
		result.Close()
		return nil, fmt.Errorf("%w: llm provider %q is not configured",
			domain.ErrLLMUnavailable, settings.LLM.Provider)
	}
	result.LLMService = llm

	store, err := CreateVectorStore(ctx, settings)
	if err != nil {
		result.Close()
		return nil, err
	}
	result.VectorStore = store

	return result, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Check 'finrag settings show'",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Check 'finrag settings show'",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// CreateEmbeddingService creates the embedding service named by settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the LLM service named by settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateVectorStore opens the index backend selected in settings.
func CreateVectorStore(ctx context.Context, settings *domain.AppSettings) (driven.VectorStore, error) {
	switch settings.Index.Backend {
	case domain.IndexBackendSQLite, "":
		store, err := sqlite.NewStore(settings.PersistDir, settings.Collection)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
		}
		return store, nil

	case domain.IndexBackendMemory:
		return memory.NewVectorStore(), nil

	case domain.IndexBackendPostgres:
		store, err := postgres.NewStore(ctx, settings.Index.PostgresDSN, settings.Collection)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidConfig, settings.Index.Backend)
	}
}
