// Command finrag answers questions about SEC 10-K filings.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/finrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/finrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/finrag/internal/adapters/driven/edgar"
	"github.com/custodia-labs/finrag/internal/adapters/driven/metrics"
	"github.com/custodia-labs/finrag/internal/adapters/driven/tokenizer/tiktoken"
	"github.com/custodia-labs/finrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/services"
	"github.com/custodia-labs/finrag/internal/logger"
	"github.com/custodia-labs/finrag/internal/normalisers"
	"github.com/custodia-labs/finrag/internal/normalisers/html"
	"github.com/custodia-labs/finrag/internal/normalisers/pdf"
	"github.com/custodia-labs/finrag/internal/postprocessors/chunker"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configDir, err := file.DefaultDir()
	if err != nil {
		return fmt.Errorf("locating config directory: %w", err)
	}
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return err
	}

	universe := domain.DefaultUniverse()

	fetcher, err := edgar.NewFetcher(edgar.Config{
		BrowseURL: settings.SEC.BrowseURL,
		UserAgent: settings.SEC.UserAgent,
	})
	if err != nil {
		return err
	}

	cli.Configure(cli.Config{
		Settings:   settingsService,
		Filings:    services.NewFilingService(fetcher, universe, settings.DataDir),
		Calculator: services.NewToolset(services.NewCalculatorTool(services.NewCalculator())),
		Universe:   universe,
		Version:    version,
		Load: func(ctx context.Context) (*cli.Services, error) {
			return load(ctx, settings, universe, filepath.Join(configDir, "prompts"))
		},
	})

	return cli.Execute(ctx)
}

// load builds the provider-backed services from validated settings.
func load(ctx context.Context, settings *domain.AppSettings, universe domain.Universe, promptDir string) (*cli.Services, error) {
	defer logger.Timed("Startup")()

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	tok, err := tiktoken.New(settings.Chunking.Encoding)
	if err != nil {
		return nil, err
	}
	chunks, err := chunker.New(tok,
		chunker.WithChunkTokens(settings.Chunking.ChunkTokens),
		chunker.WithOverlapTokens(settings.Chunking.OverlapTokens),
	)
	if err != nil {
		return nil, err
	}

	prompts, err := file.NewPromptStore(promptDir, services.DefaultPrompts())
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	aiServices, err := ai.Init(ctx, settings, false)
	if err != nil {
		return nil, err
	}

	recorder := metrics.NewRecorder()

	index := services.NewIndex(aiServices.EmbeddingService, aiServices.VectorStore)

	ingest := services.NewIngestService(
		index,
		normalisers.NewRegistry(html.New(), pdf.New()),
		chunks,
		services.IngestConfig{
			DataDir:    settings.DataDir,
			BatchSize:  settings.Ingest.BatchSize,
			BatchDelay: settings.Ingest.BatchDelay,
		},
	)
	ingest.SetRecorder(recorder)

	retriever := services.NewRetriever(index, universe, settings.Retrieval)
	retriever.SetRecorder(recorder)

	tools := services.NewToolset(
		services.NewSearchTool(retriever),
		services.NewCalculatorTool(services.NewCalculator()),
	)
	tools.SetRecorder(recorder)

	agent := services.NewAgent(aiServices.LLMService, tools, prompts, services.AgentConfig{
		MaxSteps:      settings.Agent.MaxSteps,
		Temperature:   settings.Agent.Temperature,
		VerifySources: settings.Agent.VerifySources,
	})
	agent.SetRecorder(recorder)

	return &cli.Services{
		Agent:   agent,
		Index:   ingest,
		Search:  retriever,
		Tools:   tools,
		Metrics: recorder.Handler(),
		Close:   aiServices.Close,
	}, nil
}
