// Package cli provides the finrag command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driving"
	"github.com/custodia-labs/finrag/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services are the components that need validated settings and a
// reachable provider. They are built on first use.
type Services struct {
	Agent   driving.Orchestrator
	Index   driving.IndexService
	Search  driving.SearchService
	Tools   driving.ToolService
	Metrics http.Handler

	// Close releases stores and provider clients. Optional.
	Close func()
}

// Loader builds Services.
type Loader func(ctx context.Context) (*Services, error)

// Config wires the CLI to the core.
type Config struct {
	Settings driving.SettingsService
	Filings  driving.FilingService

	// Calculator serves the calc command without loading providers.
	Calculator driving.ToolService

	// Universe lists the tracked companies and years.
	Universe domain.Universe

	Load    Loader
	Version string
}

var (
	settingsService driving.SettingsService
	filingService   driving.FilingService
	calculator      driving.ToolService
	universe        = domain.DefaultUniverse()

	loadServices Loader
	loaded       *Services
	loadMu       sync.Mutex

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "finrag",
	Short: "Question answering over SEC 10-K filings",
	Long: `finrag answers financial questions about Alphabet (GOOGL), Microsoft (MSFT)
and NVIDIA (NVDA) from their 2022-2024 annual reports.

Filings are downloaded from SEC EDGAR, split into token windows, embedded and
stored in a local index. Questions are answered by a model that searches the
index and computes figures with a calculator, returning a JSON answer with
cited sources.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress and debug lines")
}

// Configure sets the services used by every command.
func Configure(cfg Config) {
	settingsService = cfg.Settings
	filingService = cfg.Filings
	calculator = cfg.Calculator
	if len(cfg.Universe.Entities) > 0 {
		universe = cfg.Universe
	}
	loadServices = cfg.Load
	if cfg.Version != "" {
		version = cfg.Version
	}
}

// Execute runs the root command and releases loaded services.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// services returns the loaded services, building them on first use.
func services(ctx context.Context) (*Services, error) {
	loadMu.Lock()
	defer loadMu.Unlock()

	if loaded != nil {
		return loaded, nil
	}
	if loadServices == nil {
		return nil, errors.New("services not configured")
	}
	svc, err := loadServices(ctx)
	if err != nil {
		return nil, err
	}
	loaded = svc
	return loaded, nil
}

// readyServices loads services and attaches to the index, building it
// from the data directory when the store is empty.
func readyServices(ctx context.Context) (*Services, error) {
	svc, err := services(ctx)
	if err != nil {
		return nil, err
	}
	if svc.Index == nil {
		return nil, errors.New("index service not configured")
	}
	if _, err := svc.Index.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("preparing index: %w", err)
	}
	return svc, nil
}

func closeServices() {
	loadMu.Lock()
	defer loadMu.Unlock()

	if loaded != nil && loaded.Close != nil {
		loaded.Close()
	}
	loaded = nil
}
