package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure data locations, AI providers, chunking, retrieval and
index settings.

Settings are layered: built-in defaults, then the config file, then .env and
the process environment.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Persist a setting",
	Long: `Persist a single setting in the config file.

Keys:
  data_dir, persist_dir, collection
  embedding.provider, embedding.model, embedding.base_url
  llm.provider, llm.model, llm.base_url
  chunking.chunk_tokens, chunking.overlap_tokens, chunking.encoding
  ingest.batch_size, ingest.batch_delay
  retrieval.candidates, retrieval.limit, retrieval.min_filtered
  agent.max_steps, agent.temperature, agent.verify_sources
  index.backend, index.postgres_dsn
  sec.browse_url, sec.user_agent`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsAPIKeyCmd = &cobra.Command{
	Use:   "api-key",
	Short: "Store a provider API key",
	Long: `Reads an API key without echo and stores it in the config file.
OPENAI_API_KEY and ANTHROPIC_API_KEY in the environment take precedence.`,
	Args: cobra.NoArgs,
	RunE: runSettingsAPIKey,
}

var apiKeyProvider string

func init() {
	settingsAPIKeyCmd.Flags().StringVar(&apiKeyProvider, "provider", string(domain.AIProviderOpenAI),
		"provider the key belongs to (openai or anthropic)")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsAPIKeyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("Config file: %s\n", settingsService.Path())
	cmd.Println()

	cmd.Println("[Data]")
	cmd.Printf("  Filings: %s\n", settings.DataDir)
	cmd.Printf("  Index store: %s\n", settings.PersistDir)
	cmd.Printf("  Collection: %s\n", settings.Collection)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	printProviderAccess(cmd, settings.Embedding.Provider, settings.Embedding.BaseURL, settings.Embedding.APIKey)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	printProviderAccess(cmd, settings.LLM.Provider, settings.LLM.BaseURL, settings.LLM.APIKey)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Chunk tokens: %d\n", settings.Chunking.ChunkTokens)
	cmd.Printf("  Overlap tokens: %d\n", settings.Chunking.OverlapTokens)
	cmd.Printf("  Encoding: %s\n", settings.Chunking.Encoding)
	cmd.Println()

	cmd.Println("[Ingest]")
	cmd.Printf("  Batch size: %d\n", settings.Ingest.BatchSize)
	cmd.Printf("  Batch delay: %s\n", settings.Ingest.BatchDelay)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Candidates: %d\n", settings.Retrieval.Candidates)
	cmd.Printf("  Limit: %d\n", settings.Retrieval.Limit)
	cmd.Printf("  Min filtered: %d\n", settings.Retrieval.MinFiltered)
	cmd.Println()

	cmd.Println("[Agent]")
	cmd.Printf("  Max steps: %d\n", settings.Agent.MaxSteps)
	cmd.Printf("  Temperature: %g\n", settings.Agent.Temperature)
	cmd.Printf("  Verify sources: %t\n", settings.Agent.VerifySources)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Backend: %s\n", settings.Index.Backend.Description())
	if settings.Index.Backend == domain.IndexBackendPostgres {
		cmd.Printf("  DSN: %s\n", maskDSN(settings.Index.PostgresDSN))
	}
	cmd.Println()

	cmd.Println("[SEC]")
	cmd.Printf("  Browse URL: %s\n", settings.SEC.BrowseURL)
	cmd.Printf("  User agent: %s\n", settings.SEC.UserAgent)
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'finrag settings api-key' or 'finrag settings set' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProviderAccess(cmd *cobra.Command, provider domain.AIProvider, baseURL, apiKey string) {
	if baseURL != "" || provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", orDefault(baseURL))
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return err
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsAPIKey(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	provider := domain.AIProvider(apiKeyProvider)
	if !provider.RequiresAPIKey() {
		return fmt.Errorf("%s does not use an API key", provider)
	}

	cmd.Printf("Enter %s API key: ", provider)
	key := readPassword()
	cmd.Println()
	if key == "" {
		return errors.New("API key is required")
	}

	if err := settingsService.SetAPIKey(provider, key); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}
	cmd.Printf("Saved %s API key %s\n", provider, maskAPIKey(key))
	return nil
}

// Helper functions.

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func orDefault(s string) string {
	if s == "" {
		return "(provider default)"
	}
	return s
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// maskDSN hides the password of a postgres connection string.
func maskDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, hasPassword := strings.Cut(creds, ":")
	if !hasPassword {
		return dsn
	}
	return scheme + "://" + user + ":****@" + host
}
