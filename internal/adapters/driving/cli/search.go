package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

// previewLength bounds the passage preview in table output.
const previewLength = 160

var (
	searchExplain bool
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the indexed filings",
	Long: `Runs semantic search over the chunked 10-K filings.

Company names, tickers and years mentioned in the query restrict the results
to matching filings. When too few passages match, unfiltered results are
returned instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchExplain, "explain", false, "print the company and year filter derived from the query")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// searchResult is the JSON shape of one result.
type searchResult struct {
	Ticker  string  `json:"ticker"`
	Year    string  `json:"year"`
	Page    int     `json:"page"`
	File    string  `json:"file"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	ctx := cmd.Context()

	svc, err := readyServices(ctx)
	if err != nil {
		return err
	}
	if svc.Search == nil {
		return errors.New("search service not configured")
	}

	results, filter, err := svc.Search.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchExplain {
		cmd.Println(describeFilter(filter))
		cmd.Println()
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	outputSearchTable(cmd, results)
	return nil
}

func describeFilter(f domain.RetrievalFilter) string {
	if f.IsEmpty() {
		return "Filter: none"
	}
	parts := make([]string, 0, 2)
	if len(f.Entities) > 0 {
		parts = append(parts, "companies="+strings.Join(f.Entities, ","))
	}
	if len(f.Periods) > 0 {
		parts = append(parts, "years="+strings.Join(f.Periods, ","))
	}
	return "Filter: " + strings.Join(parts, " ")
}

func outputSearchJSON(cmd *cobra.Command, results []domain.ScoredChunk) error {
	out := make([]searchResult, len(results))
	for i, r := range results {
		out[i] = searchResult{
			Ticker:  r.Chunk.Entity,
			Year:    r.Chunk.Period,
			Page:    r.Chunk.Page,
			File:    r.Chunk.SourceID,
			Score:   r.Score,
			Content: r.Chunk.Text,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.ScoredChunk) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		c := r.Chunk
		// Format: [N] TICKER YEAR p.PAGE FILE (score)
		cmd.Printf("  [%d] %s %s p.%d %s (%.3f)\n", i+1, c.Entity, c.Period, c.Page, c.SourceID, r.Score)
		cmd.Printf("      %s\n", preview(c.Text))
		cmd.Println()
	}
}

func preview(text string) string {
	runes := []rune(oneLine(text))
	if len(runes) <= previewLength {
		return string(runes)
	}
	return string(runes[:previewLength]) + "..."
}
