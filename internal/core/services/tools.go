package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
	"github.com/custodia-labs/finrag/internal/core/ports/driving"
	"github.com/custodia-labs/finrag/internal/logger"
)

// Ensure Toolset implements the interface.
var _ driving.ToolService = (*Toolset)(nil)

// Tool names and descriptions shown to the generation model.
const (
	SearchToolName = domain.SearchToolName

	SearchToolDescription = "Search over chunked 10-K filings for GOOGL, MSFT, NVDA (years 2022-2024). " +
		"Use this to find operating margin, revenue, segment results, risks, and MD&A insights. " +
		"The tool automatically filters by company and year if mentioned in the query. " +
		"Examples: 'Microsoft revenue 2023', 'NVIDIA operating margin', 'Google business segments 2024'"

	CalculatorToolName        = domain.CalculatorToolName
	CalculatorToolDescription = "Evaluate simple arithmetic expressions, e.g., '(27.0-20.1)/20.1*100' to compute growth percent."

	// NoResultsText is returned by the search tool when nothing matches.
	NoResultsText = "No relevant documents found."
)

// Tool is one callable action. Expected failures, such as a bad
// expression, are returned as text for the model to read. An error means
// a collaborator failed and the question cannot be answered.
type Tool interface {
	Definition() domain.ToolDefinition
	Invoke(ctx context.Context, input string) (string, error)
}

// SearchTool exposes the retriever as the sec_10k_search action.
type SearchTool struct {
	search driving.SearchService
}

// NewSearchTool creates the search tool.
func NewSearchTool(search driving.SearchService) *SearchTool {
	return &SearchTool{search: search}
}

// Definition returns the tool definition.
func (t *SearchTool) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        SearchToolName,
		Description: SearchToolDescription,
		Parameters:  domain.StringParameter("query", "Free-text search query, e.g. 'NVIDIA operating margin 2023'"),
	}
}

// Invoke runs a search and renders the results. Retrieval failures are
// returned as errors.
func (t *SearchTool) Invoke(ctx context.Context, input string) (string, error) {
	query := argument(input, "query")
	results, _, err := t.search.Search(ctx, query)
	if err != nil {
		return "", fmt.Errorf("search %q: %w", query, err)
	}
	return FormatResults(domain.Chunks(results)), nil
}

// FormatResults renders chunks the way the search tool returns them.
func FormatResults(chunks []domain.Chunk) string {
	if len(chunks) == 0 {
		return NoResultsText
	}

	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("Document %d:\nCompany: %s\nYear: %s\nPage: %d\nFile: %s\nContent: %s\n---",
			i+1, c.Entity, c.Period, c.Page, c.SourceID, c.Text)
	}
	return strings.Join(parts, "\n")
}

// CalculatorTool exposes the calculator as the calculator action.
type CalculatorTool struct {
	calc *Calculator
}

// NewCalculatorTool creates the calculator tool.
func NewCalculatorTool(calc *Calculator) *CalculatorTool {
	return &CalculatorTool{calc: calc}
}

// Definition returns the tool definition.
func (t *CalculatorTool) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        CalculatorToolName,
		Description: CalculatorToolDescription,
		Parameters:  domain.StringParameter("expression", "Arithmetic expression to evaluate"),
	}
}

// Invoke evaluates the expression.
func (t *CalculatorTool) Invoke(_ context.Context, input string) (string, error) {
	out, err := t.calc.Evaluate(argument(input, "expression"))
	if err != nil {
		return "Error: " + err.Error(), nil
	}
	return out, nil
}

// Toolset holds the tools offered to the model, keyed by name.
type Toolset struct {
	order    []string
	tools    map[string]Tool
	recorder driven.Recorder
}

// NewToolset registers tools in order. A later tool replaces an earlier
// one with the same name.
func NewToolset(tools ...Tool) *Toolset {
	ts := &Toolset{tools: make(map[string]Tool, len(tools)), recorder: nopRecorder{}}
	for _, t := range tools {
		name := t.Definition().Name
		if _, exists := ts.tools[name]; !exists {
			ts.order = append(ts.order, name)
		}
		ts.tools[name] = t
	}
	return ts
}

// SetRecorder sets the metrics recorder.
func (ts *Toolset) SetRecorder(r driven.Recorder) {
	ts.recorder = recorderOrNop(r)
}

// Definitions returns every tool definition in registration order.
func (ts *Toolset) Definitions() []domain.ToolDefinition {
	defs := make([]domain.ToolDefinition, 0, len(ts.order))
	for _, name := range ts.order {
		defs = append(defs, ts.tools[name].Definition())
	}
	return defs
}

// Invoke runs the named tool. An unknown tool is reported as text.
func (ts *Toolset) Invoke(ctx context.Context, name, input string) (string, error) {
	tool, ok := ts.tools[name]
	if !ok {
		ts.recorder.ToolInvoked(name, true)
		return fmt.Sprintf("Error: unknown tool %q", name), nil
	}

	logger.Debug("Tool %s(%s)", name, input)
	out, err := tool.Invoke(ctx, input)
	ts.recorder.ToolInvoked(name, err != nil || strings.HasPrefix(out, "Error: "))
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// argument extracts a named string from a JSON object. Anything that is
// not such an object is taken as the argument itself.
func argument(input, key string) string {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "{") {
		var args map[string]any
		if err := json.Unmarshal([]byte(trimmed), &args); err == nil {
			if v, ok := args[key].(string); ok {
				return v
			}
			if v, ok := args["input"].(string); ok {
				return v
			}
		}
	}
	var s string
	if strings.HasPrefix(trimmed, `"`) && json.Unmarshal([]byte(trimmed), &s) == nil {
		return s
	}
	return trimmed
}
