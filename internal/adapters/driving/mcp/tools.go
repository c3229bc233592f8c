package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"a financial question about GOOGL, MSFT or NVDA 10-K filings (2022-2024)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	// Answer is the answer envelope, or {"raw": ...} when the model did
	// not produce valid JSON.
	Answer map[string]any `json:"answer"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"free-text query; company names and years narrow the results"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results  []SearchResultOutput `json:"results"`
	Count    int                  `json:"count"`
	Entities []string             `json:"entities,omitempty"`
	Periods  []string             `json:"periods,omitempty"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	Ticker  string  `json:"ticker"`
	Year    string  `json:"year"`
	Page    int     `json:"page"`
	File    string  `json:"file"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

// CalculatorInput is the input schema for the calculator tool.
type CalculatorInput struct {
	Expression string `json:"expression" jsonschema:"arithmetic expression, e.g. (27.0-20.1)/20.1*100"`
}

// CalculatorOutput is the output schema for the calculator tool.
type CalculatorOutput struct {
	Result string `json:"result"`
}

// registerTools registers all tool handlers with the MCP server.
// Descriptions come from the tool service so MCP clients see the same
// guidance as the orchestrator's model.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a financial question from 10-K filings with cited sources, returned as a JSON envelope",
	}, s.handleAsk)

	for _, def := range s.ports.Tools.Definitions() {
		tool := &mcp.Tool{Name: def.Name, Description: def.Description}
		switch def.Name {
		case domain.SearchToolName:
			mcp.AddTool(s.server, tool, s.handleSearch)
		case domain.CalculatorToolName:
			mcp.AddTool(s.server, tool, s.handleCalculator)
		}
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	out := s.ports.Asker.Ask(ctx, input.Question)

	var answer map[string]any
	if err := json.Unmarshal([]byte(out), &answer); err != nil {
		answer = map[string]any{"raw": out}
	}
	return nil, AskOutput{Answer: answer}, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, filter, err := s.ports.Search.Search(ctx, input.Query)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:  make([]SearchResultOutput, len(results)),
		Count:    len(results),
		Entities: filter.Entities,
		Periods:  filter.Periods,
	}
	for i := range results {
		c := results[i].Chunk
		output.Results[i] = SearchResultOutput{
			Ticker:  c.Entity,
			Year:    c.Period,
			Page:    c.Page,
			File:    c.SourceID,
			Score:   results[i].Score,
			Content: c.Text,
		}
	}
	return nil, output, nil
}

// handleCalculator handles the calculator tool invocation. Evaluation
// errors are returned in Result, as the model would see them.
func (s *Server) handleCalculator(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CalculatorInput,
) (*mcp.CallToolResult, CalculatorOutput, error) {
	out, err := s.ports.Tools.Invoke(ctx, domain.CalculatorToolName, input.Expression)
	if err != nil {
		return nil, CalculatorOutput{}, fmt.Errorf("calculator failed: %w", err)
	}
	return nil, CalculatorOutput{Result: out}, nil
}
