package mcp

import (
	"context"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

// mockAsker is a mock implementation of driving.Asker.
type mockAsker struct {
	answer   string
	question string
}

func (m *mockAsker) Ask(_ context.Context, question string) string {
	m.question = question
	return m.answer
}

// mockToolService is a mock implementation of driving.ToolService.
type mockToolService struct {
	defs    []domain.ToolDefinition
	output  string
	err     error
	invoked []string
}

func newMockToolService() *mockToolService {
	return &mockToolService{
		defs: []domain.ToolDefinition{
			{Name: domain.SearchToolName, Description: "search filings"},
			{Name: domain.CalculatorToolName, Description: "evaluate arithmetic"},
		},
	}
}

func (m *mockToolService) Definitions() []domain.ToolDefinition {
	return m.defs
}

func (m *mockToolService) Invoke(_ context.Context, name, input string) (string, error) {
	m.invoked = append(m.invoked, name+":"+input)
	return m.output, m.err
}

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.ScoredChunk
	filter  domain.RetrievalFilter
	err     error
	query   string
}

func (m *mockSearchService) Search(_ context.Context, query string) ([]domain.ScoredChunk, domain.RetrievalFilter, error) {
	m.query = query
	return m.results, m.filter, m.err
}

func (m *mockSearchService) ExtractFilter(_ string) domain.RetrievalFilter {
	return m.filter
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	count int
	err   error
}

func (m *mockIndexService) Ensure(_ context.Context) (*domain.IndexReport, error) {
	return &domain.IndexReport{}, m.err
}

func (m *mockIndexService) Rebuild(_ context.Context) (*domain.IndexReport, error) {
	return &domain.IndexReport{}, m.err
}

func (m *mockIndexService) Count(_ context.Context) (int, error) {
	return m.count, m.err
}

func validPorts() *Ports {
	return &Ports{
		Asker:    &mockAsker{},
		Tools:    newMockToolService(),
		Search:   &mockSearchService{},
		Universe: domain.DefaultUniverse(),
	}
}

func chunk(ticker, year string, page int, text string, score float64) domain.ScoredChunk {
	return domain.ScoredChunk{
		Score: score,
		Chunk: domain.Chunk{
			ID:       ticker + year + text,
			Text:     text,
			SourceID: ticker + "_" + year + ".pdf",
			Entity:   ticker,
			Period:   year,
			Page:     page,
		},
	}
}
