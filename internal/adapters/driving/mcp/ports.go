package mcp

import (
	"net/http"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Asker answers questions with a JSON envelope.
	Asker driving.Asker

	// Tools runs the search and calculator tools.
	Tools driving.ToolService

	// Search provides structured retrieval for resources.
	Search driving.SearchService

	// Index reports index size. Optional.
	Index driving.IndexService

	// Universe lists the tracked companies and years.
	Universe domain.Universe

	// Metrics is mounted at /metrics in HTTP mode. Optional.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Asker == nil {
		return ErrMissingAsker
	}
	if p.Tools == nil {
		return ErrMissingToolService
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
