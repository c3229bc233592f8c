// Package tui provides an interactive terminal user interface for finrag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/finrag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Asker answers questions for the chat view.
	Asker driving.Asker

	// Search provides passage retrieval for the search view.
	Search driving.SearchService
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Asker == nil {
		return ErrMissingAsker
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
