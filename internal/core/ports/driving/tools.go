package driving

import (
	"context"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

// ToolService exposes the callable actions offered to the generation model.
type ToolService interface {
	// Definitions returns every tool definition in registration order.
	Definitions() []domain.ToolDefinition

	// Invoke runs the named tool. Expected outcomes (no results, a bad
	// expression, an unknown tool) are returned as text. An error means a
	// provider or the index failed.
	Invoke(ctx context.Context, name, input string) (string, error)
}
