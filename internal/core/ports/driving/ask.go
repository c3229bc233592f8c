package driving

import (
	"context"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

// Asker answers one financial question.
type Asker interface {
	// Ask runs the orchestration loop and returns a JSON string: either the
	// minified answer envelope or a {"raw": ...} fallback. It never fails.
	Ask(ctx context.Context, question string) string
}

// Orchestrator is an Asker that also exposes the transcript of a run.
type Orchestrator interface {
	Asker

	// Run answers the question. Provider failures are returned as errors.
	Run(ctx context.Context, question string) (*domain.RunResult, error)
}
