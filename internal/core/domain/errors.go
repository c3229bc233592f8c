package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a missing or inconsistent setting.
	// Configuration errors are fatal at startup.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown provider, backend or file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the generation model cannot be reached.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service cannot be reached.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable indicates the vector store is not configured or closed.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrIndexEmpty indicates a build produced no stored entries.
	ErrIndexEmpty = errors.New("index is empty")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrNoFilingFound indicates the filing repository has no primary
	// document for the requested entity and period.
	ErrNoFilingFound = errors.New("no filing found")

	// ErrStepLimit indicates the orchestration loop hit its step ceiling.
	ErrStepLimit = errors.New("step limit reached")
)
