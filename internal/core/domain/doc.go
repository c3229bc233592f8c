// Package domain defines the core business entities for finrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A retrievable span of filing text with provenance
//   - IndexEntry: A chunk plus its embedding vector
//   - RetrievalFilter: Entity/period constraints derived from a query
//   - ToolCallRecord: One step of an orchestration transcript
//   - AnswerEnvelope: The final structured, cited answer
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
