// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Tokenizer: Reference tokenizer for deterministic chunk boundaries
//   - Extractor: Turns filing bytes into page text
//   - EmbeddingService: Generates vector embeddings
//   - VectorStore: Stores index entries and answers similarity queries
//   - LLMService: Generation model with tool calling
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - FilingFetcher: Downloads filings. Only needed by the fetch command.
//   - PromptStore: Overrides the agent system instruction.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
