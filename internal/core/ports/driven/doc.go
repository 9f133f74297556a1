// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Document and chunk persistence
//   - VectorIndex: Atomic chunk-vector writes and similarity search
//   - EmbeddingService: Generates vector embeddings
//   - HistoryStore: Query history persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Completion provider. Without it, queries return ranked
//     excerpts only and LLM document classification is disabled.
//   - PromptStore: Custom prompt overrides. Without it, built-in prompts apply.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
