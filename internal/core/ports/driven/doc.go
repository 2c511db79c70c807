// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the engine to answer patients:
//
//   - EmbeddingService: Embeds passages at ingestion and queries at retrieval
//   - IndexStore: Persists and loads the passage index
//   - VectorIndex: Nearest-neighbour search over passage embeddings
//   - LLMService: Generates follow-up questions and summaries
//   - SessionStore: Dialogue history persistence
//   - PromptStore: Prompt templates
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the engine degrades gracefully:
//
//   - Translator: Without it, only the working language is served.
//   - ReportWriter: Without it, summaries are returned but not stored.
//   - CorpusReader: Only needed for ingestion.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
