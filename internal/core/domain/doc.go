// Package domain defines the core business entities for triage.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Passage: A bounded excerpt of the scenario corpus, the unit of retrieval
//   - IndexMetadata: The ordered passages plus the embedding model that indexed them
//   - Session: An ordered conversation between one patient and the engine
//   - Turn: One exchange within a session, with its retrieved context
//   - Report: A physician summary and where it was stored
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
