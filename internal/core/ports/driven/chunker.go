package driven

import "github.com/custodia-labs/triage/internal/core/domain"

// Chunker splits corpus text into ordered, overlapping passages.
// Implementations are pure and deterministic.
type Chunker interface {
	Passages(text string) []domain.Passage
}
