package driving

import (
	"context"

	"github.com/custodia-labs/triage/internal/core/domain"
)

// IngestService builds the passage index from a corpus folder.
type IngestService interface {
	// Ingest reads, chunks and embeds the corpus and replaces the stored index.
	Ingest(ctx context.Context, corpusDir string) (*domain.IngestResult, error)
}
