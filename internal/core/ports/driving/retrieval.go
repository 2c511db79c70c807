package driving

import (
	"context"

	"github.com/custodia-labs/triage/internal/core/domain"
)

// RetrievalService finds the passages most relevant to a query.
type RetrievalService interface {
	// Retrieve returns at most k passages ordered by ascending distance.
	// k <= 0 uses the default.
	Retrieve(ctx context.Context, query string, k int) ([]domain.Passage, error)
}
