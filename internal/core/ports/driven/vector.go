package driven

import (
	"context"

	"github.com/custodia-labs/triage/internal/core/domain"
)

// VectorIndex provides nearest-neighbour search over passage embeddings.
// A loaded index is read-only and safe for concurrent searches.
type VectorIndex interface {
	// Search finds the k nearest neighbours to the query vector.
	// Hits are ordered by ascending distance, ties by position.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimension returns the vector size.
	Dimension() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Position is the passage position the vector was stored under.
	Position int

	// Distance is the squared Euclidean distance to the query.
	Distance float32
}

// IndexStore persists the passage index built at ingestion and loads it at startup.
// Save overwrites any previous version wholesale.
type IndexStore interface {
	// Save stores vectors and metadata. Vector i belongs to passage i.
	Save(ctx context.Context, build domain.IndexBuild) error

	// Load opens the stored index.
	// Returns domain.ErrMissingIndex when artifacts are absent or disagree.
	Load(ctx context.Context) (VectorIndex, *domain.IndexMetadata, error)
}
