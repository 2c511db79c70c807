package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/custodia-labs/triage/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index searches a Qdrant collection whose point ids are passage positions.
type Index struct {
	client     pointsClient
	collection string
	dimension  int
	count      int
}

// Search returns the k nearest points. Qdrant reports Euclidean distance;
// it is squared here to match the flat index.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 || x.count == 0 {
		return []driven.VectorHit{}, nil
	}
	if len(query) != x.dimension {
		return nil, fmt.Errorf("query has dimension %d, index has %d", len(query), x.dimension)
	}

	limit := uint64(k)
	points, err := x.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: x.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: query: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(points))
	for _, p := range points {
		if p.GetId() == nil {
			continue
		}
		hits = append(hits, driven.VectorHit{
			Position: int(p.GetId().GetNum()),
			Distance: p.GetScore() * p.GetScore(),
		})
	}
	return hits, nil
}

// Len returns the number of points counted at load.
func (x *Index) Len() int {
	return x.count
}

// Dimension returns the vector size.
func (x *Index) Dimension() int {
	return x.dimension
}

// Close is a no-op; the Store owns the connection.
func (x *Index) Close() error {
	return nil
}
