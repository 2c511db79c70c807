// Package flat provides an exact L2 vector index persisted to local files.
//
// The index keeps every vector in one contiguous slice and answers queries
// by scanning all rows. For a corpus of a few thousand passages this is
// fast enough and gives exact results.
package flat

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an in-memory exact nearest-neighbour index.
// Row i holds the vector stored for passage position i.
// It is immutable after construction and safe for concurrent searches.
type Index struct {
	dimension int
	data      []float32
}

// NewIndex builds an index from vectors that all have the given dimension.
func NewIndex(dimension int, vectors [][]float32) (*Index, error) {
	if dimension < 0 {
		return nil, fmt.Errorf("%w: negative dimension %d", domain.ErrInvalidInput, dimension)
	}

	data := make([]float32, 0, dimension*len(vectors))
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, expected %d",
				domain.ErrInvalidInput, i, len(v), dimension)
		}
		data = append(data, v...)
	}

	return &Index{dimension: dimension, data: data}, nil
}

// Search returns the k nearest rows by squared Euclidean distance.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 || x.Len() == 0 {
		return []driven.VectorHit{}, nil
	}
	if len(query) != x.dimension {
		return nil, fmt.Errorf("query has dimension %d, index has %d", len(query), x.dimension)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hits := make([]driven.VectorHit, x.Len())
	for row := range hits {
		hits[row] = driven.VectorHit{
			Position: row,
			Distance: squaredL2(query, x.data[row*x.dimension:(row+1)*x.dimension]),
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Position < hits[j].Position
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of stored vectors.
func (x *Index) Len() int {
	if x.dimension == 0 {
		return 0
	}
	return len(x.data) / x.dimension
}

// Dimension returns the vector size.
func (x *Index) Dimension() int {
	return x.dimension
}

// Close is a no-op; the index holds no external resources.
func (x *Index) Close() error {
	return nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
