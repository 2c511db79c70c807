package flat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/triage/internal/core/domain"
)

func TestNewIndex_DimensionMismatch(t *testing.T) {
	_, err := NewIndex(2, [][]float32{{1, 0}, {1, 0, 0}})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndex_Search(t *testing.T) {
	index, err := NewIndex(2, [][]float32{
		{0, 0},
		{3, 4},
		{1, 1},
		{1, 1},
	})
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, 4, index.Len())
	assert.Equal(t, 2, index.Dimension())

	t.Run("ordered by distance then position", func(t *testing.T) {
		hits, err := index.Search(ctx, []float32{1, 1}, 3)
		require.NoError(t, err)
		require.Len(t, hits, 3)

		assert.Equal(t, 2, hits[0].Position)
		assert.Equal(t, 3, hits[1].Position)
		assert.Equal(t, 0, hits[2].Position)
		assert.Equal(t, float32(0), hits[0].Distance)
		assert.Equal(t, float32(2), hits[2].Distance)
	})

	t.Run("k larger than index returns everything", func(t *testing.T) {
		hits, err := index.Search(ctx, []float32{0, 0}, 10)
		require.NoError(t, err)
		require.Len(t, hits, 4)
		for i := 1; i < len(hits); i++ {
			assert.LessOrEqual(t, hits[i-1].Distance, hits[i].Distance)
		}
		assert.Equal(t, float32(25), hits[3].Distance)
	})

	t.Run("non-positive k", func(t *testing.T) {
		hits, err := index.Search(ctx, []float32{0, 0}, 0)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("query dimension mismatch", func(t *testing.T) {
		_, err := index.Search(ctx, []float32{0, 0, 0}, 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrInvalidInput)
		assert.ErrorContains(t, err, "query has dimension 3, index has 2")
	})
}

func TestIndex_Empty(t *testing.T) {
	index, err := NewIndex(384, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, index.Len())
	hits, err := index.Search(context.Background(), make([]float32, 384), 4)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.NoError(t, index.Close())
}
