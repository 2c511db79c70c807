package qdrant

import (
	"context"
	"errors"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/triage/internal/core/domain"
)

// fakeClient is an in-memory stand-in for a Qdrant collection.
type fakeClient struct {
	exists     bool
	dimension  uint64
	distance   qdrant.Distance
	points     map[uint64]bool
	upserts    int
	deleted    int
	results    []*qdrant.ScoredPoint
	queryErr   error
	lastLimit  uint64
	closed     bool
	countDelta int
}

func newFakeClient() *fakeClient {
	return &fakeClient{points: make(map[uint64]bool)}
}

func (f *fakeClient) CollectionExists(_ context.Context, _ string) (bool, error) {
	return f.exists, nil
}

func (f *fakeClient) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	params := req.GetVectorsConfig().GetParams()
	f.exists = true
	f.dimension = params.GetSize()
	f.distance = params.GetDistance()
	f.points = make(map[uint64]bool)
	return nil
}

func (f *fakeClient) DeleteCollection(_ context.Context, _ string) error {
	f.exists = false
	f.deleted++
	return nil
}

func (f *fakeClient) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.upserts++
	for _, p := range req.GetPoints() {
		f.points[p.GetId().GetNum()] = true
	}
	return &qdrant.UpdateResult{}, nil
}

func (f *fakeClient) Query(_ context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	f.lastLimit = req.GetLimit()
	out := f.results
	if int(f.lastLimit) < len(out) {
		out = out[:f.lastLimit]
	}
	return out, nil
}

func (f *fakeClient) Count(_ context.Context, _ *qdrant.CountPoints) (uint64, error) {
	return uint64(len(f.points) + f.countDelta), nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func testBuild(n int) domain.IndexBuild {
	build := domain.IndexBuild{Metadata: domain.IndexMetadata{EmbeddingModel: "hash-2", Dimension: 2}}
	for i := 0; i < n; i++ {
		build.Vectors = append(build.Vectors, []float32{float32(i), 0})
		build.Metadata.Passages = append(build.Metadata.Passages, domain.Passage{Position: i, Text: "p"})
	}
	return build
}

func TestStore_SaveAndLoad(t *testing.T) {
	client := newFakeClient()
	store := newStore(client, "triage_passages", t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testBuild(300)))

	assert.Equal(t, uint64(2), client.dimension)
	assert.Equal(t, qdrant.Distance_Euclid, client.distance)
	assert.Equal(t, 2, client.upserts, "300 points need two batches")
	assert.Len(t, client.points, 300)

	index, meta, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 300, index.Len())
	assert.Equal(t, 2, index.Dimension())
	assert.Len(t, meta.Passages, 300)

	client.results = []*qdrant.ScoredPoint{
		{Id: qdrant.NewIDNum(7), Score: 0},
		{Id: qdrant.NewIDNum(6), Score: 1},
		{Id: qdrant.NewIDNum(8), Score: 1},
		{Id: qdrant.NewIDNum(9), Score: 2},
	}
	hits, err := index.Search(ctx, []float32{7, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, 7, hits[0].Position)
	assert.Equal(t, float32(0), hits[0].Distance)
	assert.Equal(t, 6, hits[1].Position)
	assert.InDelta(t, 1.0, float64(hits[1].Distance), 1e-6)
	assert.Equal(t, uint64(3), client.lastLimit)

	client.results = []*qdrant.ScoredPoint{{Id: qdrant.NewIDNum(9), Score: 2}}
	hits, err = index.Search(ctx, []float32{9, 2}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, float64(hits[0].Distance), 1e-6, "euclidean score is squared")

	require.NoError(t, store.Close())
	assert.True(t, client.closed)
}

func TestStore_SaveRecreatesCollection(t *testing.T) {
	client := newFakeClient()
	store := newStore(client, "c", t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testBuild(5)))
	require.NoError(t, store.Save(ctx, testBuild(2)))

	assert.Equal(t, 1, client.deleted)
	assert.Len(t, client.points, 2)
}

func TestStore_Save_Validation(t *testing.T) {
	store := newStore(newFakeClient(), "c", t.TempDir())
	ctx := context.Background()

	build := testBuild(2)
	build.Vectors = build.Vectors[:1]
	assert.ErrorIs(t, store.Save(ctx, build), domain.ErrInvalidInput)

	build = testBuild(2)
	build.Metadata.Dimension = 0
	assert.ErrorIs(t, store.Save(ctx, build), domain.ErrInvalidInput)

	build = testBuild(2)
	build.Vectors[1] = []float32{1, 2, 3}
	assert.ErrorIs(t, store.Save(ctx, build), domain.ErrInvalidInput)
}

func TestStore_Load_Missing(t *testing.T) {
	ctx := context.Background()

	t.Run("no metadata", func(t *testing.T) {
		_, _, err := newStore(newFakeClient(), "c", t.TempDir()).Load(ctx)
		assert.ErrorIs(t, err, domain.ErrMissingIndex)
	})

	t.Run("no collection", func(t *testing.T) {
		client := newFakeClient()
		store := newStore(client, "c", t.TempDir())
		require.NoError(t, store.Save(ctx, testBuild(3)))
		client.exists = false

		_, _, err := store.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrMissingIndex)
	})

	t.Run("count mismatch", func(t *testing.T) {
		client := newFakeClient()
		store := newStore(client, "c", t.TempDir())
		require.NoError(t, store.Save(ctx, testBuild(3)))
		client.countDelta = -1

		_, _, err := store.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrMissingIndex)
	})
}

func TestIndex_Search_Errors(t *testing.T) {
	client := newFakeClient()
	index := &Index{client: client, collection: "c", dimension: 2, count: 1}
	ctx := context.Background()

	_, err := index.Search(ctx, []float32{1}, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorContains(t, err, "query has dimension 1, index has 2")

	client.queryErr = errors.New("unavailable")
	_, err = index.Search(ctx, []float32{1, 1}, 1)
	assert.ErrorContains(t, err, "unavailable")

	hits, err := index.Search(ctx, []float32{1, 1}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
