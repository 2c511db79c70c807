// Package qdrant provides an IndexStore that keeps passage vectors in a
// Qdrant collection. Passage metadata is still written to meta.json in the
// local index directory so the retriever can map hits back to text.
package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/custodia-labs/triage/internal/adapters/driven/index/flat"
	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/core/ports/driven"
	"github.com/custodia-labs/triage/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// upsertBatchSize bounds the number of points per upsert request.
const upsertBatchSize = 256

// positionKey is the payload field holding the passage position.
const positionKey = "position"

// pointsClient is the subset of *qdrant.Client the store uses.
type pointsClient interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	DeleteCollection(ctx context.Context, collectionName string) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Count(ctx context.Context, request *qdrant.CountPoints) (uint64, error)
	Close() error
}

// Config holds connection settings for the Qdrant store.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	Collection string

	// MetaDir is the local directory for meta.json.
	MetaDir string
}

// Store persists vectors in Qdrant and metadata on disk.
type Store struct {
	client     pointsClient
	collection string
	metaDir    string
}

// NewStore connects to Qdrant.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant: collection name is required")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.APIKey != "",
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: connect %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return newStore(client, cfg.Collection, cfg.MetaDir), nil
}

func newStore(client pointsClient, collection, metaDir string) *Store {
	return &Store{client: client, collection: collection, metaDir: metaDir}
}

// Save recreates the collection with the build's vectors and writes meta.json.
func (s *Store) Save(ctx context.Context, build domain.IndexBuild) error {
	meta := build.Metadata
	if len(build.Vectors) != len(meta.Passages) {
		return fmt.Errorf("%w: %d vectors for %d passages",
			domain.ErrInvalidInput, len(build.Vectors), len(meta.Passages))
	}
	if meta.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive for qdrant", domain.ErrInvalidInput)
	}

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("qdrant: check collection: %w", err)
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
			return fmt.Errorf("qdrant: delete collection: %w", err)
		}
	}

	if err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(meta.Dimension),
					Distance: qdrant.Distance_Euclid,
				},
			},
		},
	}); err != nil {
		return fmt.Errorf("qdrant: create collection: %w", err)
	}

	points, err := toPoints(build.Vectors, meta.Dimension)
	if err != nil {
		return err
	}
	for start := 0; start < len(points); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(points))
		if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.collection,
			Points:         points[start:end],
			Wait:           qdrant.PtrOf(true),
		}); err != nil {
			return fmt.Errorf("qdrant: upsert points %d-%d: %w", start, end-1, err)
		}
	}

	if err := flat.WriteMetadata(s.metaDir, meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	logger.Debug("Saved %d vectors to qdrant collection %s", len(points), s.collection)
	return nil
}

// Load reads meta.json and checks the collection holds one point per passage.
func (s *Store) Load(ctx context.Context) (driven.VectorIndex, *domain.IndexMetadata, error) {
	meta, err := flat.ReadMetadata(s.metaDir)
	if err != nil {
		return nil, nil, err
	}

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return nil, nil, fmt.Errorf("qdrant: check collection: %w", err)
	}
	if !exists {
		return nil, nil, fmt.Errorf("%w: qdrant collection %s not found", domain.ErrMissingIndex, s.collection)
	}

	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("qdrant: count points: %w", err)
	}
	if int(count) != len(meta.Passages) {
		return nil, nil, fmt.Errorf("%w: collection %s has %d points but %d passages",
			domain.ErrMissingIndex, s.collection, count, len(meta.Passages))
	}

	return &Index{
		client:     s.client,
		collection: s.collection,
		dimension:  meta.Dimension,
		count:      int(count),
	}, meta, nil
}

// Close releases the client connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func toPoints(vectors [][]float32, dimension int) ([]*qdrant.PointStruct, error) {
	points := make([]*qdrant.PointStruct, len(vectors))
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, expected %d",
				domain.ErrInvalidInput, i, len(v), dimension)
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(i)),
			Vectors: qdrant.NewVectors(v...),
			Payload: qdrant.NewValueMap(map[string]any{positionKey: i}),
		}
	}
	return points, nil
}
