package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/core/ports/driven"
	"github.com/custodia-labs/triage/internal/core/ports/driving"
	"github.com/custodia-labs/triage/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// Retriever finds the passages nearest to a query.
// It holds the loaded index read-only and is safe for concurrent use.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	meta     domain.IndexMetadata
}

// NewRetriever creates a retriever over a loaded index.
// The embedder must be the one the index was built with.
func NewRetriever(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	meta *domain.IndexMetadata,
) *Retriever {
	r := &Retriever{
		embedder: embedder,
		index:    index,
	}
	if meta != nil {
		r.meta = *meta
	}
	return r
}

// LoadRetriever loads the stored index and wraps it in a Retriever.
// A missing or inconsistent index is returned as domain.ErrMissingIndex.
func LoadRetriever(
	ctx context.Context,
	store driven.IndexStore,
	embedder driven.EmbeddingService,
) (*Retriever, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	index, meta, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	if meta.EmbeddingModel != embedder.ModelName() {
		logger.Warn("index was built with embedding model %q but %q is configured; re-run ingest",
			meta.EmbeddingModel, embedder.ModelName())
	}
	if index.Len() > 0 && index.Dimension() != embedder.Dimensions() {
		logger.Warn("index dimension %d differs from embedding dimension %d",
			index.Dimension(), embedder.Dimensions())
	}

	logger.Info("Loaded index: %d passages, dimension %d, model %s",
		len(meta.Passages), meta.Dimension, meta.EmbeddingModel)

	return NewRetriever(embedder, index, meta), nil
}

// Retrieve returns at most k passages ordered by ascending distance to the query.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.Passage, error) {
	if k <= 0 {
		k = domain.DefaultTopK
	}

	if r.index == nil || r.index.Len() == 0 || len(r.meta.Passages) == 0 {
		logger.Debug("Index is empty, returning no passages")
		return []domain.Passage{}, nil
	}

	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Debug("Retrieving %d passages for %q", k, truncate(query, 60))

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.index.Search(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	passages := make([]domain.Passage, 0, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 || hit.Position >= len(r.meta.Passages) {
			logger.Debug("Dropping hit at position %d outside %d passages", hit.Position, len(r.meta.Passages))
			continue
		}
		passages = append(passages, r.meta.Passages[hit.Position])
		if len(passages) == k {
			break
		}
	}

	logger.Debug("Retrieved %d passages", len(passages))
	return passages, nil
}

// Metadata returns the metadata of the loaded index.
func (r *Retriever) Metadata() domain.IndexMetadata {
	return r.meta
}

// Len returns the number of indexed passages.
func (r *Retriever) Len() int {
	return len(r.meta.Passages)
}

// Close releases the underlying index.
func (r *Retriever) Close() error {
	if r.index == nil {
		return nil
	}
	return r.index.Close()
}

// truncate shortens s to at most n runes for log output.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
