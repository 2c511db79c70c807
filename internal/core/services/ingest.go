package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/core/ports/driven"
	"github.com/custodia-labs/triage/internal/core/ports/driving"
	"github.com/custodia-labs/triage/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService builds the passage index from a corpus folder.
// Every run replaces the stored index wholesale.
type IngestService struct {
	reader    driven.CorpusReader
	chunker   driven.Chunker
	embedder  driven.EmbeddingService
	store     driven.IndexStore
	batchSize int
	now       func() time.Time
}

// NewIngestService creates a new ingestion service.
func NewIngestService(
	reader driven.CorpusReader,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	store driven.IndexStore,
) *IngestService {
	return &IngestService{
		reader:    reader,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		batchSize: domain.DefaultBatchSize,
		now:       time.Now,
	}
}

// SetBatchSize sets how many passages are embedded per request.
func (s *IngestService) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// Ingest reads, chunks and embeds the corpus in corpusDir and saves the index.
func (s *IngestService) Ingest(ctx context.Context, corpusDir string) (*domain.IngestResult, error) {
	logger.Section("Ingestion")
	start := s.now()

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	corpus, err := s.reader.Read(ctx, corpusDir)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	for _, name := range corpus.Skipped {
		logger.Warn("Skipped unreadable file %s", name)
	}
	logger.Debug("Read %d files (%d characters)", len(corpus.Files), len(corpus.Text))

	passages := s.chunker.Passages(corpus.Text)
	logger.Debug("Split corpus into %d passages", len(passages))

	vectors, err := s.embed(ctx, passages)
	if err != nil {
		return nil, err
	}

	dimension := s.embedder.Dimensions()
	if len(vectors) > 0 {
		dimension = len(vectors[0])
	}

	build := domain.IndexBuild{
		Vectors: vectors,
		Metadata: domain.IndexMetadata{
			EmbeddingModel: s.embedder.ModelName(),
			Dimension:      dimension,
			Passages:       passages,
			BuiltAt:        s.now().UTC(),
		},
	}
	if err := s.store.Save(ctx, build); err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}

	result := &domain.IngestResult{
		Files:          len(corpus.Files),
		Skipped:        len(corpus.Skipped),
		Passages:       len(passages),
		Dimension:      dimension,
		EmbeddingModel: s.embedder.ModelName(),
		Duration:       s.now().Sub(start),
	}
	logger.Info("Indexed %d passages from %d files in %s", result.Passages, result.Files, result.Duration)
	return result, nil
}

// embed computes one vector per passage in batches of batchSize.
func (s *IngestService) embed(ctx context.Context, passages []domain.Passage) ([][]float32, error) {
	vectors := make([][]float32, 0, len(passages))

	for start := 0; start < len(passages); start += s.batchSize {
		end := min(start+s.batchSize, len(passages))

		texts := make([]string, 0, end-start)
		for _, p := range passages[start:end] {
			texts = append(texts, p.Text)
		}

		batch, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed passages %d-%d: %w", start, end-1, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embed passages %d-%d: got %d vectors for %d texts",
				start, end-1, len(batch), len(texts))
		}

		for i, v := range batch {
			if len(vectors) > 0 && len(v) != len(vectors[0]) {
				return nil, fmt.Errorf("embed passage %d: dimension %d, expected %d",
					start+i, len(v), len(vectors[0]))
			}
			vectors = append(vectors, v)
		}
		logger.Debug("Embedded passages %d-%d", start, end-1)
	}

	return vectors, nil
}
