package domain

import "time"

// Passage is a bounded excerpt of the scenario corpus.
// Passages are created once at ingestion and never mutated.
type Passage struct {
	// Position is the ordinal position in the ingested sequence.
	// It is also the row of the passage's vector in the index.
	Position int `json:"position"`

	// Text is the passage content.
	Text string `json:"text"`
}

// IndexMetadata is the second persisted artifact: the ordered passages
// and the identity of the embedding function that produced the vectors.
type IndexMetadata struct {
	// EmbeddingModel identifies the embedding function used at build time.
	EmbeddingModel string `json:"embedding_model"`

	// Dimension is the embedding vector size discovered at build time.
	Dimension int `json:"dimension"`

	// Passages is the ordered passage sequence.
	Passages []Passage `json:"passages"`

	// BuiltAt is when the artifacts were written.
	BuiltAt time.Time `json:"built_at"`
}

// IndexBuild carries everything an index store needs to persist both artifacts.
// Vectors[i] belongs to Metadata.Passages[i].
type IndexBuild struct {
	Vectors  [][]float32
	Metadata IndexMetadata
}

// IngestResult describes a completed ingestion.
type IngestResult struct {
	// Files is the number of corpus files read.
	Files int

	// Skipped is the number of unreadable files that were left out.
	Skipped int

	// Passages is the number of passages indexed.
	Passages int

	// Dimension is the embedding dimension.
	Dimension int

	// EmbeddingModel identifies the embedding function used.
	EmbeddingModel string

	// Duration is the wall time of the ingestion.
	Duration time.Duration
}
