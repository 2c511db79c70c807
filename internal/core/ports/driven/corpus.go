package driven

import "context"

// Corpus is the concatenated text of a corpus folder.
type Corpus struct {
	// Text is every file's content followed by a blank line, in file order.
	Text string

	// Files lists the files that were read, sorted.
	Files []string

	// Skipped lists files that could not be read.
	Skipped []string
}

// CorpusReader reads the source documents for ingestion.
type CorpusReader interface {
	// Read loads all text files in dir.
	// A missing directory is an error; an empty one yields an empty corpus.
	Read(ctx context.Context, dir string) (*Corpus, error)
}
