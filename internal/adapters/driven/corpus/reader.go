// Package corpus reads the clinical reference folder that ingestion indexes,
// and watches it for changes.
package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/triage/internal/core/ports/driven"
	"github.com/custodia-labs/triage/internal/logger"
)

// Ensure Reader implements the interface.
var _ driven.CorpusReader = (*Reader)(nil)

// Extension is the suffix of corpus documents.
const Extension = ".txt"

// Reader loads every *.txt file of a folder, in name order.
type Reader struct{}

// NewReader creates a corpus reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read concatenates the folder's text files, each followed by a blank line.
// Unreadable files are recorded in Skipped and left out of the text.
func (r *Reader) Read(ctx context.Context, dir string) (*driven.Corpus, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("corpus folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus folder: %s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing corpus folder: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !isCorpusFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	corpus := &driven.Corpus{}
	var sb strings.Builder
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable corpus file %s: %v", path, err)
			corpus.Skipped = append(corpus.Skipped, path)
			continue
		}

		sb.Write(data)
		sb.WriteString("\n\n")
		corpus.Files = append(corpus.Files, path)
	}
	corpus.Text = sb.String()

	logger.Debug("read %d corpus files from %s (%d skipped)", len(corpus.Files), dir, len(corpus.Skipped))
	return corpus, nil
}

// isCorpusFile reports whether name is a visible text document.
func isCorpusFile(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.EqualFold(filepath.Ext(name), Extension)
}
