package flat

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/core/ports/driven"
	"github.com/custodia-labs/triage/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// Artifact file names inside the index directory.
const (
	IndexFileName    = "index.bin"
	MetadataFileName = "meta.json"
)

// indexBlob is the gob-encoded layout of index.bin.
type indexBlob struct {
	Dimension int
	Count     int
	Data      []float32
}

// Store persists the flat index and its metadata in a directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created on Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the index directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes both artifacts, replacing any previous version.
func (s *Store) Save(_ context.Context, build domain.IndexBuild) error {
	meta := build.Metadata
	if len(build.Vectors) != len(meta.Passages) {
		return fmt.Errorf("%w: %d vectors for %d passages",
			domain.ErrInvalidInput, len(build.Vectors), len(meta.Passages))
	}

	index, err := NewIndex(meta.Dimension, build.Vectors)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	blob := indexBlob{Dimension: index.dimension, Count: index.Len(), Data: index.data}
	if err := writeAtomic(filepath.Join(s.dir, IndexFileName), func(f *os.File) error {
		return gob.NewEncoder(f).Encode(blob)
	}); err != nil {
		return fmt.Errorf("write %s: %w", IndexFileName, err)
	}

	if err := writeAtomic(filepath.Join(s.dir, MetadataFileName), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return fmt.Errorf("write %s: %w", MetadataFileName, err)
	}

	logger.Debug("Saved flat index to %s (%d vectors, dimension %d)", s.dir, blob.Count, blob.Dimension)
	return nil
}

// Load reads both artifacts and checks they agree.
func (s *Store) Load(_ context.Context) (driven.VectorIndex, *domain.IndexMetadata, error) {
	meta, err := ReadMetadata(s.dir)
	if err != nil {
		return nil, nil, err
	}

	var blob indexBlob
	if err := readFile(filepath.Join(s.dir, IndexFileName), func(f *os.File) error {
		return gob.NewDecoder(f).Decode(&blob)
	}); err != nil {
		return nil, nil, missing(IndexFileName, err)
	}

	if blob.Count*blob.Dimension != len(blob.Data) {
		return nil, nil, fmt.Errorf("%w: %s holds %d values for %d vectors of dimension %d",
			domain.ErrMissingIndex, IndexFileName, len(blob.Data), blob.Count, blob.Dimension)
	}
	if blob.Count != len(meta.Passages) {
		return nil, nil, fmt.Errorf("%w: %d vectors but %d passages",
			domain.ErrMissingIndex, blob.Count, len(meta.Passages))
	}
	if blob.Count > 0 && blob.Dimension != meta.Dimension {
		return nil, nil, fmt.Errorf("%w: index dimension %d, metadata dimension %d",
			domain.ErrMissingIndex, blob.Dimension, meta.Dimension)
	}

	return &Index{dimension: blob.Dimension, data: blob.Data}, meta, nil
}

// ReadMetadata reads meta.json from dir.
// Returns domain.ErrMissingIndex if it is absent or unreadable.
func ReadMetadata(dir string) (*domain.IndexMetadata, error) {
	var meta domain.IndexMetadata
	if err := readFile(filepath.Join(dir, MetadataFileName), func(f *os.File) error {
		return json.NewDecoder(f).Decode(&meta)
	}); err != nil {
		return nil, missing(MetadataFileName, err)
	}
	for i, p := range meta.Passages {
		if p.Position != i {
			return nil, fmt.Errorf("%w: passage %d has position %d", domain.ErrMissingIndex, i, p.Position)
		}
	}
	return &meta, nil
}

// WriteMetadata atomically writes meta.json into dir.
func WriteMetadata(dir string, meta domain.IndexMetadata) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	return writeAtomic(filepath.Join(dir, MetadataFileName), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
}

func missing(name string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s not found", domain.ErrMissingIndex, name)
	}
	return fmt.Errorf("%w: read %s: %v", domain.ErrMissingIndex, name, err)
}

func readFile(path string, decode func(*os.File) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return decode(f)
}

// writeAtomic writes through a temp file in the same directory and renames
// it over path, so readers never see a partial artifact.
func writeAtomic(path string, encode func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := encode(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
