// Package chunker splits corpus text into overlapping passages.
//
// Splitting is recursive: text is first split on paragraph breaks, pieces
// that are still too long are split on line breaks, then sentences, then
// words, then characters. Small pieces are merged back greedily up to the
// chunk size, carrying a short tail of the previous chunk forward as overlap.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/triage/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// separators are tried in order, coarsest first. The empty separator
// splits into single characters.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Processor splits text into chunks of at most chunkSize characters.
// It is stateless after construction and safe for concurrent use.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the effective overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split returns the chunks of text in document order.
// Every chunk is trimmed, non-empty, and a substring of text.
func (p *Processor) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return p.split(text, separators)
}

// Passages returns the chunks of text as positioned passages.
func (p *Processor) Passages(text string) []domain.Passage {
	chunks := p.Split(text)
	passages := make([]domain.Passage, len(chunks))
	for i, c := range chunks {
		passages[i] = domain.Passage{Position: i, Text: c}
	}
	return passages
}

func (p *Processor) split(text string, seps []string) []string {
	// Pick the first separator present in the text.
	sep := seps[len(seps)-1]
	var finer []string
	for i, s := range seps {
		if s == "" {
			sep = s
			break
		}
		if strings.Contains(text, s) {
			sep = s
			finer = seps[i+1:]
			break
		}
	}

	var chunks, small []string
	for _, piece := range splitKeepingSeparator(text, sep) {
		if runeLen(piece) < p.chunkSize {
			small = append(small, piece)
			continue
		}
		if len(small) > 0 {
			chunks = append(chunks, p.merge(small)...)
			small = nil
		}
		if len(finer) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, p.split(piece, finer)...)
		}
	}
	if len(small) > 0 {
		chunks = append(chunks, p.merge(small)...)
	}
	return chunks
}

// merge joins consecutive pieces into chunks no longer than chunkSize.
// After each emitted chunk, leading pieces are dropped until at most
// overlap characters remain to start the next one.
func (p *Processor) merge(pieces []string) []string {
	var chunks, current []string
	total := 0

	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n > p.chunkSize && len(current) > 0 {
			if c := strings.TrimSpace(strings.Join(current, "")); c != "" {
				chunks = append(chunks, c)
			}
			for total > p.overlap || (total+n > p.chunkSize && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}

	if c := strings.TrimSpace(strings.Join(current, "")); c != "" {
		chunks = append(chunks, c)
	}
	return chunks
}

// splitKeepingSeparator splits text on sep and attaches each separator to
// the end of the piece before it. Empty pieces are dropped.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		pieces := make([]string, 0, len(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	parts := strings.Split(text, sep)
	pieces := make([]string, 0, len(parts))
	for i, part := range parts {
		if i < len(parts)-1 {
			part += sep
		}
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
