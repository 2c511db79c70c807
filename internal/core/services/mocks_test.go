package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/core/ports/driven"
)

// mockLLM returns canned completions and records every prompt it receives.
type mockLLM struct {
	mu      sync.Mutex
	outputs []string
	err     error
	prompts []string
	opts    []driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	if len(m.outputs) == 0 {
		return "Where exactly is the pain?", nil
	}
	out := m.outputs[0]
	if len(m.outputs) > 1 {
		m.outputs = m.outputs[1:]
	}
	return out, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockPrompts serves fixed templates with the same placeholders as the defaults.
type mockPrompts struct {
	err error
}

func (m *mockPrompts) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	switch name {
	case driven.PromptFollowUp:
		return "INPUT: %s\nCONTEXT: %s\nASK:", nil
	case driven.PromptSummary:
		return "SUMMARISE:\n%s", nil
	case driven.PromptTranslate:
		return "%s -> %s: %s", nil
	}
	return "", fmt.Errorf("unknown prompt %s", name)
}

func (m *mockPrompts) Reload() {}

// mockTranslator tags text with the target language.
type mockTranslator struct {
	err   error
	calls []string
}

func (m *mockTranslator) Translate(_ context.Context, text, src, tgt string) (string, error) {
	m.calls = append(m.calls, src+">"+tgt)
	if m.err != nil {
		return "", m.err
	}
	return "[" + tgt + "] " + text, nil
}

// mockRetriever returns fixed passages.
type mockRetriever struct {
	mu       sync.Mutex
	passages []domain.Passage
	err      error
	queries  []string
}

func (m *mockRetriever) Retrieve(_ context.Context, query string, k int) ([]domain.Passage, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.passages) {
		return m.passages[:k], nil
	}
	return m.passages, nil
}

// mockReportWriter records written reports.
type mockReportWriter struct {
	reports []domain.Report
	err     error
}

func (m *mockReportWriter) Write(_ context.Context, report domain.Report) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.reports = append(m.reports, report)
	return "mem://" + report.ID, nil
}

// mockCorpusReader returns a fixed corpus.
type mockCorpusReader struct {
	corpus *driven.Corpus
	err    error
}

func (m *mockCorpusReader) Read(_ context.Context, dir string) (*driven.Corpus, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.corpus == nil {
		return nil, fmt.Errorf("corpus dir %s: %w", dir, errors.New("does not exist"))
	}
	return m.corpus, nil
}

// lineChunker makes one passage per non-empty line.
type lineChunker struct{}

func (lineChunker) Passages(text string) []domain.Passage {
	var passages []domain.Passage
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		passages = append(passages, domain.Passage{Position: len(passages), Text: line})
	}
	return passages
}

// mockEmbedder embeds text as its length, with a fixed dimension.
type mockEmbedder struct {
	dim     int
	err     error
	batches int
	short   bool
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	v := make([]float32, m.dim)
	v[0] = float32(len(text))
	return v, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batches++
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dim }
func (m *mockEmbedder) ModelName() string            { return fmt.Sprintf("mock-%d", m.dim) }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockIndexStore keeps the last saved build.
type mockIndexStore struct {
	saved   *domain.IndexBuild
	saveErr error
}

func (m *mockIndexStore) Save(_ context.Context, build domain.IndexBuild) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = &build
	return nil
}

func (m *mockIndexStore) Load(_ context.Context) (driven.VectorIndex, *domain.IndexMetadata, error) {
	return nil, nil, domain.ErrMissingIndex
}

// failingSessionStore fails AppendTurn.
type failingSessionStore struct {
	driven.SessionStore
	err error
}

func (f *failingSessionStore) AppendTurn(_ context.Context, _ string, _ domain.Turn) error {
	return f.err
}
