// Package translation provides the Translator used for patient languages
// other than the working language.
//
// A Registry builds one pair translator per source/target combination the
// first time it is needed and reuses it afterwards. Loading is delegated to a
// provider-specific Loader (LLM prompt or LibreTranslate).
package translation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/core/ports/driven"
	"github.com/custodia-labs/triage/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.Translator = (*Registry)(nil)

// PairTranslator translates text for one fixed language pair.
type PairTranslator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Loader builds a PairTranslator. It returns domain.ErrTranslationUnavailable
// when the provider cannot serve the pair.
type Loader interface {
	Load(ctx context.Context, src, tgt string) (PairTranslator, error)
}

type pairKey struct {
	src, tgt string
}

// entry guards the lazy load of one pair.
type entry struct {
	mu         sync.Mutex
	translator PairTranslator
}

// Registry caches pair translators by language pair.
type Registry struct {
	loader Loader

	mu      sync.Mutex
	entries map[pairKey]*entry
}

// NewRegistry creates a registry backed by loader. A nil loader makes every
// cross-language request fail with domain.ErrTranslationUnavailable.
func NewRegistry(loader Loader) *Registry {
	return &Registry{
		loader:  loader,
		entries: make(map[pairKey]*entry),
	}
}

// Translate converts text from src to tgt. Identical languages return text unchanged.
func (r *Registry) Translate(ctx context.Context, text, src, tgt string) (string, error) {
	src = domain.NormaliseLanguage(src)
	tgt = domain.NormaliseLanguage(tgt)
	if src == tgt {
		return text, nil
	}

	translator, err := r.pair(ctx, pairKey{src: src, tgt: tgt})
	if err != nil {
		return "", err
	}

	out, err := translator.Translate(ctx, text)
	if err != nil {
		return "", fmt.Errorf("%w: %s to %s: %w", domain.ErrTranslationUnavailable, src, tgt, err)
	}
	return strings.TrimSpace(out), nil
}

// Loaded reports whether a translator for the pair is cached.
func (r *Registry) Loaded(src, tgt string) bool {
	r.mu.Lock()
	e, ok := r.entries[pairKey{src: domain.NormaliseLanguage(src), tgt: domain.NormaliseLanguage(tgt)}]
	r.mu.Unlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.translator != nil
}

// pair returns the cached translator for key, loading it on first use.
// Only successful loads are cached, so a failed pair is retried next time.
func (r *Registry) pair(ctx context.Context, key pairKey) (PairTranslator, error) {
	if r.loader == nil {
		return nil, fmt.Errorf("%w: no translation provider configured for %s to %s",
			domain.ErrTranslationUnavailable, key.src, key.tgt)
	}

	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		e = &entry{}
		r.entries[key] = e
	}
	r.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.translator != nil {
		return e.translator, nil
	}

	logger.Debug("Loading translator %s->%s", key.src, key.tgt)
	translator, err := r.loader.Load(ctx, key.src, key.tgt)
	if err != nil {
		return nil, fmt.Errorf("load translator %s to %s: %w", key.src, key.tgt, err)
	}
	e.translator = translator
	return translator, nil
}
