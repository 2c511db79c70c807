package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/core/ports/driven"
)

// Ensure LLMLoader implements the interface.
var _ Loader = (*LLMLoader)(nil)

const translateMaxTokens = 512

// LLMLoader translates with the configured language model. A pair is
// available when both languages are in the catalog.
type LLMLoader struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	catalog domain.LanguageCatalog
}

// NewLLMLoader creates a loader that prompts llm with the translate template.
func NewLLMLoader(llm driven.LLMService, prompts driven.PromptStore, catalog domain.LanguageCatalog) *LLMLoader {
	if catalog == nil {
		catalog = domain.DefaultLanguageCatalog()
	}
	return &LLMLoader{llm: llm, prompts: prompts, catalog: catalog}
}

// Load checks the pair against the catalog and returns a prompt-based translator.
func (l *LLMLoader) Load(_ context.Context, src, tgt string) (PairTranslator, error) {
	if l.llm == nil {
		return nil, fmt.Errorf("%w: no language model configured", domain.ErrTranslationUnavailable)
	}
	for _, code := range []string{src, tgt} {
		if !l.catalog.Supports(code) {
			return nil, fmt.Errorf("%w: language %q is not in the catalog", domain.ErrTranslationUnavailable, code)
		}
	}

	tmpl, err := l.prompts.Load(driven.PromptTranslate)
	if err != nil {
		return nil, fmt.Errorf("load prompt %s: %w", driven.PromptTranslate, err)
	}

	return &llmPair{
		llm:     l.llm,
		tmpl:    tmpl,
		srcName: l.catalog.Name(src),
		tgtName: l.catalog.Name(tgt),
	}, nil
}

type llmPair struct {
	llm     driven.LLMService
	tmpl    string
	srcName string
	tgtName string
}

func (p *llmPair) Translate(ctx context.Context, text string) (string, error) {
	out, err := p.llm.Generate(ctx, fmt.Sprintf(p.tmpl, p.srcName, p.tgtName, text), driven.GenerateOptions{
		MaxTokens:   translateMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("empty translation")
	}
	return out, nil
}
