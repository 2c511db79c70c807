package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/triage/internal/core/ports/driven"
	"github.com/custodia-labs/triage/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptFollowUp: `You are a clinician assistant. Given the patient's input below and the retrieved clinical Q&A context, generate the next single concise question to ask the patient to gather more clinical information. Use plain language that a patient will understand.

Patient input:
%s

Context (relevant dialogues):
%s

Ask exactly one follow-up question that helps clarify the present complaint. Do NOT give medical advice, a diagnosis, or treatment recommendations.`,

	driven.PromptSummary: `Summarize the following clinician-patient dialog into a structured medical report for the doctor.
Use these sections, in this order:
Chief complaint
Onset & duration
Location
Severity
Associated symptoms
Past history & risk factors
Red flags requiring urgent escalation
Recommended next step for the physician

Write "Not reported" for any section the dialog does not cover.

Dialog:
%s`,

	driven.PromptTranslate: `Translate the following text from %s to %s.
Return ONLY the translation, with no notes or explanations.

Text:
%s`,
}

// placeholderCounts is the number of %s verbs each prompt must contain.
var placeholderCounts = map[string]int{
	driven.PromptFollowUp:  2,
	driven.PromptSummary:   1,
	driven.PromptTranslate: 3,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.triage/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".triage", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// A file whose placeholders don't match the expected count is ignored in
// favour of the embedded default.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err != nil {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	if want, ok := placeholderCounts[name]; ok && strings.Count(prompt, "%s") != want {
		logger.Warn("Prompt %s.txt needs %d %%s placeholders, using built-in default", name, want)
		prompt = defaultPrompts[name]
	}

	// Double-check so concurrent loads agree on one value.
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# Triage Prompts

These prompts drive the triage assistant. Edit a file to change how the
model is instructed; changes apply the next time the server or chat starts.

## Files

- ` + "`followup.txt`" + ` - One follow-up question per patient turn.
  Placeholders: patient input, then retrieved context.
- ` + "`summary.txt`" + ` - Physician summary of a whole session.
  Placeholder: the dialog transcript.
- ` + "`translate.txt`" + ` - Translation through the LLM.
  Placeholders: source language, target language, text.

Each placeholder is written as ` + "`%s`" + `. A file with the wrong number of
placeholders is ignored and the built-in prompt is used instead.
`
	return os.WriteFile(path, []byte(content), 0600)
}
