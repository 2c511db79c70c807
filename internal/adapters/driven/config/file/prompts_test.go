package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/triage/internal/core/ports/driven"
)

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptFollowUp)
	require.NoError(t, err)

	for _, f := range []string{"followup.txt", "summary.txt", "translate.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestPromptStore_DefaultPrompts(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	followUp, err := store.Load(driven.PromptFollowUp)
	require.NoError(t, err)
	assert.Contains(t, followUp, "exactly one follow-up question")
	assert.Contains(t, followUp, "Do NOT give medical advice")

	summary, err := store.Load(driven.PromptSummary)
	require.NoError(t, err)
	for _, section := range []string{
		"Chief complaint", "Onset & duration", "Location", "Severity",
		"Associated symptoms", "Past history & risk factors",
		"Red flags requiring urgent escalation", "Recommended next step for the physician",
	} {
		assert.Contains(t, summary, section)
	}

	// Every default renders without leftover verbs.
	for name, n := range placeholderCounts {
		prompt, err := store.Load(name)
		require.NoError(t, err)
		args := make([]any, n)
		for i := range args {
			args[i] = "x"
		}
		assert.NotContains(t, fmt.Sprintf(prompt, args...), "%!", name)
	}
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	custom := "Patient: %s\nContext: %s\nAsk one question."
	require.NoError(t, os.WriteFile(filepath.Join(dir, "followup.txt"), []byte(custom), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptFollowUp)

	require.NoError(t, err)
	assert.Equal(t, custom, prompt)
}

func TestPromptStore_Load_WrongPlaceholdersUsesDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summary.txt"), []byte("no placeholder here"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptSummary)

	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptSummary], prompt)
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, _ = store.Load(driven.PromptTranslate)
	require.NoError(t, os.Remove(filepath.Join(dir, "translate.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptTranslate)

	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptTranslate], prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent_prompt")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_Load_InitFailureUsesDefaults(t *testing.T) {
	store, err := NewPromptStore("/dev/null/prompts")
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptSummary)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptSummary], prompt)

	_, err = store.Load("nonexistent_prompt")
	assert.Error(t, err)
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptSummary)
	require.NoError(t, err)

	modified := "Short summary please:\n%s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summary.txt"), []byte(modified), 0600))

	cached, err := store.Load(driven.PromptSummary)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()

	reloaded, err := store.Load(driven.PromptSummary)
	require.NoError(t, err)
	assert.Equal(t, modified, reloaded)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	const goroutines = 50
	var wg sync.WaitGroup
	results := make(chan string, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptFollowUp)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results <- prompt
		}()
	}

	wg.Wait()
	close(results)

	var first string
	for prompt := range results {
		if first == "" {
			first = prompt
		}
		assert.Equal(t, first, prompt)
	}
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	custom := "pre-existing: %s %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "followup.txt"), []byte(custom), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	_, _ = store.Load(driven.PromptSummary)

	data, err := os.ReadFile(filepath.Join(dir, "followup.txt"))
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}

func TestPromptStore_TrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summary.txt"), []byte("\n\n  Dialog: %s  \n\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptSummary)
	require.NoError(t, err)
	assert.Equal(t, "Dialog: %s", prompt)
}
