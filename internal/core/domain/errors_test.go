package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrMissingIndex", ErrMissingIndex},
		{"ErrSessionNotFound", ErrSessionNotFound},
		{"ErrTranslationUnavailable", ErrTranslationUnavailable},
		{"ErrGeneration", ErrGeneration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrSessionNotFound_IsNotFound(t *testing.T) {
	assert.True(t, errors.Is(ErrSessionNotFound, ErrNotFound))
	assert.Equal(t, "session not found", ErrSessionNotFound.Error())

	wrapped := fmt.Errorf("summarize %q: %w", "abc", ErrSessionNotFound)
	assert.True(t, errors.Is(wrapped, ErrSessionNotFound))
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestErrors_Distinct(t *testing.T) {
	assert.False(t, errors.Is(ErrGeneration, ErrTranslationUnavailable))
	assert.False(t, errors.Is(ErrMissingIndex, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrSessionNotFound))
}
