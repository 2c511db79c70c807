package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the generation service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Engine Errors.

	// ErrMissingIndex indicates the persisted index artifacts are absent or
	// mutually inconsistent. The online engine refuses to start.
	ErrMissingIndex = errors.New("index artifacts missing or inconsistent, run 'triage ingest' first")

	// ErrSessionNotFound indicates a summary was requested for an unknown session.
	// It matches ErrNotFound with errors.Is.
	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)

	// ErrTranslationUnavailable indicates no translation capability exists
	// for the requested language pair.
	ErrTranslationUnavailable = errors.New("translation unavailable")

	// ErrGeneration indicates the generation collaborator failed for a turn
	// or summary. Nothing is recorded for the failed call.
	ErrGeneration = errors.New("generation failed")
)
