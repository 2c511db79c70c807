package driven

import (
	"context"

	"github.com/custodia-labs/triage/internal/core/domain"
)

// SessionStore persists dialogue sessions.
// Callers serialise requests for a single session; different sessions
// may be used concurrently.
type SessionStore interface {
	// Create registers an empty session.
	// Returns domain.ErrAlreadyExists if the id is taken.
	Create(ctx context.Context, id string) error

	// Get returns a copy of the session.
	// Returns domain.ErrSessionNotFound if the id is unknown.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// AppendTurn adds a turn to the end of the session history.
	AppendTurn(ctx context.Context, id string, turn domain.Turn) error

	// List returns all session ids, sorted.
	List(ctx context.Context) ([]string, error)
}
