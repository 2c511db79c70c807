package driving

import (
	"context"

	"github.com/custodia-labs/triage/internal/core/domain"
)

// DialogueService runs triage conversations.
type DialogueService interface {
	// StartSession creates an empty session and returns its id.
	StartSession(ctx context.Context) (string, error)

	// Ask answers one patient turn with a single follow-up question in the
	// patient's language, followed by the disclaimer for that language.
	// Unknown session ids are created on first use.
	Ask(ctx context.Context, sessionID, text, lang string) (string, error)
}

// SummaryService produces physician summaries of sessions.
type SummaryService interface {
	// Summarize returns a structured summary of the session's history.
	Summarize(ctx context.Context, sessionID string) (string, error)

	// Report summarises the session and stores the result.
	Report(ctx context.Context, sessionID, displayName string) (*domain.Report, error)

	// Transcript returns the rendered dialogue history.
	Transcript(ctx context.Context, sessionID string) (string, error)
}
