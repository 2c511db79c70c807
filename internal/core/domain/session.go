package domain

import (
	"strings"
	"time"
)

// SessionState is the dialogue state of a session.
type SessionState string

// Session states. There is no terminal state: a session stays active
// until the process ends.
const (
	// SessionNew is a session with no turns yet.
	SessionNew SessionState = "new"

	// SessionActive is a session with at least one turn.
	SessionActive SessionState = "active"
)

// DefaultSessionID is the session used when a chat request names none.
const DefaultSessionID = "default"

// Session is an ordered conversation between one patient and the engine.
type Session struct {
	// ID is the opaque session key.
	ID string

	// CreatedAt is when the session was created.
	CreatedAt time.Time

	// Turns is the append-only history, oldest first.
	Turns []Turn
}

// Turn is one exchange within a session.
type Turn struct {
	// Input is the patient text in the working language.
	Input string

	// Reply is the generated follow-up in the working language.
	Reply string

	// Passages is the context retrieved for this turn.
	Passages []Passage

	// CreatedAt is when the turn was recorded.
	CreatedAt time.Time
}

// State returns the session's dialogue state.
func (s *Session) State() SessionState {
	if len(s.Turns) == 0 {
		return SessionNew
	}
	return SessionActive
}

// Clone returns a deep copy so callers never share history with the store.
func (s *Session) Clone() *Session {
	c := &Session{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Turns:     make([]Turn, len(s.Turns)),
	}
	for i, t := range s.Turns {
		t.Passages = append([]Passage(nil), t.Passages...)
		c.Turns[i] = t
	}
	return c
}

// Transcript renders the history as a linear dialogue in chronological order.
func (s *Session) Transcript() string {
	var b strings.Builder
	for _, t := range s.Turns {
		b.WriteString("Patient said: ")
		b.WriteString(t.Input)
		b.WriteString("\nBot asked: ")
		b.WriteString(t.Reply)
		b.WriteString("\n\n")
	}
	return b.String()
}
