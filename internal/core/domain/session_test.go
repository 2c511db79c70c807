package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_State(t *testing.T) {
	s := &Session{ID: "s1"}
	assert.Equal(t, SessionNew, s.State())

	s.Turns = append(s.Turns, Turn{Input: "hi", Reply: "How long?"})
	assert.Equal(t, SessionActive, s.State())
}

func TestSession_Clone(t *testing.T) {
	s := &Session{
		ID:        "s1",
		CreatedAt: time.Now(),
		Turns: []Turn{{
			Input:    "headache",
			Reply:    "Since when?",
			Passages: []Passage{{Position: 0, Text: "p0"}},
		}},
	}

	c := s.Clone()
	require.Len(t, c.Turns, 1)

	c.Turns[0].Passages[0].Text = "changed"
	c.Turns = append(c.Turns, Turn{Input: "more"})

	assert.Equal(t, "p0", s.Turns[0].Passages[0].Text)
	assert.Len(t, s.Turns, 1)
}

func TestSession_Transcript(t *testing.T) {
	s := &Session{
		Turns: []Turn{
			{Input: "I have a headache", Reply: "How long has it lasted?"},
			{Input: "Three days", Reply: "Is it getting worse?"},
		},
	}

	want := "Patient said: I have a headache\nBot asked: How long has it lasted?\n\n" +
		"Patient said: Three days\nBot asked: Is it getting worse?\n\n"
	assert.Equal(t, want, s.Transcript())
}

func TestSession_Transcript_Empty(t *testing.T) {
	assert.Equal(t, "", (&Session{}).Transcript())
}
