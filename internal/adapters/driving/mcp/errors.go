// Package mcp provides an MCP (Model Context Protocol) server adapter for triage.
// It lets AI assistants run triage sessions, read summaries and query the corpus.
package mcp

import "errors"

// ErrMissingDialogueService is returned when the dialogue service is not provided.
var ErrMissingDialogueService = errors.New("mcp: dialogue service is required")

// ErrMissingSummaryService is returned when the summary service is not provided.
var ErrMissingSummaryService = errors.New("mcp: summary service is required")
