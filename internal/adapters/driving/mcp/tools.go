package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/triage/internal/core/domain"
)

// defaultRetrieveK is the number of passages the retrieve tool returns by default.
const defaultRetrieveK = domain.DefaultTopK

// StartSessionInput is the input schema for the start_session tool.
type StartSessionInput struct{}

// SessionOutput is the output schema for the start_session tool.
type SessionOutput struct {
	SessionID string `json:"session_id"`
}

// ChatInput is the input schema for the chat tool.
type ChatInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"the session to continue (default \"default\")"`
	Text      string `json:"text" jsonschema:"what the patient said"`
	Lang      string `json:"lang,omitempty" jsonschema:"ISO 639-1 code of the patient's language (default en)"`
}

// ChatOutput is the output schema for the chat tool.
type ChatOutput struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
}

// SummarizeInput is the input schema for the summarize tool.
type SummarizeInput struct {
	SessionID   string `json:"session_id" jsonschema:"the session to summarise"`
	PatientName string `json:"patient_name,omitempty" jsonschema:"patient display name on the report (default Unknown)"`
}

// SummarizeOutput is the output schema for the summarize tool.
type SummarizeOutput struct {
	Summary    string `json:"summary"`
	ReportFile string `json:"report_file,omitempty"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"text to find related corpus passages for"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of passages to return (default 4)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput represents a single retrieved passage.
type PassageOutput struct {
	Position int    `json:"position"`
	Text     string `json:"text"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "start_session",
		Description: "Start a new triage session and return its id",
	}, s.handleStartSession)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat",
		Description: "Send one patient message and receive a single follow-up triage question",
	}, s.handleChat)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize",
		Description: "Summarise a triage session for a physician and store the report",
	}, s.handleSummarize)

	if s.ports.Retrieval != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "retrieve",
			Description: "Find the clinical corpus passages closest to a query",
		}, s.handleRetrieve)
	}
}

func (s *Server) handleStartSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StartSessionInput,
) (*mcp.CallToolResult, SessionOutput, error) {
	id, err := s.ports.Dialogue.StartSession(ctx)
	if err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, SessionOutput{SessionID: id}, nil
}

func (s *Server) handleChat(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChatInput,
) (*mcp.CallToolResult, ChatOutput, error) {
	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = domain.DefaultSessionID
	}
	lang := input.Lang
	if lang == "" {
		lang = domain.DefaultLanguage
	}

	reply, err := s.ports.Dialogue.Ask(ctx, sessionID, input.Text, lang)
	if err != nil {
		return nil, ChatOutput{}, err
	}
	return nil, ChatOutput{Reply: reply, SessionID: sessionID}, nil
}

func (s *Server) handleSummarize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeInput,
) (*mcp.CallToolResult, SummarizeOutput, error) {
	if input.SessionID == "" {
		return nil, SummarizeOutput{}, errors.New("session_id is required")
	}
	name := strings.TrimSpace(input.PatientName)
	if name == "" {
		name = domain.DefaultDisplayName
	}

	report, err := s.ports.Summary.Report(ctx, input.SessionID, name)
	if err != nil {
		return nil, SummarizeOutput{}, err
	}
	return nil, SummarizeOutput{Summary: report.Text, ReportFile: report.Location}, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	k := input.K
	if k <= 0 {
		k = defaultRetrieveK
	}

	passages, err := s.ports.Retrieval.Retrieve(ctx, input.Query, k)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Passages: make([]PassageOutput, len(passages)),
		Count:    len(passages),
	}
	for i, p := range passages {
		output.Passages[i] = PassageOutput{Position: p.Position, Text: p.Text}
	}

	return nil, output, nil
}
