package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/triage/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for triage resources.
	uriScheme = "triage://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Template for session transcripts.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}/transcript",
		Name:        "session-transcript",
		Description: "Dialogue history of a triage session",
		MIMEType:    "text/plain",
	}, s.handleTranscriptResource)

	if s.ports.Reports == nil {
		return
	}

	// Static resource for listing reports.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "reports",
		Name:        "reports",
		Description: "Archived physician reports, newest first",
		MIMEType:    "application/json",
	}, s.handleReportsResource)

	// Template for report text.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "reports/{reportId}",
		Name:        "report-content",
		Description: "Text of an archived physician report",
		MIMEType:    "text/plain",
	}, s.handleReportResource)
}

// handleTranscriptResource returns the dialogue history of a session.
func (s *Server) handleTranscriptResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract sessionId from URI: triage://sessions/{sessionId}/transcript
	sessionID := extractSessionID(req.Params.URI)
	if sessionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	transcript, err := s.ports.Summary.Transcript(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	return textResult(req.Params.URI, "text/plain", transcript), nil
}

// handleReportsResource returns the archived reports without their text.
func (s *Server) handleReportsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	reports, err := s.ports.Reports.ListReports(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	type reportInfo struct {
		ID          string    `json:"id"`
		SessionID   string    `json:"session_id"`
		DisplayName string    `json:"display_name"`
		Location    string    `json:"location"`
		CreatedAt   time.Time `json:"created_at"`
	}

	infos := make([]reportInfo, len(reports))
	for i := range reports {
		infos[i] = reportInfo{
			ID:          reports[i].ID,
			SessionID:   reports[i].SessionID,
			DisplayName: reports[i].DisplayName,
			Location:    reports[i].Location,
			CreatedAt:   reports[i].CreatedAt,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling reports: %w", err)
	}

	return textResult(req.Params.URI, "application/json", string(data)), nil
}

// handleReportResource returns the text of one report.
func (s *Server) handleReportResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract reportId from URI: triage://reports/{reportId}
	reportID := extractReportID(req.Params.URI)
	if reportID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	report, err := s.ports.Reports.GetReport(ctx, reportID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting report: %w", err)
	}

	return textResult(req.Params.URI, "text/plain", report.Text), nil
}

func textResult(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		}},
	}
}

// extractSessionID extracts the session ID from a URI like triage://sessions/{sessionId}/transcript.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "sessions/"
	const suffix = "/transcript"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}

// extractReportID extracts the report ID from a URI like triage://reports/{reportId}.
func extractReportID(uri string) string {
	const prefix = uriScheme + "reports/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
