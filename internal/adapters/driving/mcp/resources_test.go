package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/triage/internal/core/domain"
)

func TestExtractSessionID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"valid uri", "triage://sessions/abc-123/transcript", "abc-123"},
		{"missing suffix", "triage://sessions/abc-123", ""},
		{"wrong scheme", "other://sessions/abc/transcript", ""},
		{"empty id", "triage://sessions//transcript", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractSessionID(tt.uri))
		})
	}
}

func TestExtractReportID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"valid uri", "triage://reports/r1", "r1"},
		{"nested path", "triage://reports/r1/extra", ""},
		{"wrong prefix", "triage://sessions/r1", ""},
		{"empty id", "triage://reports/", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractReportID(tt.uri))
		})
	}
}

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleTranscriptResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns transcript", func(t *testing.T) {
		ports := validPorts()
		ports.Summary = &mockSummaryService{transcript: "Patient said: fever\nBot asked: Since when?\n"}
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleTranscriptResource(ctx, makeReadResourceRequest("triage://sessions/abc/transcript"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "Patient said: fever")
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
	})

	t.Run("unknown session is not found", func(t *testing.T) {
		ports := validPorts()
		ports.Summary = &mockSummaryService{err: domain.ErrSessionNotFound}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, err = server.handleTranscriptResource(ctx, makeReadResourceRequest("triage://sessions/abc/transcript"))
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "reading transcript")
	})

	t.Run("malformed uri", func(t *testing.T) {
		server, err := NewServer(validPorts())
		require.NoError(t, err)

		_, err = server.handleTranscriptResource(ctx, makeReadResourceRequest("triage://sessions/abc"))
		assert.Error(t, err)
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		ports := validPorts()
		ports.Summary = &mockSummaryService{err: errors.New("boom")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, err = server.handleTranscriptResource(ctx, makeReadResourceRequest("triage://sessions/abc/transcript"))
		assert.ErrorContains(t, err, "reading transcript")
	})
}

func TestServer_handleReportsResource(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("lists reports", func(t *testing.T) {
		ports := validPorts()
		ports.Reports = &mockReportReader{reports: []domain.Report{
			{ID: "r1", SessionID: "s1", DisplayName: "Asha", Location: "/r/a.md", CreatedAt: created},
		}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleReportsResource(ctx, makeReadResourceRequest("triage://reports"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, `"id": "r1"`)
		assert.Contains(t, result.Contents[0].Text, `"display_name": "Asha"`)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		ports := validPorts()
		ports.Reports = &mockReportReader{err: errors.New("database error")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, err = server.handleReportsResource(ctx, makeReadResourceRequest("triage://reports"))
		assert.ErrorContains(t, err, "listing reports")
	})
}

func TestServer_handleReportResource(t *testing.T) {
	ctx := context.Background()

	ports := validPorts()
	ports.Reports = &mockReportReader{reports: []domain.Report{
		{ID: "r1", Text: "Chief complaint: cough"},
	}}
	server, err := NewServer(ports)
	require.NoError(t, err)

	t.Run("returns report text", func(t *testing.T) {
		result, err := server.handleReportResource(ctx, makeReadResourceRequest("triage://reports/r1"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "Chief complaint: cough", result.Contents[0].Text)
	})

	t.Run("unknown report", func(t *testing.T) {
		_, err := server.handleReportResource(ctx, makeReadResourceRequest("triage://reports/missing"))
		assert.Error(t, err)
	})

	t.Run("malformed uri", func(t *testing.T) {
		_, err := server.handleReportResource(ctx, makeReadResourceRequest("triage://reports/"))
		assert.Error(t, err)
	})
}
