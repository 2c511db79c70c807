package mcp

import (
	"context"

	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/core/ports/driving"
)

// ReportReader reads archived physician reports.
type ReportReader interface {
	ListReports(ctx context.Context, limit int) ([]domain.Report, error)
	GetReport(ctx context.Context, id string) (*domain.Report, error)
}

// Ports aggregates the services the MCP server calls.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Dialogue runs triage turns.
	Dialogue driving.DialogueService

	// Summary produces physician summaries and transcripts.
	Summary driving.SummaryService

	// Retrieval enables the retrieve tool when set.
	Retrieval driving.RetrievalService

	// Reports enables the report resources when set.
	Reports ReportReader
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Dialogue == nil {
		return ErrMissingDialogueService
	}
	if p.Summary == nil {
		return ErrMissingSummaryService
	}
	return nil
}
