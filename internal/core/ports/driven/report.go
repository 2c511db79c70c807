package driven

import (
	"context"

	"github.com/custodia-labs/triage/internal/core/domain"
)

// ReportWriter stores a physician report and returns where it was written.
type ReportWriter interface {
	Write(ctx context.Context, report domain.Report) (string, error)
}

// ReportArchive is a ReportWriter that can also list and fetch stored reports.
type ReportArchive interface {
	ReportWriter

	// ListReports returns stored reports newest first, without their text.
	// A limit of zero or less returns all reports.
	ListReports(ctx context.Context, limit int) ([]domain.Report, error)

	// GetReport returns a stored report.
	// Returns domain.ErrNotFound if the id is unknown.
	GetReport(ctx context.Context, id string) (*domain.Report, error)
}
