package mcp

import (
	"context"

	"github.com/custodia-labs/triage/internal/core/domain"
)

// mockDialogueService is a mock implementation of driving.DialogueService.
type mockDialogueService struct {
	reply       string
	err         error
	lastSession string
	lastText    string
	lastLang    string
}

func (m *mockDialogueService) StartSession(_ context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "session-1", nil
}

func (m *mockDialogueService) Ask(_ context.Context, sessionID, text, lang string) (string, error) {
	m.lastSession = sessionID
	m.lastText = text
	m.lastLang = lang
	return m.reply, m.err
}

// mockSummaryService is a mock implementation of driving.SummaryService.
type mockSummaryService struct {
	text       string
	transcript string
	location   string
	err        error
	lastName   string
}

func (m *mockSummaryService) Summarize(_ context.Context, _ string) (string, error) {
	return m.text, m.err
}

func (m *mockSummaryService) Report(_ context.Context, sessionID, displayName string) (*domain.Report, error) {
	m.lastName = displayName
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Report{
		ID:          "r1",
		SessionID:   sessionID,
		DisplayName: displayName,
		Text:        m.text,
		Location:    m.location,
	}, nil
}

func (m *mockSummaryService) Transcript(_ context.Context, _ string) (string, error) {
	return m.transcript, m.err
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	passages []domain.Passage
	err      error
	lastK    int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, k int) ([]domain.Passage, error) {
	m.lastK = k
	return m.passages, m.err
}

// mockReportReader is a mock implementation of ReportReader.
type mockReportReader struct {
	reports []domain.Report
	err     error
}

func (m *mockReportReader) ListReports(_ context.Context, _ int) ([]domain.Report, error) {
	return m.reports, m.err
}

func (m *mockReportReader) GetReport(_ context.Context, id string) (*domain.Report, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.reports {
		if m.reports[i].ID == id {
			r := m.reports[i]
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func validPorts() *Ports {
	return &Ports{
		Dialogue: &mockDialogueService{},
		Summary:  &mockSummaryService{},
	}
}
