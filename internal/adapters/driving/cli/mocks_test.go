package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/triage/internal/core/domain"
)

type mockIngest struct {
	dirs []string
	err  error
}

func (m *mockIngest) Ingest(_ context.Context, corpusDir string) (*domain.IngestResult, error) {
	m.dirs = append(m.dirs, corpusDir)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestResult{
		Files:          2,
		Skipped:        1,
		Passages:       12,
		Dimension:      384,
		EmbeddingModel: "hash-384",
		Duration:       1500 * time.Millisecond,
	}, nil
}

type mockRetrieval struct {
	passages []domain.Passage
	lastK    int
	err      error
}

func (m *mockRetrieval) Retrieve(_ context.Context, _ string, k int) ([]domain.Passage, error) {
	m.lastK = k
	return m.passages, m.err
}

type mockDialogue struct {
	mu    sync.Mutex
	turns []string
	langs []string
	err   error
}

func (m *mockDialogue) StartSession(_ context.Context) (string, error) {
	return "session-1", nil
}

func (m *mockDialogue) Ask(_ context.Context, sessionID, text, lang string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.turns = append(m.turns, sessionID+":"+text)
	m.langs = append(m.langs, lang)
	return "Where does it hurt?", nil
}

type mockSummary struct {
	names []string
	err   error
}

func (m *mockSummary) Summarize(_ context.Context, _ string) (string, error) {
	return "Chief complaint: headache", m.err
}

func (m *mockSummary) Report(_ context.Context, sessionID, displayName string) (*domain.Report, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.names = append(m.names, displayName)
	return &domain.Report{
		ID:          "r1",
		SessionID:   sessionID,
		DisplayName: displayName,
		Text:        "Chief complaint: headache",
		Location:    "/tmp/reports/r1.txt",
	}, nil
}

func (m *mockSummary) Transcript(_ context.Context, _ string) (string, error) {
	return "Patient: my head hurts\nAssistant: Where does it hurt?", m.err
}

type mockArchive struct {
	reports []domain.Report
	err     error
}

func (m *mockArchive) Write(_ context.Context, report domain.Report) (string, error) {
	m.reports = append(m.reports, report)
	return "mem://" + report.ID, nil
}

func (m *mockArchive) ListReports(_ context.Context, limit int) ([]domain.Report, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && limit < len(m.reports) {
		return m.reports[:limit], nil
	}
	return m.reports, nil
}

func (m *mockArchive) GetReport(_ context.Context, id string) (*domain.Report, error) {
	for i := range m.reports {
		if m.reports[i].ID == id {
			return &m.reports[i], nil
		}
	}
	return nil, fmt.Errorf("report %s: %w", id, domain.ErrNotFound)
}

type mockSettings struct {
	settings domain.AppSettings
	set      map[string]string
	setErr   error
	provider domain.AIProvider
	model    string
	apiKey   string
	pingErr  error
}

func newMockSettings() *mockSettings {
	return &mockSettings{settings: domain.DefaultAppSettings(), set: map[string]string{}}
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettings) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettings) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = provider, model, apiKey
	return nil
}

func (m *mockSettings) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = provider, model, apiKey
	return nil
}

func (m *mockSettings) Validate() error {
	if !m.settings.LLM.IsConfigured() {
		return errors.New("llm provider is not configured")
	}
	return nil
}

func (m *mockSettings) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettings) ValidateEmbeddingConfig() error { return m.pingErr }

func (m *mockSettings) ValidateLLMConfig() error { return m.pingErr }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	settings  *mockSettings
	ingest    *mockIngest
	retrieval *mockRetrieval
	dialogue  *mockDialogue
	summary   *mockSummary
	archive   *mockArchive
}

// setupTestServices installs mocks in the package service variables and
// returns a function restoring the previous values.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		settings: newMockSettings(),
		ingest:   &mockIngest{},
		retrieval: &mockRetrieval{passages: []domain.Passage{
			{Position: 3, Text: "Headache with fever\nand stiff neck."},
			{Position: 7, Text: "Migraine with aura."},
		}},
		dialogue: &mockDialogue{},
		summary:  &mockSummary{},
		archive: &mockArchive{reports: []domain.Report{
			{ID: "r2", SessionID: "s2", DisplayName: "Jane", Text: "second", CreatedAt: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)},
			{ID: "r1", SessionID: "s1", DisplayName: "Unknown", Text: "first", CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
		}},
	}

	oldSettings, oldIngest, oldRetrieval := settingsService, ingestService, retrievalService
	oldDialogue, oldSummary, oldArchive := dialogueService, summaryService, reportArchive

	settingsService = ts.settings
	ingestService = ts.ingest
	retrievalService = ts.retrieval
	dialogueService = ts.dialogue
	summaryService = ts.summary
	reportArchive = ts.archive

	return ts, func() {
		settingsService, ingestService, retrievalService = oldSettings, oldIngest, oldRetrieval
		dialogueService, summaryService, reportArchive = oldDialogue, oldSummary, oldArchive
	}
}
