package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/core/ports/driven"
	"github.com/custodia-labs/triage/internal/core/ports/driving"
	"github.com/custodia-labs/triage/internal/logger"
)

// Ensure SummaryService implements the interface.
var _ driving.SummaryService = (*SummaryService)(nil)

// Generation bounds for a physician summary.
const (
	summaryMaxTokens   = 512
	summaryTemperature = 0
)

// SummaryService turns a session's history into a physician summary.
// It never modifies the session.
type SummaryService struct {
	sessions driven.SessionStore
	llm      driven.LLMService
	prompts  driven.PromptStore
	writer   driven.ReportWriter
	now      func() time.Time
}

// NewSummaryService creates a new summary service.
// The writer is optional; without it reports are returned but not stored.
func NewSummaryService(
	sessions driven.SessionStore,
	llm driven.LLMService,
	prompts driven.PromptStore,
	writer driven.ReportWriter,
) *SummaryService {
	return &SummaryService{
		sessions: sessions,
		llm:      llm,
		prompts:  prompts,
		writer:   writer,
		now:      time.Now,
	}
}

// Transcript returns the session's history as "Patient said / Bot asked" lines.
func (s *SummaryService) Transcript(ctx context.Context, sessionID string) (string, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("get session %q: %w", sessionID, err)
	}
	return session.Transcript(), nil
}

// Summarize generates a structured summary of the session.
// Unknown ids return domain.ErrSessionNotFound.
func (s *SummaryService) Summarize(ctx context.Context, sessionID string) (string, error) {
	logger.Section("Summary")

	transcript, err := s.Transcript(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	tmpl, err := s.prompts.Load(driven.PromptSummary)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", driven.PromptSummary, err)
	}

	out, err := s.llm.Generate(ctx, fmt.Sprintf(tmpl, transcript), driven.GenerateOptions{
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	summary := strings.TrimSpace(out)
	if summary == "" {
		return "", fmt.Errorf("%w: empty summary", domain.ErrGeneration)
	}

	logger.Debug("Summary for %s: %d characters", sessionID, len(summary))
	return summary, nil
}

// Report summarises the session and stores the summary with the report writer.
// An empty display name is recorded as domain.DefaultDisplayName.
func (s *SummaryService) Report(ctx context.Context, sessionID, displayName string) (*domain.Report, error) {
	text, err := s.Summarize(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = domain.DefaultDisplayName
	}

	report := domain.Report{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		DisplayName: displayName,
		Text:        text,
		CreatedAt:   s.now(),
	}

	if s.writer != nil {
		location, err := s.writer.Write(ctx, report)
		if err != nil {
			return nil, fmt.Errorf("write report: %w", err)
		}
		report.Location = location
		logger.Info("Report for %s written to %s", sessionID, location)
	}

	return &report, nil
}
