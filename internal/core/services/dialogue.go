package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/core/ports/driven"
	"github.com/custodia-labs/triage/internal/core/ports/driving"
	"github.com/custodia-labs/triage/internal/logger"
)

// Ensure DialogueService implements the interface.
var _ driving.DialogueService = (*DialogueService)(nil)

// Generation bounds for a single follow-up question.
const (
	followUpMaxTokens   = 128
	followUpTemperature = 0
)

// DialogueService asks one grounded follow-up question per patient turn.
type DialogueService struct {
	sessions   driven.SessionStore
	retriever  driving.RetrievalService
	llm        driven.LLMService
	prompts    driven.PromptStore
	translator driven.Translator
	languages  domain.LanguageCatalog
	topK       int
	now        func() time.Time
}

// NewDialogueService creates a new dialogue service.
// Translation is disabled until SetTranslator is called.
func NewDialogueService(
	sessions driven.SessionStore,
	retriever driving.RetrievalService,
	llm driven.LLMService,
	prompts driven.PromptStore,
) *DialogueService {
	return &DialogueService{
		sessions:  sessions,
		retriever: retriever,
		llm:       llm,
		prompts:   prompts,
		languages: domain.DefaultLanguageCatalog(),
		topK:      domain.DefaultTopK,
		now:       time.Now,
	}
}

// SetTranslator sets the translator used for non-working languages.
func (s *DialogueService) SetTranslator(t driven.Translator) {
	s.translator = t
}

// SetLanguageCatalog sets the catalog disclaimers are looked up in.
func (s *DialogueService) SetLanguageCatalog(c domain.LanguageCatalog) {
	if c != nil {
		s.languages = c
	}
}

// SetTopK sets the number of passages retrieved per turn.
func (s *DialogueService) SetTopK(k int) {
	if k > 0 {
		s.topK = k
	}
}

// StartSession creates an empty session with a fresh id.
func (s *DialogueService) StartSession(ctx context.Context) (string, error) {
	id := uuid.New().String()
	if err := s.sessions.Create(ctx, id); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	logger.Debug("Started session %s", id)
	return id, nil
}

// Ask answers one patient turn. The reply is in the patient's language and
// ends with the disclaimer for that language.
func (s *DialogueService) Ask(ctx context.Context, sessionID, text, lang string) (string, error) {
	logger.Section("Dialogue Turn")

	if strings.TrimSpace(sessionID) == "" {
		return "", fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: message text is required", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	if err := s.ensureSession(ctx, sessionID); err != nil {
		return "", err
	}

	lang = domain.NormaliseLanguage(lang)
	logger.Debug("Session %s, language %s", sessionID, lang)

	input, err := s.translate(ctx, text, lang, domain.WorkingLanguage)
	if err != nil {
		return "", fmt.Errorf("translate input: %w", err)
	}

	passages, err := s.retriever.Retrieve(ctx, input, s.topK)
	if err != nil {
		return "", fmt.Errorf("retrieve: %w", err)
	}

	prompt, err := s.followUpPrompt(input, passages)
	if err != nil {
		return "", err
	}

	out, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   followUpMaxTokens,
		Temperature: followUpTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	reply := firstQuestion(out)
	if reply == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrGeneration)
	}
	logger.Debug("Follow-up: %q", reply)

	localReply, err := s.translate(ctx, reply, domain.WorkingLanguage, lang)
	if err != nil {
		return "", fmt.Errorf("translate reply: %w", err)
	}

	turn := domain.Turn{
		Input:     input,
		Reply:     reply,
		Passages:  passages,
		CreatedAt: s.now(),
	}
	if err := s.sessions.AppendTurn(ctx, sessionID, turn); err != nil {
		return "", fmt.Errorf("append turn: %w", err)
	}

	return localReply + "\n\n" + s.languages.Disclaimer(lang), nil
}

// ensureSession creates the session on first use.
func (s *DialogueService) ensureSession(ctx context.Context, id string) error {
	_, err := s.sessions.Get(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("get session: %w", err)
	}

	logger.Debug("Creating session %s on first message", id)
	if err := s.sessions.Create(ctx, id); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// translate converts text between languages. Identical languages are a no-op;
// any other pair needs a translator.
func (s *DialogueService) translate(ctx context.Context, text, src, tgt string) (string, error) {
	if src == tgt {
		return text, nil
	}
	if s.translator == nil {
		return "", fmt.Errorf("%w: %s to %s", domain.ErrTranslationUnavailable, src, tgt)
	}
	return s.translator.Translate(ctx, text, src, tgt)
}

func (s *DialogueService) followUpPrompt(input string, passages []domain.Passage) (string, error) {
	tmpl, err := s.prompts.Load(driven.PromptFollowUp)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", driven.PromptFollowUp, err)
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	return fmt.Sprintf(tmpl, input, strings.Join(texts, "\n\n")), nil
}

// firstQuestion trims the completion and, when the model asked more than
// one question, keeps everything up to and including the first.
func firstQuestion(out string) string {
	out = strings.TrimSpace(out)
	if strings.Count(out, "?") > 1 {
		out = out[:strings.Index(out, "?")+1]
	}
	return out
}
