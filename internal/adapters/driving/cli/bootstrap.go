package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/triage/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/triage/internal/adapters/driven/config/file"
	"github.com/custodia-labs/triage/internal/adapters/driven/corpus"
	"github.com/custodia-labs/triage/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/core/ports/driven"
	"github.com/custodia-labs/triage/internal/core/services"
	"github.com/custodia-labs/triage/internal/logger"
	"github.com/custodia-labs/triage/internal/postprocessors/chunker"
)

// homeEnv overrides the default triage home when --home is not given.
const homeEnv = "TRIAGE_HOME"

// Shared adapters, built once per process.
var (
	embedder   driven.EmbeddingService
	indexStore driven.IndexStore
	closers    []io.Closer
)

// triageHome resolves the directory holding config, prompts, index and reports.
func triageHome() (string, error) {
	if homeDir != "" {
		return homeDir, nil
	}
	if env := os.Getenv(homeEnv); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".triage"), nil
}

// track registers c to be closed when the command finishes.
func track(c io.Closer) {
	closers = append(closers, c)
}

// closeAll closes tracked resources in reverse order.
func closeAll() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Warn("closing resource: %v", err)
		}
	}
	closers = nil
}

func ensureSettings() error {
	if settingsService != nil {
		return nil
	}

	home, err := triageHome()
	if err != nil {
		return err
	}
	store, err := configfile.NewConfigStore(home)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	settingsService = services.NewSettingsService(store, ai.NewConfigValidator())
	return nil
}

func currentSettings() (*domain.AppSettings, error) {
	if err := ensureSettings(); err != nil {
		return nil, err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return settings, nil
}

func ensureEmbedder(settings *domain.AppSettings) error {
	if embedder != nil {
		return nil
	}

	svc, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return err
	}
	track(svc)
	embedder = svc
	return nil
}

func ensureIndexStore(settings *domain.AppSettings) error {
	if indexStore != nil {
		return nil
	}

	home, err := triageHome()
	if err != nil {
		return err
	}
	store, err := ai.CreateIndexStore(&settings.Index, home)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		track(c)
	}
	indexStore = store
	return nil
}

func ensureIngest() error {
	if ingestService != nil {
		return nil
	}

	settings, err := currentSettings()
	if err != nil {
		return err
	}
	if err := ensureEmbedder(settings); err != nil {
		return err
	}
	if err := ensureIndexStore(settings); err != nil {
		return err
	}

	splitter := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)
	svc := services.NewIngestService(corpus.NewReader(), splitter, embedder, indexStore)
	svc.SetBatchSize(settings.Retrieval.BatchSize)

	ingestService = svc
	return nil
}

// ensureRetrieval loads the stored index. A missing index is fatal.
func ensureRetrieval(ctx context.Context) error {
	if retrievalService != nil {
		return nil
	}

	settings, err := currentSettings()
	if err != nil {
		return err
	}
	if err := ensureEmbedder(settings); err != nil {
		return err
	}
	if err := ensureIndexStore(settings); err != nil {
		return err
	}

	retriever, err := services.LoadRetriever(ctx, indexStore, embedder)
	if err != nil {
		return err
	}
	track(retriever)

	retrievalService = retriever
	return nil
}

func ensureReports() error {
	if reportArchive != nil {
		return nil
	}

	settings, err := currentSettings()
	if err != nil {
		return err
	}
	home, err := triageHome()
	if err != nil {
		return err
	}
	store, err := ai.CreateReportStore(&settings.Report, home)
	if err != nil {
		return err
	}
	track(store)

	reportArchive = store
	return nil
}

// ensureEngine builds the dialogue and summary services over one session store.
func ensureEngine(ctx context.Context) error {
	if dialogueService != nil && summaryService != nil {
		return nil
	}

	settings, err := currentSettings()
	if err != nil {
		return err
	}
	home, err := triageHome()
	if err != nil {
		return err
	}
	if err := ensureRetrieval(ctx); err != nil {
		return err
	}
	if err := ensureReports(); err != nil {
		return err
	}

	llm, err := ai.CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		logger.Error("%v", err)
	}
	if llm != nil {
		track(llm)
	} else {
		logger.Warn("no llm provider available; run 'triage settings llm' to configure one")
	}

	prompts, err := configfile.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		return err
	}
	catalog, err := configfile.LoadLanguageCatalog(filepath.Join(home, configfile.LanguagesFileName))
	if err != nil {
		return fmt.Errorf("loading language catalog: %w", err)
	}

	translator, err := ai.CreateTranslator(&settings.Translation, llm, prompts, catalog)
	if err != nil {
		logger.Warn("translation disabled: %v", err)
	}

	sessions := memory.NewSessionStore()

	dialogue := services.NewDialogueService(sessions, retrievalService, llm, prompts)
	if translator != nil {
		dialogue.SetTranslator(translator)
	}
	dialogue.SetLanguageCatalog(catalog)
	dialogue.SetTopK(settings.Retrieval.TopK)

	dialogueService = dialogue
	summaryService = services.NewSummaryService(sessions, llm, prompts, reportArchive)
	return nil
}
