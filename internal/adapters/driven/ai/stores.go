package ai

import (
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/triage/internal/adapters/driven/index/flat"
	qdrantindex "github.com/custodia-labs/triage/internal/adapters/driven/index/qdrant"
	reportfile "github.com/custodia-labs/triage/internal/adapters/driven/report/file"
	"github.com/custodia-labs/triage/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/triage/internal/adapters/driven/translation"
	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/core/ports/driven"
)

// Default directory names inside the triage home.
const (
	IndexDirName   = "index"
	ReportsDirName = "reports"
	DataDirName    = "data"
)

// CreateTranslator creates the translator selected by settings.
// Returns nil when translation is disabled. The LLM loader needs llm and prompts.
func CreateTranslator(
	settings *domain.TranslationSettings,
	llm driven.LLMService,
	prompts driven.PromptStore,
	catalog domain.LanguageCatalog,
) (driven.Translator, error) {
	if settings == nil {
		return nil, nil
	}

	switch settings.Provider {
	case "", domain.TranslationNone:
		return nil, nil

	case domain.TranslationLLM:
		if llm == nil {
			return nil, fmt.Errorf("%w: translation provider %q needs an llm provider",
				domain.ErrTranslationUnavailable, settings.Provider)
		}
		return translation.NewRegistry(translation.NewLLMLoader(llm, prompts, catalog)), nil

	case domain.TranslationLibre:
		loader, err := translation.NewLibreLoader(translation.LibreConfig{
			BaseURL: settings.BaseURL,
			APIKey:  settings.APIKey,
		})
		if err != nil {
			return nil, err
		}
		return translation.NewRegistry(loader), nil

	default:
		return nil, fmt.Errorf("unsupported translation provider: %q", settings.Provider)
	}
}

// CreateIndexStore creates the index store selected by settings.
// An empty settings.Dir resolves to <home>/index.
func CreateIndexStore(settings *domain.IndexSettings, home string) (driven.IndexStore, error) {
	if settings == nil {
		return nil, fmt.Errorf("index settings are required")
	}

	dir := settings.Dir
	if dir == "" {
		dir = filepath.Join(home, IndexDirName)
	}

	switch settings.Backend {
	case "", domain.IndexBackendFlat:
		return flat.NewStore(dir), nil

	case domain.IndexBackendQdrant:
		store, err := qdrantindex.NewStore(qdrantindex.Config{
			Host:       settings.QdrantHost,
			Port:       settings.QdrantPort,
			APIKey:     settings.QdrantAPIKey,
			Collection: settings.QdrantCollection,
			MetaDir:    dir,
		})
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported index backend: %q", settings.Backend)
	}
}

// ReportStore is a report archive that holds resources until closed.
type ReportStore interface {
	driven.ReportArchive
	Close() error
}

// CreateReportStore creates the report archive selected by settings.
// An empty settings.Dir resolves to <home>/reports for files and
// <home>/data for the SQLite archive.
func CreateReportStore(settings *domain.ReportSettings, home string) (ReportStore, error) {
	if settings == nil {
		return nil, fmt.Errorf("report settings are required")
	}

	switch settings.Backend {
	case "", domain.ReportBackendFile:
		dir := settings.Dir
		if dir == "" {
			dir = filepath.Join(home, ReportsDirName)
		}
		return reportfile.NewWriter(dir), nil

	case domain.ReportBackendSQLite:
		dir := settings.Dir
		if dir == "" {
			dir = filepath.Join(home, DataDirName)
		}
		store, err := sqlite.NewStore(dir)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported report backend: %q", settings.Backend)
	}
}
