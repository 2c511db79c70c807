package services

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/triage/internal/core/domain"
	"github.com/custodia-labs/triage/internal/core/ports/driven"
	"github.com/custodia-labs/triage/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyTransProvider    = "translation.provider"
	keyTransBaseURL     = "translation.base_url"
	keyTransAPIKey      = "translation.api_key"
	keyChunkSize        = "chunking.size"
	keyChunkOverlap     = "chunking.overlap"
	keyTopK             = "retrieval.top_k"
	keyBatchSize        = "retrieval.batch_size"
	keyIndexBackend     = "index.backend"
	keyIndexDir         = "index.dir"
	keyQdrantHost       = "index.qdrant_host"
	keyQdrantPort       = "index.qdrant_port"
	keyQdrantAPIKey     = "index.qdrant_api_key"
	keyQdrantCollection = "index.qdrant_collection"
	keyReportBackend    = "report.backend"
	keyReportDir        = "report.dir"
	keyServerAddr       = "server.addr"
	keyServerCorpusDir  = "server.corpus_dir"
)

// Environment variables consulted when an API key is not in the config file.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	envOpenAIKey    = "OPENAI_API_KEY"
	envAnthropicKey = "ANTHROPIC_API_KEY"
)

// settingSetters parse a string value into one field of AppSettings.
var settingSetters = map[string]func(*domain.AppSettings, string) error{
	keyEmbedProvider:    func(s *domain.AppSettings, v string) error { s.Embedding.Provider = domain.AIProvider(v); return nil },
	keyEmbedModel:       func(s *domain.AppSettings, v string) error { s.Embedding.Model = v; return nil },
	keyEmbedBaseURL:     func(s *domain.AppSettings, v string) error { s.Embedding.BaseURL = v; return nil },
	keyEmbedAPIKey:      func(s *domain.AppSettings, v string) error { s.Embedding.APIKey = v; return nil },
	keyEmbedRPS:         floatSetter(func(s *domain.AppSettings) *float64 { return &s.Embedding.RequestsPerSecond }),
	keyLLMProvider:      func(s *domain.AppSettings, v string) error { s.LLM.Provider = domain.AIProvider(v); return nil },
	keyLLMModel:         func(s *domain.AppSettings, v string) error { s.LLM.Model = v; return nil },
	keyLLMBaseURL:       func(s *domain.AppSettings, v string) error { s.LLM.BaseURL = v; return nil },
	keyLLMAPIKey:        func(s *domain.AppSettings, v string) error { s.LLM.APIKey = v; return nil },
	keyTransProvider:    func(s *domain.AppSettings, v string) error { s.Translation.Provider = domain.TranslationProvider(v); return nil },
	keyTransBaseURL:     func(s *domain.AppSettings, v string) error { s.Translation.BaseURL = v; return nil },
	keyTransAPIKey:      func(s *domain.AppSettings, v string) error { s.Translation.APIKey = v; return nil },
	keyChunkSize:        intSetter(func(s *domain.AppSettings) *int { return &s.Chunking.Size }),
	keyChunkOverlap:     intSetter(func(s *domain.AppSettings) *int { return &s.Chunking.Overlap }),
	keyTopK:             intSetter(func(s *domain.AppSettings) *int { return &s.Retrieval.TopK }),
	keyBatchSize:        intSetter(func(s *domain.AppSettings) *int { return &s.Retrieval.BatchSize }),
	keyIndexBackend:     func(s *domain.AppSettings, v string) error { s.Index.Backend = domain.IndexBackend(v); return nil },
	keyIndexDir:         func(s *domain.AppSettings, v string) error { s.Index.Dir = v; return nil },
	keyQdrantHost:       func(s *domain.AppSettings, v string) error { s.Index.QdrantHost = v; return nil },
	keyQdrantPort:       intSetter(func(s *domain.AppSettings) *int { return &s.Index.QdrantPort }),
	keyQdrantAPIKey:     func(s *domain.AppSettings, v string) error { s.Index.QdrantAPIKey = v; return nil },
	keyQdrantCollection: func(s *domain.AppSettings, v string) error { s.Index.QdrantCollection = v; return nil },
	keyReportBackend:    func(s *domain.AppSettings, v string) error { s.Report.Backend = domain.ReportBackend(v); return nil },
	keyReportDir:        func(s *domain.AppSettings, v string) error { s.Report.Dir = v; return nil },
	keyServerAddr:       func(s *domain.AppSettings, v string) error { s.Server.Addr = v; return nil },
	keyServerCorpusDir:  func(s *domain.AppSettings, v string) error { s.Server.CorpusDir = v; return nil },
}

func intSetter(field func(*domain.AppSettings) *int) func(*domain.AppSettings, string) error {
	return func(s *domain.AppSettings, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidInput, v)
		}
		*field(s) = n
		return nil
	}
}

func floatSetter(field func(*domain.AppSettings) *float64) func(*domain.AppSettings, string) error {
	return func(s *domain.AppSettings, v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, v)
		}
		*field(s) = f
		return nil
	}
}

// SettingKeys returns every key accepted by Set, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	validate    *validator.Validate
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// The aiValidator is optional; without it provider pings are skipped.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// API keys missing from the config file are read from the environment.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Translation: domain.TranslationSettings{
			Provider: domain.TranslationProvider(s.getString(keyTransProvider, string(defaults.Translation.Provider))),
			BaseURL:  s.configStore.GetString(keyTransBaseURL),
			APIKey:   s.configStore.GetString(keyTransAPIKey),
		},
		Chunking: domain.ChunkSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: s.getOptionalInt(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:      s.getInt(keyTopK, defaults.Retrieval.TopK),
			BatchSize: s.getInt(keyBatchSize, defaults.Retrieval.BatchSize),
		},
		Index: domain.IndexSettings{
			Backend:          domain.IndexBackend(s.getString(keyIndexBackend, string(defaults.Index.Backend))),
			Dir:              s.configStore.GetString(keyIndexDir),
			QdrantHost:       s.getString(keyQdrantHost, defaults.Index.QdrantHost),
			QdrantPort:       s.getInt(keyQdrantPort, defaults.Index.QdrantPort),
			QdrantAPIKey:     s.configStore.GetString(keyQdrantAPIKey),
			QdrantCollection: s.getString(keyQdrantCollection, defaults.Index.QdrantCollection),
		},
		Report: domain.ReportSettings{
			Backend: domain.ReportBackend(s.getString(keyReportBackend, string(defaults.Report.Backend))),
			Dir:     s.configStore.GetString(keyReportDir),
		},
		Server: domain.ServerSettings{
			Addr:      s.getString(keyServerAddr, defaults.Server.Addr),
			CorpusDir: s.getString(keyServerCorpusDir, defaults.Server.CorpusDir),
		},
	}

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envAPIKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envAPIKey(settings.LLM.Provider)
	}

	return settings, nil
}

// Save validates and persists application settings.
// Empty API keys are not written, so keys from the environment stay out of the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.validateStruct(settings); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String(), false},
		{keyEmbedModel, settings.Embedding.Model, false},
		{keyEmbedBaseURL, settings.Embedding.BaseURL, false},
		{keyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.APIKey == "" ||
			settings.Embedding.APIKey == s.envAPIKey(settings.Embedding.Provider)},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond, false},
		{keyLLMProvider, settings.LLM.Provider.String(), false},
		{keyLLMModel, settings.LLM.Model, false},
		{keyLLMBaseURL, settings.LLM.BaseURL, false},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey == "" ||
			settings.LLM.APIKey == s.envAPIKey(settings.LLM.Provider)},
		{keyTransProvider, string(settings.Translation.Provider), false},
		{keyTransBaseURL, settings.Translation.BaseURL, false},
		{keyTransAPIKey, settings.Translation.APIKey, settings.Translation.APIKey == ""},
		{keyChunkSize, settings.Chunking.Size, false},
		{keyChunkOverlap, settings.Chunking.Overlap, false},
		{keyTopK, settings.Retrieval.TopK, false},
		{keyBatchSize, settings.Retrieval.BatchSize, false},
		{keyIndexBackend, string(settings.Index.Backend), false},
		{keyIndexDir, settings.Index.Dir, false},
		{keyQdrantHost, settings.Index.QdrantHost, false},
		{keyQdrantPort, settings.Index.QdrantPort, false},
		{keyQdrantAPIKey, settings.Index.QdrantAPIKey, settings.Index.QdrantAPIKey == ""},
		{keyQdrantCollection, settings.Index.QdrantCollection, false},
		{keyReportBackend, string(settings.Report.Backend), false},
		{keyReportDir, settings.Report.Dir, false},
		{keyServerAddr, settings.Server.Addr, false},
		{keyServerCorpusDir, settings.Server.CorpusDir, false},
	}

	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// Set updates a single setting by its dotted key.
func (s *SettingsService) Set(key, value string) error {
	setter, ok := settingSetters[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := setter(settings, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}

	if apiKey == "" {
		apiKey = s.envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("%w: provider %s cannot generate text", domain.ErrInvalidInput, provider)
	}

	if apiKey == "" {
		apiKey = s.envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that current settings are complete and consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := s.validateStruct(settings); err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: llm provider is not configured, run 'triage settings set llm.provider <provider>'",
			domain.ErrInvalidInput)
	}
	if settings.Translation.Provider == domain.TranslationLibre && settings.Translation.BaseURL == "" {
		return fmt.Errorf("%w: translation.base_url is required for libretranslate", domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// validateStruct runs the field rules declared on the settings types.
func (s *SettingsService) validateStruct(settings *domain.AppSettings) error {
	err := s.validate.Struct(settings)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

// envAPIKey returns the API key for provider from the environment.
func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(envOpenAIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(envAnthropicKey)
	default:
		return ""
	}
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a custom base URL for local providers and clears it for cloud ones.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return "http://localhost:11434"
	}
	return current
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getOptionalInt returns a stored zero instead of the default.
func (s *SettingsService) getOptionalInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
