package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderHash is the built-in feature-hashing embedder.
	// It needs no network and is meant for offline demos and tests.
	AIProviderHash AIProvider = "hash"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderHash:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs on the user's machine and needs a base URL.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderHash:
		return "Feature hashing (built-in, offline)"
	default:
		return unknownDescription
	}
}

// AllEmbeddingProviders returns providers that can produce embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderHash, AIProviderOllama, AIProviderOpenAI}
}

// AllLLMProviders returns providers that can generate text.
func AllLLMProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `validate:"omitempty,oneof=ollama openai hash"`

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond throttles embedding calls. Zero disables throttling.
	RequestsPerSecond float64 `validate:"gte=0"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generation provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider `validate:"omitempty,oneof=ollama openai anthropic"`

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHash {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// TranslationProvider identifies the translation backend.
type TranslationProvider string

// Available translation providers.
const (
	// TranslationNone disables translation; only the working language is served.
	TranslationNone TranslationProvider = "none"

	// TranslationLLM translates with the configured generation model.
	TranslationLLM TranslationProvider = "llm"

	// TranslationLibre uses a LibreTranslate-compatible HTTP service.
	TranslationLibre TranslationProvider = "libretranslate"
)

// TranslationSettings holds translation configuration.
type TranslationSettings struct {
	// Provider selects the translation backend.
	Provider TranslationProvider `validate:"oneof=none llm libretranslate"`

	// BaseURL is the LibreTranslate endpoint.
	BaseURL string

	// APIKey is the LibreTranslate API key, if the instance requires one.
	APIKey string
}

// ChunkSettings controls how the corpus is split into passages.
type ChunkSettings struct {
	// Size is the maximum passage length in characters.
	Size int `validate:"gt=0"`

	// Overlap is the number of characters shared by neighbouring passages.
	Overlap int `validate:"gte=0,ltfield=Size"`
}

// RetrievalSettings controls retrieval and embedding throughput.
type RetrievalSettings struct {
	// TopK is the number of passages retrieved per turn.
	TopK int `validate:"gt=0"`

	// BatchSize is the number of passages embedded per request at ingestion.
	BatchSize int `validate:"gt=0"`
}

// IndexBackend identifies where vectors are stored.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendFlat is the exact L2 index persisted to local files.
	IndexBackendFlat IndexBackend = "flat"

	// IndexBackendQdrant keeps vectors in a Qdrant collection.
	IndexBackendQdrant IndexBackend = "qdrant"
)

// IndexSettings holds index persistence configuration.
type IndexSettings struct {
	// Backend selects the vector store.
	Backend IndexBackend `validate:"oneof=flat qdrant"`

	// Dir holds the persisted artifacts. Empty means ~/.triage/index.
	Dir string

	// QdrantHost is the Qdrant gRPC host.
	QdrantHost string

	// QdrantPort is the Qdrant gRPC port.
	QdrantPort int `validate:"gte=0,lte=65535"`

	// QdrantAPIKey authenticates against Qdrant Cloud.
	QdrantAPIKey string

	// QdrantCollection is the collection holding passage vectors.
	QdrantCollection string
}

// ReportBackend identifies where physician reports are written.
type ReportBackend string

// Available report backends.
const (
	// ReportBackendFile writes one text file per report.
	ReportBackendFile ReportBackend = "file"

	// ReportBackendSQLite archives reports in a SQLite database.
	ReportBackendSQLite ReportBackend = "sqlite"
)

// ReportSettings holds report writer configuration.
type ReportSettings struct {
	// Backend selects the report writer.
	Backend ReportBackend `validate:"oneof=file sqlite"`

	// Dir holds written reports. Empty means ~/.triage/reports.
	Dir string
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string `validate:"required"`

	// CorpusDir is the folder ingested by the administrative endpoint.
	CorpusDir string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	Translation TranslationSettings
	Chunking    ChunkSettings
	Retrieval   RetrievalSettings
	Index       IndexSettings
	Report      ReportSettings
	Server      ServerSettings
}

// Default values for the engine.
const (
	DefaultChunkSize    = 700
	DefaultChunkOverlap = 100
	DefaultTopK         = 4
	DefaultBatchSize    = 32
)

// DefaultAppSettings returns settings with sensible defaults.
// The embedding defaults to the offline hash embedder; generation is left
// unconfigured and must be set before the engine can answer.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderHash,
			Model:    "hash-384",
		},
		LLM: LLMSettings{},
		Translation: TranslationSettings{
			Provider: TranslationNone,
		},
		Chunking: ChunkSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK:      DefaultTopK,
			BatchSize: DefaultBatchSize,
		},
		Index: IndexSettings{
			Backend:          IndexBackendFlat,
			QdrantHost:       "localhost",
			QdrantPort:       6334,
			QdrantCollection: "triage_passages",
		},
		Report: ReportSettings{
			Backend: ReportBackendFile,
		},
		Server: ServerSettings{
			Addr:      ":8000",
			CorpusDir: "data",
		},
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderHash:   "hash-384",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Built-in
		"hash-384": 384,
	}
}
