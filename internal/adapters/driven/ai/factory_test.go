package ai

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hashembed "github.com/custodia-labs/triage/internal/adapters/driven/embedding/hash"
	ollamaembed "github.com/custodia-labs/triage/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/triage/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/triage/internal/adapters/driven/index/flat"
	anthropicllm "github.com/custodia-labs/triage/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/triage/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/triage/internal/adapters/driven/llm/openai"
	reportfile "github.com/custodia-labs/triage/internal/adapters/driven/report/file"
	"github.com/custodia-labs/triage/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/triage/internal/adapters/driven/translation"
	"github.com/custodia-labs/triage/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantErr     bool
		errContains string
	}{
		{
			name:        "nil settings returns error",
			settings:    nil,
			wantErr:     true,
			errContains: "embedding settings are required",
		},
		{
			name: "hash provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderHash,
				Model:    "hash-384",
			},
		},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
		},
		{
			name: "openai without key returns error",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
			},
			wantErr:     true,
			errContains: "API key is required",
		},
		{
			name: "anthropic provider returns error",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
			},
			wantErr:     true,
			errContains: "anthropic does not support embeddings",
		},
		{
			name: "unknown provider returns error",
			settings: &domain.EmbeddingSettings{
				Provider: "unknown",
			},
			wantErr:     true,
			errContains: "unsupported embedding provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, svc)
			assert.NoError(t, svc.Close())
		})
	}
}

func TestCreateEmbeddingService_HashDimensions(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{"hash-384", 384},
		{"hash-64", 64},
		{"", hashembed.DefaultDimensions},
		{"something-else", hashembed.DefaultDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{
				Provider: domain.AIProviderHash,
				Model:    tt.model,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, svc.Dimensions())
			assert.Equal(t, hashembed.ModelNameFor(tt.want), svc.ModelName())
		})
	}
}

func TestCreateEmbeddingService_RateLimited(t *testing.T) {
	settings := &domain.EmbeddingSettings{
		Provider:          domain.AIProviderHash,
		Model:             "hash-384",
		RequestsPerSecond: 5,
	}

	svc, err := CreateEmbeddingService(settings)
	require.NoError(t, err)
	assert.IsType(t, &ratelimit.EmbeddingService{}, svc)

	settings.RequestsPerSecond = 0
	svc, err = CreateEmbeddingService(settings)
	require.NoError(t, err)
	assert.IsType(t, &hashembed.EmbeddingService{}, svc)
}

func TestCreateOllamaEmbedding_KnownModelDimensions(t *testing.T) {
	svc := createOllamaEmbedding(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
	})

	require.IsType(t, &ollamaembed.EmbeddingService{}, svc)
	assert.Equal(t, 768, svc.Dimensions())
	assert.Equal(t, "nomic-embed-text", svc.ModelName())
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantType any
		wantNil  bool
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "unconfigured settings returns nil",
			settings: &domain.LLMSettings{},
			wantNil:  true,
		},
		{
			name: "cloud provider without key returns nil",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOpenAI,
			},
			wantNil: true,
		},
		{
			name: "hash is not an llm provider",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderHash,
			},
			wantNil: true,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "llama3.2",
			},
			wantType: &ollamallm.LLMService{},
		},
		{
			name: "openai provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "gpt-4o-mini",
			},
			wantType: &openaillm.LLMService{},
		},
		{
			name: "anthropic provider creates service",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
			},
			wantType: &anthropicllm.LLMService{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.IsType(t, tt.wantType, svc)
		})
	}
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	t.Run("hash needs no network", func(t *testing.T) {
		svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
			Provider: domain.AIProviderHash,
			Model:    "hash-384",
		})
		require.NoError(t, err)
		assert.Equal(t, 384, svc.Dimensions())
	})

	t.Run("unconfigured is unavailable", func(t *testing.T) {
		_, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("unreachable is unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  server.URL,
			Model:    "all-minilm",
		})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.Contains(t, err.Error(), "service unreachable")
	})
}

func TestCreateAndValidateLLMService(t *testing.T) {
	t.Run("unconfigured returns nil", func(t *testing.T) {
		svc, err := CreateAndValidateLLMService(&domain.LLMSettings{})
		require.NoError(t, err)
		assert.Nil(t, svc)
	})

	t.Run("reachable ollama", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"models":[]}`))
		}))
		defer server.Close()

		svc, err := CreateAndValidateLLMService(&domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  server.URL,
			Model:    "llama3.2",
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		assert.NoError(t, svc.Close())
	})

	t.Run("unreachable is unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := CreateAndValidateLLMService(&domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  server.URL,
		})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}

func TestValidateConfig_NotConfigured(t *testing.T) {
	assert.NoError(t, ValidateEmbeddingConfig(nil))
	assert.NoError(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{}))
	assert.NoError(t, ValidateLLMConfig(nil))
	assert.NoError(t, ValidateLLMConfig(&domain.LLMSettings{}))
}

func TestCreateTranslator(t *testing.T) {
	llm := ollamallm.NewLLMService(ollamallm.LLMConfig{})

	t.Run("nil and none disable translation", func(t *testing.T) {
		tr, err := CreateTranslator(nil, nil, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, tr)

		tr, err = CreateTranslator(&domain.TranslationSettings{Provider: domain.TranslationNone}, llm, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, tr)
	})

	t.Run("llm provider", func(t *testing.T) {
		tr, err := CreateTranslator(&domain.TranslationSettings{Provider: domain.TranslationLLM}, llm, nil, nil)
		require.NoError(t, err)
		assert.IsType(t, &translation.Registry{}, tr)
	})

	t.Run("llm provider without llm", func(t *testing.T) {
		_, err := CreateTranslator(&domain.TranslationSettings{Provider: domain.TranslationLLM}, nil, nil, nil)
		assert.ErrorIs(t, err, domain.ErrTranslationUnavailable)
	})

	t.Run("libretranslate provider", func(t *testing.T) {
		tr, err := CreateTranslator(&domain.TranslationSettings{
			Provider: domain.TranslationLibre,
			BaseURL:  "http://localhost:5000",
		}, nil, nil, nil)
		require.NoError(t, err)
		assert.IsType(t, &translation.Registry{}, tr)
	})

	t.Run("libretranslate without url", func(t *testing.T) {
		_, err := CreateTranslator(&domain.TranslationSettings{Provider: domain.TranslationLibre}, nil, nil, nil)
		assert.Error(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := CreateTranslator(&domain.TranslationSettings{Provider: "babel"}, nil, nil, nil)
		assert.ErrorContains(t, err, "unsupported translation provider")
	})
}

func TestCreateIndexStore(t *testing.T) {
	home := t.TempDir()

	t.Run("flat defaults to home index dir", func(t *testing.T) {
		store, err := CreateIndexStore(&domain.IndexSettings{Backend: domain.IndexBackendFlat}, home)
		require.NoError(t, err)
		require.IsType(t, &flat.Store{}, store)
		assert.Equal(t, filepath.Join(home, IndexDirName), store.(*flat.Store).Dir())
	})

	t.Run("explicit dir", func(t *testing.T) {
		dir := filepath.Join(home, "elsewhere")
		store, err := CreateIndexStore(&domain.IndexSettings{Dir: dir}, home)
		require.NoError(t, err)
		assert.Equal(t, dir, store.(*flat.Store).Dir())
	})

	t.Run("errors", func(t *testing.T) {
		_, err := CreateIndexStore(nil, home)
		assert.Error(t, err)

		_, err = CreateIndexStore(&domain.IndexSettings{Backend: "faiss"}, home)
		assert.ErrorContains(t, err, "unsupported index backend")
	})
}

func TestCreateReportStore(t *testing.T) {
	home := t.TempDir()

	t.Run("file", func(t *testing.T) {
		store, err := CreateReportStore(&domain.ReportSettings{Backend: domain.ReportBackendFile}, home)
		require.NoError(t, err)
		require.IsType(t, &reportfile.Writer{}, store)
		assert.Equal(t, filepath.Join(home, ReportsDirName), store.(*reportfile.Writer).Dir())
		assert.NoError(t, store.Close())
	})

	t.Run("sqlite", func(t *testing.T) {
		store, err := CreateReportStore(&domain.ReportSettings{Backend: domain.ReportBackendSQLite}, home)
		require.NoError(t, err)
		require.IsType(t, &sqlite.Store{}, store)
		assert.Equal(t, filepath.Join(home, DataDirName, sqlite.DatabaseFile), store.(*sqlite.Store).Path())
		assert.NoError(t, store.Close())
	})

	t.Run("errors", func(t *testing.T) {
		_, err := CreateReportStore(nil, home)
		assert.Error(t, err)

		_, err = CreateReportStore(&domain.ReportSettings{Backend: "pdf"}, home)
		assert.ErrorContains(t, err, "unsupported report backend")
	})
}
