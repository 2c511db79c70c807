package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/triage/internal/core/domain"
)

// Ensure LibreLoader implements the interface.
var _ Loader = (*LibreLoader)(nil)

// DefaultLibreTimeout bounds each LibreTranslate request.
const DefaultLibreTimeout = 30 * time.Second

// LibreConfig holds connection settings for a LibreTranslate server.
type LibreConfig struct {
	// BaseURL is the server URL, e.g. http://localhost:5000 (required).
	BaseURL string

	// APIKey is sent with each request when set.
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// LibreLoader discovers supported pairs from a LibreTranslate server.
type LibreLoader struct {
	client  *http.Client
	baseURL string
	apiKey  string

	mu        sync.Mutex
	languages []libreLanguage
}

type libreLanguage struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Targets []string `json:"targets"`
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

// NewLibreLoader creates a loader for the server at cfg.BaseURL.
func NewLibreLoader(cfg LibreConfig) (*LibreLoader, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("libretranslate: base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLibreTimeout
	}
	return &LibreLoader{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}, nil
}

// Load returns a translator if the server lists tgt as a target of src.
func (l *LibreLoader) Load(ctx context.Context, src, tgt string) (PairTranslator, error) {
	languages, err := l.supported(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTranslationUnavailable, err)
	}

	for _, lang := range languages {
		if lang.Code == src && (len(lang.Targets) == 0 || slices.Contains(lang.Targets, tgt)) {
			return &librePair{loader: l, src: src, tgt: tgt}, nil
		}
	}
	return nil, fmt.Errorf("%w: libretranslate does not support %s to %s", domain.ErrTranslationUnavailable, src, tgt)
}

// supported fetches /languages once. Failures are not cached.
func (l *LibreLoader) supported(ctx context.Context) ([]libreLanguage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.languages != nil {
		return l.languages, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/languages", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var languages []libreLanguage
	if err := l.do(req, &languages); err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	l.languages = languages
	return languages, nil
}

func (l *LibreLoader) do(req *http.Request, out any) error {
	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("libretranslate error (status %d): %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type librePair struct {
	loader   *LibreLoader
	src, tgt string
}

func (p *librePair) Translate(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(libreRequest{
		Q:      text,
		Source: p.src,
		Target: p.tgt,
		Format: "text",
		APIKey: p.loader.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.loader.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out libreResponse
	if err := p.loader.do(req, &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("libretranslate error: %s", out.Error)
	}
	return out.TranslatedText, nil
}
