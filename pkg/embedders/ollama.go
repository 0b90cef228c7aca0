package embedders

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/finbot-ai/finbot/pkg/config"
	"github.com/finbot-ai/finbot/pkg/ollama"
)

// Serializes Ollama embedding requests. Ollama's llama runner can crash when
// it receives concurrent embedding requests.
var ollamaEmbedMu sync.Mutex

// OllamaEmbedder computes embeddings via the Ollama /api/embeddings endpoint.
type OllamaEmbedder struct {
	config *config.EmbedderConfig
	client *ollama.Client
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllamaEmbedder creates an embedder from config.
func NewOllamaEmbedder(cfg *config.EmbedderConfig) (*OllamaEmbedder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	return &OllamaEmbedder{
		config: cfg,
		client: ollama.NewClient(cfg.Host, time.Duration(cfg.Timeout)*time.Second, cfg.MaxRetries),
	}, nil
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ollamaEmbedMu.Lock()
	defer ollamaEmbedMu.Unlock()

	slog.Debug("Ollama embedding request", "model", e.config.Model, "text_length", len(text))

	request := ollamaEmbedRequest{
		Model:  e.config.Model,
		Prompt: text,
	}

	resp, err := e.client.Post(ctx, "/api/embeddings", request)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: API returned status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var response ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}

	if len(response.Embedding) == 0 {
		return nil, fmt.Errorf("received empty embedding from Ollama")
	}

	return response.Embedding, nil
}

func (e *OllamaEmbedder) Dimension() int {
	return e.config.Dimension
}

func (e *OllamaEmbedder) GetModelName() string {
	return e.config.Model
}

func (e *OllamaEmbedder) Close() error {
	return nil
}

var _ Embedder = (*OllamaEmbedder)(nil)
