package embedders

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/finbot-ai/finbot/pkg/config"
)

// OpenAIEmbedder computes embeddings via an OpenAI-compatible API.
// Works with api.openai.com as well as self-hosted compatible endpoints.
type OpenAIEmbedder struct {
	config *config.EmbedderConfig
	client *openai.Client
}

// NewOpenAIEmbedder creates an embedder from config.
func NewOpenAIEmbedder(cfg *config.EmbedderConfig) (*OpenAIEmbedder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai embedder requires an API key")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Host != "" {
		clientCfg.BaseURL = cfg.Host
	}

	return &OpenAIEmbedder{
		config: cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          openai.EmbeddingModel(e.config.Model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, wrapOpenAIError(err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("received empty embedding response")
	}

	return resp.Data[0].Embedding, nil
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.config.Dimension
}

func (e *OpenAIEmbedder) GetModelName() string {
	return e.config.Model
}

func (e *OpenAIEmbedder) Close() error {
	return nil
}

func wrapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: API error %d: %s", ErrUnavailable, apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: API error %d: %s", ErrUnavailable, reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

var _ Embedder = (*OpenAIEmbedder)(nil)
