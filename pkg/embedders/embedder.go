// Package embedders provides text embedding providers.
//
// An embedder turns text into a fixed-length vector. It is the single
// external-service call in the retrieval path and is treated as a fallible
// synchronous dependency: transient failures are retried with bounded
// backoff and then surfaced as ErrUnavailable.
package embedders

import (
	"context"
	"errors"
	"fmt"

	"github.com/finbot-ai/finbot/pkg/config"
)

// ErrUnavailable reports a transient failure of the embedding service.
var ErrUnavailable = errors.New("embedding service unavailable")

// Embedder computes fixed-length embedding vectors for text.
type Embedder interface {
	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the expected vector length.
	Dimension() int

	// GetModelName returns the configured model identifier.
	GetModelName() string

	// Close releases resources held by the embedder.
	Close() error
}

// NewFromConfig creates an embedder for the configured provider type.
func NewFromConfig(cfg *config.EmbedderConfig) (Embedder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("embedder config is required")
	}

	switch cfg.Provider {
	case "ollama":
		return NewOllamaEmbedder(cfg)
	case "openai":
		return NewOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unknown embedder provider %q", cfg.Provider)
	}
}
