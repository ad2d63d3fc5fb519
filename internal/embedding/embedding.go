package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"pdf-rag/internal/config"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder maps texts to fixed-dimension, L2-normalized vectors. Batch
// embedding preserves input order and length; identical input under an
// identical model configuration yields identical vectors within a process
// lifetime.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// LCEmbedder adapts a langchaingo embedder to the Embedder contract,
// normalizing every returned vector.
type LCEmbedder struct {
	impl *embeddings.EmbedderImpl
}

// NewOpenAIEmbedder builds an embedder against an OpenAI-compatible
// endpoint (OpenRouter included).
func NewOpenAIEmbedder(cfg *config.LLMConfig) (*LCEmbedder, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("embedding: init openai llm: %w", err)
	}
	impl, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("embedding: create embedder: %w", err)
	}
	return &LCEmbedder{impl: impl}, nil
}

// NewOllamaEmbedder builds an embedder against a local Ollama server.
func NewOllamaEmbedder(cfg *config.LLMConfig) (*LCEmbedder, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("embedding: init ollama llm: %w", err)
	}
	impl, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("embedding: create embedder: %w", err)
	}
	return &LCEmbedder{impl: impl}, nil
}

func (e *LCEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs, err := e.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding: embed batch: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedding: batch size mismatch: %d texts, %d vectors", len(texts), len(vecs))
	}
	for i := range vecs {
		vecs[i] = Normalize(vecs[i])
	}
	return vecs, nil
}

func (e *LCEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.impl.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding: embed query: %w", err)
	}
	return Normalize(vec), nil
}

// FromConfig picks the embedder implementation for the configured provider.
// An empty provider falls back to the local hashing embedder so the pipeline
// works without any model server.
func FromConfig(cfg *config.LLMConfig) (Embedder, error) {
	switch cfg.Provider {
	case "openai", "openrouter":
		return NewOpenAIEmbedder(cfg)
	case "ollama":
		return NewOllamaEmbedder(cfg)
	case "", "local":
		log.Debug().Int("dimension", cfg.Dimension).Msg("Using local hashing embedder")
		return NewHashingEmbedder(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("embedding: unknown provider %q", cfg.Provider)
	}
}
