package factory

import (
	"context"
	"fmt"

	"insightrag-be/pkg/embedding"
	"insightrag-be/pkg/embedding/jina"
	"insightrag-be/pkg/embedding/openai"
)

type Config struct {
	Provider string // "hash", "ollama", "openai", "jina", "gemini"
	Model    string
	BaseURL  string
	APIKey   string
}

func NewEmbeddingProvider(ctx context.Context, cfg Config) (embedding.EmbeddingProvider, error) {
	switch cfg.Provider {
	case "", "hash":
		return embedding.NewHashProvider(0), nil
	case "ollama":
		return embedding.NewOllamaProvider(cfg.BaseURL, cfg.Model), nil
	case "openai":
		return openai.NewProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case "jina":
		return jina.NewJinaProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "gemini":
		return embedding.NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
