package factory

import (
	"context"
	"fmt"

	"insightrag-be/pkg/llm"
	"insightrag-be/pkg/llm/gemini"
	"insightrag-be/pkg/llm/huggingface"
	"insightrag-be/pkg/llm/ollama"
)

type Config struct {
	Provider string // "huggingface", "huggingface-chat", "ollama", "gemini"
	Model    string
	BaseURL  string
	APIKey   string
}

func NewLLMProvider(ctx context.Context, cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "huggingface", "":
		return huggingface.NewInferenceProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "huggingface-chat":
		if cfg.Model == "" {
			return nil, fmt.Errorf("huggingface-chat requires a model name")
		}
		return huggingface.NewHuggingFaceProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "ollama":
		if cfg.Model == "" {
			cfg.Model = "llama3"
		}
		return ollama.NewOllamaProvider(cfg.BaseURL, cfg.Model), nil
	case "gemini":
		return gemini.NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
