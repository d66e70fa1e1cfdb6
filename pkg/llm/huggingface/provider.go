package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"insightrag-be/pkg/llm"
)

const defaultRouterURL = "https://router.huggingface.co/v1"

// HuggingFaceProvider targets the OpenAI compatible chat completions route of the HF router.
type HuggingFaceProvider struct {
	endpoint
	baseURL string
	model   string
}

var _ llm.LLMProvider = (*HuggingFaceProvider)(nil)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatChoice struct {
	Message llm.Message `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewHuggingFaceProvider(apiKey, baseURL, model string) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = defaultRouterURL
	}
	return &HuggingFaceProvider{
		endpoint: newEndpoint(apiKey),
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
	}
}

func (p *HuggingFaceProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{Model: p.model, MaxTokens: 500}, options...)

	raw, err := p.post(ctx, p.baseURL+"/chat/completions", chatRequest{
		Model:       opts.Model,
		Messages:    history,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", err
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("huggingface: decode chat reply: %w", err)
	}
	switch {
	case out.Error != nil:
		return "", fmt.Errorf("huggingface: %s", out.Error.Message)
	case len(out.Choices) == 0:
		return "", errors.New("huggingface: reply has no choices")
	}
	return out.Choices[0].Message.Content, nil
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, llm.UserPrompt(prompt), options...)
}
