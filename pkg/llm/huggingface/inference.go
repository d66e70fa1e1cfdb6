package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"insightrag-be/pkg/llm"
)

const (
	defaultInferenceURL   = "https://router.huggingface.co/hf-inference/models"
	defaultInferenceModel = "google/flan-t5-large"
)

var errNoGeneratedText = errors.New("huggingface: reply has no generated_text")

// InferenceProvider calls the text-generation task of the HF inference API,
// which serves seq2seq models such as flan-t5 that have no chat template.
type InferenceProvider struct {
	endpoint
	baseURL string
	model   string
}

var _ llm.LLMProvider = (*InferenceProvider)(nil)

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generation struct {
	GeneratedText *string `json:"generated_text"`
	Error         string  `json:"error"`
}

func (g generation) text() (string, error) {
	if g.Error != "" {
		return "", fmt.Errorf("huggingface: %s", g.Error)
	}
	if g.GeneratedText == nil {
		return "", errNoGeneratedText
	}
	return *g.GeneratedText, nil
}

func NewInferenceProvider(apiKey, baseURL, model string) *InferenceProvider {
	if baseURL == "" {
		baseURL = defaultInferenceURL
	}
	if model == "" {
		model = defaultInferenceModel
	}
	return &InferenceProvider{
		endpoint: newEndpoint(apiKey),
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
	}
}

func (p *InferenceProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{Model: p.model, MaxTokens: 300, Temperature: 0.7}, options...)

	raw, err := p.post(ctx, p.baseURL+"/"+opts.Model, inferenceRequest{
		Inputs: prompt,
		Parameters: inferenceParameters{
			MaxNewTokens: opts.MaxTokens,
			Temperature:  opts.Temperature,
		},
	})
	if err != nil {
		return "", err
	}
	return parseInferenceBody(raw)
}

// Chat flattens the history into "role: content" lines.
func (p *InferenceProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, m.Role+": "+m.Content)
	}
	return p.Generate(ctx, strings.Join(lines, "\n")+"\n", options...)
}

// parseInferenceBody accepts both the list and the single object reply shapes.
func parseInferenceBody(body []byte) (string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return "", errors.New("huggingface: empty reply")
	}

	if body[0] != '[' {
		var single generation
		if err := json.Unmarshal(body, &single); err != nil {
			return "", fmt.Errorf("huggingface: decode reply: %w", err)
		}
		return single.text()
	}

	var list []generation
	if err := json.Unmarshal(body, &list); err != nil {
		return "", fmt.Errorf("huggingface: decode reply: %w", err)
	}
	if len(list) == 0 {
		return "", errNoGeneratedText
	}
	return list[0].text()
}
