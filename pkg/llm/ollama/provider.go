package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"insightrag-be/pkg/llm"
)

const defaultBaseURL = "http://localhost:11434"

// OllamaProvider talks to a local ollama daemon. Generate uses the raw
// completion route so the prompt reaches the model without a chat template.
type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &OllamaProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		ModelName: modelName,
		Client:    &http.Client{Timeout: 120 * time.Second},
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options *ollamaOptions `json:"options,omitempty"`
}

// ollamaReply covers both routes: chat fills Message, generate fills Response.
type ollamaReply struct {
	Message  ollamaMessage `json:"message"`
	Response string        `json:"response"`
	Error    string        `json:"error,omitempty"`
}

func (o *OllamaProvider) options(opts []llm.Option) (string, *ollamaOptions) {
	applied := llm.Apply(llm.Options{Model: o.ModelName, Temperature: 0.7}, opts...)
	return applied.Model, &ollamaOptions{
		Temperature: applied.Temperature,
		NumPredict:  applied.MaxTokens,
	}
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	model, params := o.options(opts)

	msgs := make([]ollamaMessage, 0, len(history))
	for _, m := range history {
		role := m.Role
		if role == "model" {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, ollamaMessage{Role: role, Content: m.Content})
	}

	var reply ollamaReply
	err := o.post(ctx, "/api/chat", ollamaChatRequest{
		Model:    model,
		Messages: msgs,
		Options:  params,
	}, &reply)
	if err != nil {
		return "", err
	}
	return reply.Message.Content, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	model, params := o.options(opts)

	var reply ollamaReply
	err := o.post(ctx, "/api/generate", ollamaGenerateRequest{
		Model:   model,
		Prompt:  prompt,
		Options: params,
	}, &reply)
	if err != nil {
		return "", err
	}
	return reply.Response, nil
}

func (o *OllamaProvider) post(ctx context.Context, path string, payload any, out *ollamaReply) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ollama: encode %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ollama: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("ollama: decode %s: %w", path, err)
	}
	if out.Error != "" {
		return fmt.Errorf("ollama: %s", out.Error)
	}
	return nil
}
