package jina

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"insightrag-be/pkg/embedding"
)

const (
	defaultBaseURL = "https://api.jina.ai/v1/embeddings"
	defaultModel   = "jina-embeddings-v3"
)

// jina-embeddings-v3 uses task adapters named after the retrieval side.
var tasks = map[string]string{
	embedding.TaskRetrievalQuery:    "retrieval.query",
	embedding.TaskRetrievalDocument: "retrieval.passage",
}

type JinaProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ embedding.EmbeddingProvider = (*JinaProvider)(nil)

type embeddingRequest struct {
	Model string   `json:"model"`
	Task  string   `json:"task,omitempty"`
	Input []string `json:"input"`
}

type embeddingItem struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embeddingResponse struct {
	Data  []embeddingItem `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewJinaProvider(apiKey, baseURL, model string) *JinaProvider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &JinaProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: time.Minute},
	}
}

func (p *JinaProvider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	var out embeddingResponse
	req := embeddingRequest{Model: p.model, Task: tasks[taskType], Input: []string{text}}
	if err := embedding.PostJSON(ctx, p.client, p.baseURL, p.apiKey, req, &out); err != nil {
		return nil, fmt.Errorf("jina: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("jina: %s", out.Error.Message)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, embedding.ErrEmptyEmbedding
	}
	return out.Data[0].Embedding, nil
}

func (p *JinaProvider) ModelName() string {
	return p.model
}
