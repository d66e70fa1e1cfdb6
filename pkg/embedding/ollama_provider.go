package embedding

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "nomic-embed-text"
)

// nomic-embed-text is trained with these task prefixes.
var ollamaTaskPrefix = map[string]string{
	TaskRetrievalQuery:    "search_query: ",
	TaskRetrievalDocument: "search_document: ",
}

// OllamaProvider embeds text with a model served by a local ollama daemon.
type OllamaProvider struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

var _ EmbeddingProvider = (*OllamaProvider)(nil)

func NewOllamaProvider(baseURL string, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (p *OllamaProvider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	var out ollamaEmbeddingResponse
	req := ollamaEmbeddingRequest{Model: p.Model, Prompt: ollamaTaskPrefix[taskType] + text}
	if err := PostJSON(ctx, p.Client, p.BaseURL+"/api/embeddings", "", req, &out); err != nil {
		return nil, err
	}
	if len(out.Embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return unitLength(out.Embedding), nil
}

func (p *OllamaProvider) ModelName() string {
	return p.Model
}

// unitLength narrows to float32 and scales to unit length, so L2 distance
// orders results the same way cosine similarity would.
func unitLength(vec []float64) []float32 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		norm = 1
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}
