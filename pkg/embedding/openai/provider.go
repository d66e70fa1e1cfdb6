package openai

import (
	"context"
	"fmt"

	"insightrag-be/pkg/embedding"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider embeds text through any OpenAI-compatible embeddings endpoint
// (OpenAI, vLLM, LM Studio, llama.cpp server).
type Provider struct {
	embedder embeddings.Embedder
	model    string
}

var _ embedding.EmbeddingProvider = (*Provider)(nil)

func NewProvider(baseURL, token, model string) (*Provider, error) {
	if model == "" {
		model = "text-embedding-3-small"
	}
	// local OpenAI-compatible servers accept any token
	if token == "" {
		token = "none"
	}

	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	return &Provider{embedder: embedder, model: model}, nil
}

func (p *Provider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	var (
		vec []float32
		err error
	)
	if taskType == embedding.TaskRetrievalQuery {
		vec, err = p.embedder.EmbedQuery(ctx, text)
	} else {
		var vecs [][]float32
		vecs, err = p.embedder.EmbedDocuments(ctx, []string{text})
		if err == nil && len(vecs) > 0 {
			vec = vecs[0]
		}
	}
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}
	if len(vec) == 0 {
		return nil, embedding.ErrEmptyEmbedding
	}
	return vec, nil
}

func (p *Provider) ModelName() string {
	return p.model
}
