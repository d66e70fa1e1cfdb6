package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingProvider(t *testing.T) {
	tests := []struct {
		provider string
		model    string
	}{
		{"", "hash"},
		{"hash", "hash"},
		{"ollama", "nomic-embed-text"},
		{"jina", "jina-embeddings-v3"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewEmbeddingProvider(context.Background(), Config{Provider: tt.provider})
			require.NoError(t, err)
			assert.Equal(t, tt.model, p.ModelName())
		})
	}
}

func TestNewEmbeddingProvider_Errors(t *testing.T) {
	_, err := NewEmbeddingProvider(context.Background(), Config{Provider: "word2vec"})
	assert.Error(t, err)

	_, err = NewEmbeddingProvider(context.Background(), Config{Provider: "gemini"})
	assert.Error(t, err, "gemini requires an api key")
}
