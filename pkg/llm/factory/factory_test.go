package factory

import (
	"context"
	"testing"

	"insightrag-be/pkg/llm/huggingface"
	"insightrag-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	ctx := context.Background()

	p, err := NewLLMProvider(ctx, Config{Provider: "huggingface"})
	require.NoError(t, err)
	assert.IsType(t, &huggingface.InferenceProvider{}, p)

	p, err = NewLLMProvider(ctx, Config{Provider: "huggingface-chat", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &huggingface.HuggingFaceProvider{}, p)

	p, err = NewLLMProvider(ctx, Config{Provider: "ollama"})
	require.NoError(t, err)
	require.IsType(t, &ollama.OllamaProvider{}, p)
	assert.Equal(t, "llama3", p.(*ollama.OllamaProvider).ModelName)
}

func TestNewLLMProvider_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewLLMProvider(ctx, Config{Provider: "gpt-j"})
	assert.Error(t, err)

	_, err = NewLLMProvider(ctx, Config{Provider: "huggingface-chat"})
	assert.Error(t, err)

	_, err = NewLLMProvider(ctx, Config{Provider: "gemini"})
	assert.Error(t, err)
}
