package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"insightrag-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProvider_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "llama3", req.Model)
		assert.Equal(t, 64, req.Options.NumPredict)
		assert.InDelta(t, 0.2, req.Options.Temperature, 1e-9)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "assistant", req.Messages[1].Role)

		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"hello"},"done":true}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: "user", Content: "hi"},
		{Role: "model", Content: "hey"},
	}, llm.WithMaxTokens(64), llm.WithTemperature(0.2))
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestOllamaProvider_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"out of memory"}`))
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "llama3").Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "status 500")
}

func TestOllamaProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Context: x\nQuestion: y", req.Prompt)
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)

		_, _ = w.Write([]byte(`{"model":"llama3","response":"z","done":true}`))
	}))
	defer srv.Close()

	out, err := NewOllamaProvider(srv.URL+"/", "llama3").Generate(context.Background(), "Context: x\nQuestion: y")
	require.NoError(t, err)
	assert.Equal(t, "z", out)
}

func TestOllamaProvider_ErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	assert.ErrorContains(t, err, "model not found")
}
