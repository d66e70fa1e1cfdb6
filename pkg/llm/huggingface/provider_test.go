package huggingface

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

func TestInferenceProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/google/flan-t5-large", r.URL.Path)
		assert.Equal(t, "Bearer hf_token", r.Header.Get("Authorization"))

		var req inferenceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "What is Go?", req.Inputs)
		assert.Equal(t, 300, req.Parameters.MaxNewTokens)
		assert.InDelta(t, 0.7, req.Parameters.Temperature, 1e-9)

		_, _ = w.Write([]byte(`[{"generated_text":"A programming language."}]`))
	}))
	defer srv.Close()

	p := NewInferenceProvider("hf_token", srv.URL, "")
	out, err := p.Generate(context.Background(), "What is Go?")
	require.NoError(t, err)
	assert.Equal(t, "A programming language.", out)
}

func TestInferenceProvider_Options(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/other/model", r.URL.Path)
		var req inferenceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 12, req.Parameters.MaxNewTokens)
		_, _ = w.Write([]byte(`{"generated_text":"ok"}`))
	}))
	defer srv.Close()

	out, err := NewInferenceProvider("", srv.URL+"/", "").Generate(
		context.Background(), "x", llm.WithMaxTokens(12), llm.WithModel("other/model"))
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestParseInferenceBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"list", `[{"generated_text":"hi"}]`, "hi", false},
		{"empty text", `[{"generated_text":""}]`, "", false},
		{"object", `{"generated_text":"hi"}`, "hi", false},
		{"api error", `{"error":"Model is loading"}`, "", true},
		{"empty list", `[]`, "", true},
		{"missing field", `[{"text":"hi"}]`, "", true},
		{"malformed", `[{`, "", true},
		{"blank", ``, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseInferenceBody([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInferenceProvider_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewInferenceProvider("", srv.URL, "m").Generate(context.Background(), "x")
	assert.ErrorContains(t, err, "status 429")
}

func TestHuggingFaceProvider_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "meta-llama/Llama-3.1-8B-Instruct", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"pong"}}]}`))
	}))
	defer srv.Close()

	p := NewHuggingFaceProvider("k", srv.URL, "meta-llama/Llama-3.1-8B-Instruct")
	out, err := p.Generate(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", out)
}

func TestHuggingFaceProvider_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewHuggingFaceProvider("k", srv.URL, "m").Generate(context.Background(), "ping")
	assert.Error(t, err)
}
