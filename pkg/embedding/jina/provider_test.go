package jina

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"insightrag-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJinaProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "retrieval.query", req.Task)
		assert.Equal(t, []string{"hello"}, req.Input)

		_, _ = w.Write([]byte(`{"data":[{"object":"embedding","index":0,"embedding":[0.1,0.2]}]}`))
	}))
	defer srv.Close()

	p := NewJinaProvider("secret", srv.URL, "")
	vec, err := p.Generate(context.Background(), "hello", embedding.TaskRetrievalQuery)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, vec)
	assert.Equal(t, "jina-embeddings-v3", p.ModelName())
}

func TestJinaProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusTooManyRequests, `{"detail":"slow down"}`},
		{"api error", http.StatusOK, `{"error":{"message":"bad model"}}`},
		{"empty data", http.StatusOK, `{"data":[]}`},
		{"malformed", http.StatusOK, `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewJinaProvider("k", srv.URL, "m").Generate(context.Background(), "x", "")
			assert.Error(t, err)
		})
	}
}
