package embedding

import (
	"context"
	"errors"
)

// Task types let providers that distinguish documents from queries embed each side correctly.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

var ErrEmptyEmbedding = errors.New("provider returned an empty embedding")

// EmbeddingProvider defines the interface for generating text embeddings.
// Every vector returned by one provider has the same length.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
	ModelName() string
}
