package retrieval

import (
	"context"
	"fmt"

	"insightrag-be/pkg/embedding"
	"insightrag-be/pkg/rag/chunk"
	"insightrag-be/pkg/rag/index"
)

const previewLength = 300

// Result is one retrieved chunk. ID is the chunk position inside its Index.
type Result struct {
	ID       int         `json:"id"`
	Chunk    chunk.Chunk `json:"chunk"`
	Distance float32     `json:"distance"`
}

// Preview returns the first 300 characters of the chunk followed by "...".
func (r Result) Preview() string {
	runes := []rune(r.Chunk.Text)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return string(runes) + "..."
}

// Retrieve embeds query once with the embedder the index was built with and returns
// up to k chunks closest first. k is clamped to the number of indexed chunks.
func Retrieve(ctx context.Context, idx *index.Index, query string, k int) ([]Result, error) {
	if idx == nil || idx.Len() == 0 || k <= 0 {
		return []Result{}, nil
	}
	if k > idx.Len() {
		k = idx.Len()
	}

	vec, err := idx.Embedder().Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := idx.Search(vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		c, ok := idx.Chunk(h.ID)
		if !ok {
			continue
		}
		results = append(results, Result{ID: h.ID, Chunk: c, Distance: h.Distance})
	}
	return results, nil
}

// Texts returns the chunk texts in retrieval order.
func Texts(results []Result) []string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Chunk.Text
	}
	return texts
}
