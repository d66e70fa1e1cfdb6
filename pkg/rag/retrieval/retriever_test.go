package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"insightrag-be/internal/pkg/logger"
	"insightrag-be/pkg/embedding"
	"insightrag-be/pkg/rag/chunk"
	"insightrag-be/pkg/rag/index"
	"insightrag-be/pkg/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingEmbedder struct{}

func (failingEmbedder) Generate(context.Context, string, string) ([]float32, error) {
	return nil, errors.New("offline")
}

func (failingEmbedder) ModelName() string { return "failing" }

func buildIndex(t *testing.T, texts ...string) *index.Index {
	t.Helper()
	x, err := index.NewIndexer(embedding.NewHashProvider(128), 2, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(x.Release)

	chunks := make([]chunk.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = chunk.Chunk{Text: text}
	}
	idx, err := x.Build(context.Background(), chunks)
	require.NoError(t, err)
	return idx
}

func TestRetrieve_Ranking(t *testing.T) {
	idx := buildIndex(t,
		"The mitochondria is the powerhouse of the cell.",
		"Rome was the capital of the Roman empire.",
		"Photosynthesis converts light into chemical energy in plants.",
		"Goroutines are lightweight threads managed by the Go runtime.",
	)

	results, err := Retrieve(context.Background(), idx, "how do plants use light energy photosynthesis", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 2, results[0].ID)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Distance, results[i].Distance)
	}
	for _, r := range results {
		assert.GreaterOrEqual(t, r.ID, 0)
		assert.Less(t, r.ID, idx.Len())
	}
}

func TestRetrieve_ClampsK(t *testing.T) {
	idx := buildIndex(t, "alpha", "beta")

	results, err := Retrieve(context.Background(), idx, "alpha", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = Retrieve(context.Background(), idx, "alpha", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieve_EmptyIndex(t *testing.T) {
	flat, err := vectorindex.NewFlatIndex(4)
	require.NoError(t, err)
	idx, err := index.NewIndex(failingEmbedder{}, flat, nil)
	require.NoError(t, err)

	results, err := Retrieve(context.Background(), idx, "anything", 3)
	require.NoError(t, err, "an empty index never calls the embedder")
	assert.Empty(t, results)

	results, err = Retrieve(context.Background(), nil, "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieve_EmbedFailure(t *testing.T) {
	flat, err := vectorindex.NewFlatIndex(1)
	require.NoError(t, err)
	require.NoError(t, flat.Add(0, []float32{1}))
	idx, err := index.NewIndex(failingEmbedder{}, flat, []chunk.Chunk{{Text: "x"}})
	require.NoError(t, err)

	_, err = Retrieve(context.Background(), idx, "q", 1)
	assert.ErrorContains(t, err, "offline")
}

func TestResult_Preview(t *testing.T) {
	long := Result{Chunk: chunk.Chunk{Text: strings.Repeat("é", 400)}}
	assert.Equal(t, strings.Repeat("é", 300)+"...", long.Preview())

	short := Result{Chunk: chunk.Chunk{Text: "tiny"}}
	assert.Equal(t, "tiny...", short.Preview())
}

func TestTexts(t *testing.T) {
	rs := []Result{{Chunk: chunk.Chunk{Text: "a"}}, {Chunk: chunk.Chunk{Text: "b"}}}
	assert.Equal(t, []string{"a", "b"}, Texts(rs))
}
