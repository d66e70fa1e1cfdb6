package index

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"insightrag-be/internal/pkg/logger"
	"insightrag-be/pkg/embedding"
	"insightrag-be/pkg/rag/chunk"
	"insightrag-be/pkg/vectorindex"

	"github.com/panjf2000/ants/v2"
)

var ErrNoIndexableContent = errors.New("document has no indexable content")

// Index pairs the stored chunks with their vectors. Position i in chunks is vector id i.
// It also keeps the embedder that produced the vectors so queries are embedded in the same space.
type Index struct {
	chunks   []chunk.Chunk
	vectors  vectorindex.Index
	embedder embedding.EmbeddingProvider
}

func NewIndex(embedder embedding.EmbeddingProvider, vectors vectorindex.Index, chunks []chunk.Chunk) (*Index, error) {
	if embedder == nil || vectors == nil {
		return nil, fmt.Errorf("index requires an embedder and a vector index")
	}
	if vectors.Len() != len(chunks) {
		return nil, fmt.Errorf("index has %d vectors for %d chunks", vectors.Len(), len(chunks))
	}
	return &Index{chunks: chunks, vectors: vectors, embedder: embedder}, nil
}

func (i *Index) Len() int {
	return len(i.chunks)
}

func (i *Index) Chunk(id int) (chunk.Chunk, bool) {
	if id < 0 || id >= len(i.chunks) {
		return chunk.Chunk{}, false
	}
	return i.chunks[id], true
}

func (i *Index) Embedder() embedding.EmbeddingProvider {
	return i.embedder
}

func (i *Index) Search(vector []float32, k int) ([]vectorindex.Hit, error) {
	return i.vectors.Search(vector, k)
}

// Indexer embeds chunks on a shared worker pool and builds one Index per document.
type Indexer struct {
	embedder embedding.EmbeddingProvider
	pool     *ants.Pool
	logger   logger.ILogger
}

func NewIndexer(embedder embedding.EmbeddingProvider, workers int, logger logger.ILogger) (*Indexer, error) {
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create embedding pool: %w", err)
	}
	return &Indexer{embedder: embedder, pool: pool, logger: logger}, nil
}

func (x *Indexer) Embedder() embedding.EmbeddingProvider {
	return x.embedder
}

// Build drops blank chunks, embeds the rest and inserts them in order.
func (x *Indexer) Build(ctx context.Context, chunks []chunk.Chunk) (*Index, error) {
	kept := make([]chunk.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) != "" {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoIndexableContent
	}

	start := time.Now()
	vectors, err := x.embedAll(ctx, kept)
	if err != nil {
		return nil, err
	}

	flat, err := vectorindex.NewFlatIndex(len(vectors[0]))
	if err != nil {
		return nil, err
	}
	for id, vec := range vectors {
		if err := flat.Add(id, vec); err != nil {
			return nil, fmt.Errorf("add chunk %d: %w", id, err)
		}
	}

	x.logger.Info("Indexer", "Document indexed", map[string]interface{}{
		"chunks":    len(chunks),
		"indexed":   len(kept),
		"dimension": flat.Dimension(),
		"model":     x.embedder.ModelName(),
		"took_ms":   time.Since(start).Milliseconds(),
	})

	return NewIndex(x.embedder, flat, kept)
}

func (x *Indexer) embedAll(ctx context.Context, chunks []chunk.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	for i := range chunks {
		wg.Add(1)
		submitErr := x.pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			vectors[i], errs[i] = x.embedder.Generate(ctx, chunks[i].Text, embedding.TaskRetrievalDocument)
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
	}
	for i, vec := range vectors {
		if len(vec) != len(vectors[0]) {
			return nil, fmt.Errorf("embed chunk %d: %w", i, vectorindex.ErrDimensionMismatch)
		}
	}
	return vectors, nil
}

// Release stops the worker pool. Builds after Release fail.
func (x *Indexer) Release() {
	x.pool.Release()
}
