package session

import (
	"context"
	"fmt"
	"time"

	"insightrag-be/internal/pkg/logger"
	"insightrag-be/pkg/extractor"
	"insightrag-be/pkg/rag/chunk"
	"insightrag-be/pkg/rag/index"
	"insightrag-be/pkg/rag/response"

	"github.com/google/uuid"
)

// IngestionError wraps a failure that prevented a Session from being created.
// Stage is one of "extract", "chunk" or "index".
type IngestionError struct {
	Stage string
	Err   error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion failed at %s: %v", e.Stage, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

type BuilderConfig struct {
	ChunkSize     int
	ChunkOverlap  int
	TopK          int
	QuestionLimit int
}

// Builder turns an uploaded document into a Ready Session. Nothing is kept on failure.
type Builder struct {
	extractor extractor.Extractor
	indexer   *index.Indexer
	generator *response.Generator
	cfg       BuilderConfig
	logger    logger.ILogger
}

func NewBuilder(ext extractor.Extractor, indexer *index.Indexer, generator *response.Generator, cfg BuilderConfig, logger logger.ILogger) *Builder {
	return &Builder{
		extractor: ext,
		indexer:   indexer,
		generator: generator,
		cfg:       cfg,
		logger:    logger,
	}
}

func (b *Builder) Build(ctx context.Context, doc extractor.Document) (*Session, error) {
	start := time.Now()

	text, err := b.extractor.Extract(doc)
	if err != nil {
		return nil, &IngestionError{Stage: "extract", Err: err}
	}

	chunks, err := chunk.Split(text, b.cfg.ChunkSize, b.cfg.ChunkOverlap)
	if err != nil {
		return nil, &IngestionError{Stage: "chunk", Err: err}
	}

	idx, err := b.indexer.Build(ctx, chunks)
	if err != nil {
		return nil, &IngestionError{Stage: "index", Err: err}
	}

	s := New(uuid.NewString(), doc.Name, idx, b.generator, Settings{
		QuestionLimit:  b.cfg.QuestionLimit,
		TopK:           b.cfg.TopK,
		EmbeddingModel: b.indexer.Embedder().ModelName(),
	})

	b.logger.Info("SessionBuilder", "Session ready", map[string]interface{}{
		"session_id": s.ID,
		"title":      s.Title,
		"type":       doc.Type,
		"chars":      len([]rune(text)),
		"chunks":     idx.Len(),
		"took_ms":    time.Since(start).Milliseconds(),
	})

	return s, nil
}
