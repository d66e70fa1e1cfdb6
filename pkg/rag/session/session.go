package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"insightrag-be/pkg/rag/history"
	"insightrag-be/pkg/rag/index"
	"insightrag-be/pkg/rag/prompt"
	"insightrag-be/pkg/rag/response"
	"insightrag-be/pkg/rag/retrieval"
)

type State string

const (
	StateIndexing  State = "indexing"
	StateReady     State = "ready"
	StateExhausted State = "exhausted"
)

const (
	DefaultQuestionLimit = 7
	UntitledDocument     = "Untitled document"
)

var (
	ErrLimitReached  = errors.New("question limit reached")
	ErrEmptyQuestion = errors.New("question is empty")
)

// Settings is the per-session configuration record. EmbeddingModel is informational:
// queries always go through the embedder stored on the Index.
type Settings struct {
	QuestionLimit  int    `json:"question_limit"`
	TopK           int    `json:"top_k"`
	EmbeddingModel string `json:"embedding_model"`
}

// Session is one document's index with its conversation and question quota.
// Ask calls are serialized; reads of the transcript never wait on generation.
type Session struct {
	ID        string
	Title     string
	CreatedAt time.Time

	index     *index.Index
	generator *response.Generator
	settings  Settings

	askMu sync.Mutex

	mu         sync.RWMutex
	transcript history.Transcript
	count      int
}

func New(id, title string, idx *index.Index, generator *response.Generator, settings Settings) *Session {
	if settings.QuestionLimit <= 0 {
		settings.QuestionLimit = DefaultQuestionLimit
	}
	if strings.TrimSpace(title) == "" {
		title = UntitledDocument
	}
	if settings.EmbeddingModel == "" && idx != nil {
		settings.EmbeddingModel = idx.Embedder().ModelName()
	}
	return &Session{
		ID:        id,
		Title:     title,
		CreatedAt: time.Now(),
		index:     idx,
		generator: generator,
		settings:  settings,
	}
}

// Ask runs retrieve, assemble, generate and append for one question. A failed generation
// still records a turn holding the unavailability message and uses up one question.
func (s *Session) Ask(ctx context.Context, question string) (history.Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return history.Turn{}, ErrEmptyQuestion
	}

	s.askMu.Lock()
	defer s.askMu.Unlock()

	s.mu.RLock()
	if s.count >= s.settings.QuestionLimit {
		s.mu.RUnlock()
		return history.Turn{}, ErrLimitReached
	}
	previous := s.transcript.Turns()
	s.mu.RUnlock()

	results, err := retrieval.Retrieve(ctx, s.index, question, s.settings.TopK)
	if err != nil {
		return history.Turn{}, fmt.Errorf("retrieve context: %w", err)
	}

	p := prompt.Assemble(question, retrieval.Texts(results), previous)
	answer := s.generator.Answer(ctx, p)

	turn := history.Turn{
		Question: question,
		Answer:   answer.Text,
		Sources:  toSources(results),
		Degraded: answer.Degraded,
		AskedAt:  time.Now(),
	}

	s.mu.Lock()
	s.transcript.Append(turn)
	s.count++
	s.mu.Unlock()

	return turn, nil
}

func (s *Session) State() State {
	if s.index == nil {
		return StateIndexing
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.count >= s.settings.QuestionLimit {
		return StateExhausted
	}
	return StateReady
}

func (s *Session) Transcript() []history.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transcript.Turns()
}

func (s *Session) QuestionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

func (s *Session) Limit() int {
	return s.settings.QuestionLimit
}

func (s *Session) Remaining() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.QuestionLimit - s.count
}

func (s *Session) Settings() Settings {
	return s.settings
}

// ChunkCount is the number of indexed chunks.
func (s *Session) ChunkCount() int {
	if s.index == nil {
		return 0
	}
	return s.index.Len()
}

// Summary is the read-only view used for listings.
type Summary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	State         State     `json:"state"`
	QuestionCount int       `json:"question_count"`
	Remaining     int       `json:"remaining"`
	Limit         int       `json:"limit"`
	Chunks        int       `json:"chunks"`
	CreatedAt     time.Time `json:"created_at"`
}

func (s *Session) Summary() Summary {
	count := s.QuestionCount()
	return Summary{
		ID:            s.ID,
		Title:         s.Title,
		State:         s.State(),
		QuestionCount: count,
		Remaining:     s.settings.QuestionLimit - count,
		Limit:         s.settings.QuestionLimit,
		Chunks:        s.ChunkCount(),
		CreatedAt:     s.CreatedAt,
	}
}

func toSources(results []retrieval.Result) []history.Source {
	sources := make([]history.Source, len(results))
	for i, r := range results {
		sources[i] = history.Source{
			ChunkID:  r.ID,
			Offset:   r.Chunk.SourceOffset,
			Distance: r.Distance,
			Text:     r.Chunk.Text,
			Preview:  r.Preview(),
		}
	}
	return sources
}
