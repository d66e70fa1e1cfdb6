package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"insightrag-be/pkg/extractor"
	"insightrag-be/pkg/rag/history"
	"insightrag-be/pkg/rag/session"
)

const DefaultTTL = 15 * time.Minute

var (
	ErrNotFound        = errors.New("session not found")
	ErrNoActiveSession = errors.New("no active session")
)

// Repository holds sessions by id. Ordering and the active pointer live in the Store.
type Repository interface {
	Save(s *session.Session)
	Get(sessionID string) (*session.Session, bool)
	Delete(sessionID string)
	Flush()
	Count() int
}

// SessionBuilder runs ingestion for one uploaded document.
type SessionBuilder interface {
	Build(ctx context.Context, doc extractor.Document) (*session.Session, error)
}

// PurgeFunc is called after a TTL purge, outside the store lock.
type PurgeFunc func(dropped int, epochStart time.Time)

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithPurgeHook(fn PurgeFunc) Option {
	return func(s *Store) {
		s.onPurge = fn
	}
}

// Store is the process-wide session registry. Every operation first checks the TTL;
// once it has elapsed since epochStart the whole registry is dropped in one step.
// Ingestion and questions run without holding the store lock.
type Store struct {
	mu         sync.Mutex
	repo       Repository
	builder    SessionBuilder
	order      []string
	activeID   string
	epochStart time.Time
	ttl        time.Duration
	now        func() time.Time
	onPurge    PurgeFunc
}

func New(repo Repository, builder SessionBuilder, opts ...Option) *Store {
	s := &Store{
		repo:    repo,
		builder: builder,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.epochStart = s.now()
	return s
}

// PurgeIfExpired drops every session when the TTL has elapsed and reports whether it did.
func (s *Store) PurgeIfExpired() bool {
	s.mu.Lock()
	dropped, purged := s.purgeLocked()
	epoch := s.epochStart
	s.mu.Unlock()

	if purged && s.onPurge != nil {
		s.onPurge(dropped, epoch)
	}
	return purged
}

func (s *Store) purgeLocked() (int, bool) {
	now := s.now()
	if now.Sub(s.epochStart) < s.ttl {
		return 0, false
	}
	dropped := s.repo.Count()
	s.repo.Flush()
	s.order = nil
	s.activeID = ""
	if now.After(s.epochStart) {
		s.epochStart = now
	}
	return dropped, true
}

// lock takes the store lock after applying the TTL check. The returned func unlocks
// and fires the purge hook if a purge happened.
func (s *Store) lock() func() {
	s.mu.Lock()
	dropped, purged := s.purgeLocked()
	epoch := s.epochStart
	return func() {
		s.mu.Unlock()
		if purged && s.onPurge != nil {
			s.onPurge(dropped, epoch)
		}
	}
}

// CreateSession ingests the document and registers the new session as active.
// On any ingestion error the store is left unchanged.
func (s *Store) CreateSession(ctx context.Context, name string, data []byte) (*session.Session, error) {
	s.PurgeIfExpired()

	doc, err := extractor.NewDocument(name, data)
	if err != nil {
		return nil, &session.IngestionError{Stage: "detect", Err: err}
	}

	sess, err := s.builder.Build(ctx, doc)
	if err != nil {
		return nil, err
	}

	unlock := s.lock()
	defer unlock()

	s.repo.Save(sess)
	s.order = append(s.order, sess.ID)
	s.activeID = sess.ID
	return sess, nil
}

func (s *Store) SelectSession(id string) (*session.Session, error) {
	unlock := s.lock()
	defer unlock()

	sess, ok := s.repo.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	s.activeID = id
	return sess, nil
}

// DeleteSession removes one session and reports whether it was the active one.
func (s *Store) DeleteSession(id string) (bool, error) {
	unlock := s.lock()
	defer unlock()

	if _, ok := s.repo.Get(id); !ok {
		return false, ErrNotFound
	}
	s.repo.Delete(id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	wasActive := s.activeID == id
	if wasActive {
		s.activeID = ""
	}
	return wasActive, nil
}

func (s *Store) Get(id string) (*session.Session, error) {
	unlock := s.lock()
	defer unlock()

	sess, ok := s.repo.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// List returns sessions in creation order.
func (s *Store) List() []*session.Session {
	unlock := s.lock()
	defer unlock()
	return s.listLocked()
}

func (s *Store) listLocked() []*session.Session {
	out := make([]*session.Session, 0, len(s.order))
	for _, id := range s.order {
		if sess, ok := s.repo.Get(id); ok {
			out = append(out, sess)
		}
	}
	return out
}

// Snapshot is a consistent view of the registry taken under one lock.
type Snapshot struct {
	Sessions   []*session.Session
	ActiveID   string
	EpochStart time.Time
	ExpiresAt  time.Time
}

func (s *Store) Snapshot() Snapshot {
	unlock := s.lock()
	defer unlock()

	return Snapshot{
		Sessions:   s.listLocked(),
		ActiveID:   s.activeID,
		EpochStart: s.epochStart,
		ExpiresAt:  s.epochStart.Add(s.ttl),
	}
}

func (s *Store) ActiveID() string {
	unlock := s.lock()
	defer unlock()
	return s.activeID
}

func (s *Store) Active() (*session.Session, error) {
	unlock := s.lock()
	defer unlock()

	if s.activeID == "" {
		return nil, ErrNoActiveSession
	}
	sess, ok := s.repo.Get(s.activeID)
	if !ok {
		return nil, ErrNoActiveSession
	}
	return sess, nil
}

// Ask forwards a question to one session. Only that session waits on the model.
func (s *Store) Ask(ctx context.Context, id, question string) (*session.Session, history.Turn, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, history.Turn{}, err
	}
	turn, err := sess.Ask(ctx, question)
	return sess, turn, err
}

func (s *Store) AskActive(ctx context.Context, question string) (*session.Session, history.Turn, error) {
	sess, err := s.Active()
	if err != nil {
		return nil, history.Turn{}, err
	}
	turn, err := sess.Ask(ctx, question)
	return sess, turn, err
}
