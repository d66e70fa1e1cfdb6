package memory

import (
	"insightrag-be/pkg/rag/session"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps sessions in process memory. Entries never expire on their own:
// the store decides when everything is dropped.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *SessionRepository) Save(s *session.Session) {
	r.cache.Set(s.ID, s, cache.NoExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*session.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*session.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) Flush() {
	r.cache.Flush()
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
