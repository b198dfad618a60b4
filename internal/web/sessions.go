package web

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/dashdoc/webmanager/internal/notes"
)

const sessionCookie = "webmanager_session"

// Session is the private state of one browser session.
// Handlers hold mu for the whole request.
type Session struct {
	mu    sync.Mutex
	ID    string
	Notes *notes.Session
}

// Sessions keeps sessions in memory with a sliding expiry
type Sessions struct {
	items *gocache.Cache
	ttl   time.Duration
	mu    sync.Mutex
}

// NewSessions creates a registry whose idle sessions expire after ttl
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		items: gocache.New(ttl, ttl),
		ttl:   ttl,
	}
}

// Get returns the session for id, creating a fresh one when id is unknown.
// The second result reports whether a new session was created.
func (s *Sessions) Get(id string, schema *notes.Schema) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if v, ok := s.items.Get(id); ok {
			sess := v.(*Session)
			s.items.Set(id, sess, s.ttl)
			return sess, false
		}
	}

	id = uuid.NewString()
	sess := &Session{ID: id, Notes: notes.NewSession(id, schema)}
	s.items.Set(id, sess, s.ttl)
	return sess, true
}

// Len returns the number of live sessions
func (s *Sessions) Len() int {
	return s.items.ItemCount()
}
