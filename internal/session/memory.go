package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront/internal/model"
)

// MemoryStore keeps a single session in memory.
type MemoryStore struct {
	mu      sync.Mutex
	session *model.Session
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store. A non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now}
}

// Create stores a new session, replacing any previous one.
func (s *MemoryStore) Create(ctx context.Context, user model.User, token string) (*model.Session, error) {
	if token == "" {
		return nil, &model.SessionError{Op: "create", Err: errors.New("token is required")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = &model.Session{User: user, Token: token, ExpiresAt: s.now().Add(s.ttl)}
	out := *s.session
	return &out, nil
}

// Read returns a copy of the stored session, or nil.
func (s *MemoryStore) Read(ctx context.Context) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Valid() {
		return nil, nil
	}
	if s.session.Expired(s.now()) {
		s.session = nil
		return nil, nil
	}
	out := *s.session
	return &out, nil
}

// Destroy removes the stored session.
func (s *MemoryStore) Destroy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	return nil
}
