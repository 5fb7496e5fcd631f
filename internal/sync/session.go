package sync

import (
	"context"
	"sync"
)

// Resolver resolves the currently authenticated user. An empty id with a nil
// error means anonymous (local-only mode).
type Resolver interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// StaticResolver is a Resolver with a fixed answer, used by the CLI (which
// reads the user id from the environment) and by tests.
type StaticResolver string

// CurrentUserID implements Resolver.
func (r StaticResolver) CurrentUserID(context.Context) (string, error) {
	return string(r), nil
}

// Session caches the resolved user id so repeated sync calls within one
// session don't re-resolve identity. Invalidate must be called on sign-in and
// sign-out transitions.
type Session struct {
	resolver Resolver

	mu     sync.Mutex
	cached *string
}

// NewSession creates a session backed by the given resolver.
func NewSession(resolver Resolver) *Session {
	return &Session{resolver: resolver}
}

// UserID returns the current user id, resolving it on first use and caching
// the result. An empty id means signed out.
func (s *Session) UserID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return *s.cached, nil
	}
	id, err := s.resolver.CurrentUserID(ctx)
	if err != nil {
		return "", err
	}
	s.cached = &id
	return id, nil
}

// Invalidate drops the cached user id so the next call re-resolves it.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
