package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResolver struct {
	id    string
	err   error
	calls int
}

func (r *countingResolver) CurrentUserID(context.Context) (string, error) {
	r.calls++
	return r.id, r.err
}

func TestSessionCachesUserID(t *testing.T) {
	resolver := &countingResolver{id: "user-1"}
	s := NewSession(resolver)

	for i := 0; i < 3; i++ {
		id, err := s.UserID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "user-1", id)
	}
	assert.Equal(t, 1, resolver.calls)
}

func TestSessionCachesAnonymous(t *testing.T) {
	resolver := &countingResolver{id: ""}
	s := NewSession(resolver)

	id, err := s.UserID(context.Background())
	require.NoError(t, err)
	assert.Empty(t, id)

	_, _ = s.UserID(context.Background())
	assert.Equal(t, 1, resolver.calls, "signed-out state is cached too")
}

func TestSessionInvalidateForcesReResolve(t *testing.T) {
	resolver := &countingResolver{id: "user-1"}
	s := NewSession(resolver)

	_, err := s.UserID(context.Background())
	require.NoError(t, err)

	// Simulate a sign-out/sign-in transition.
	resolver.id = "user-2"
	s.Invalidate()

	id, err := s.UserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-2", id)
	assert.Equal(t, 2, resolver.calls)
}

func TestSessionResolverErrorIsNotCached(t *testing.T) {
	resolver := &countingResolver{err: errors.New("auth backend down")}
	s := NewSession(resolver)

	_, err := s.UserID(context.Background())
	require.Error(t, err)

	resolver.err = nil
	resolver.id = "user-1"
	id, err := s.UserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}
