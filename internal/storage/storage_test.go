package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "a", "one"))

	v, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "one", v)

	require.NoError(t, s.Set(ctx, "a", "two"))
	v, _, _ = s.Get(ctx, "a")
	require.Equal(t, "two", v)

	require.NoError(t, s.Remove(ctx, "a"))
	_, ok, err = s.Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNoopAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	s := NewNoop()

	require.NoError(t, s.Set(ctx, "a", "one"))

	_, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Remove(ctx, "a"))
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()

	path := t.TempDir() + "/state.db"
	s, err := NewSQLite(path)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "chat-storage", `{"chats":[]}`))

	v, ok, err := s.Get(ctx, "chat-storage")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"chats":[]}`, v)

	// Reopen to prove the value survives the process boundary.
	s2, err := NewSQLite(path)
	require.NoError(t, err)
	v, ok, err = s2.Get(ctx, "chat-storage")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"chats":[]}`, v)

	require.NoError(t, s2.Remove(ctx, "chat-storage"))
	_, ok, err = s2.Get(ctx, "chat-storage")
	require.NoError(t, err)
	require.False(t, ok)
}
