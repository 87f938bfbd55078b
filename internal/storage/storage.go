// Package storage provides the key-value persistence substrate the
// state stores hydrate from and persist to.
package storage

import (
	"context"
)

// Store is the persistence substrate contract. Get reports absence via
// the boolean, not an error; Set and Remove failures are expected to be
// swallowed by callers persisting non-critical state.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Noop is the fallback substrate used when no persistent medium is
// available. Reads always miss and writes silently succeed.
type Noop struct{}

// NewNoop creates a no-op substrate.
func NewNoop() *Noop {
	return &Noop{}
}

func (*Noop) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

func (*Noop) Set(ctx context.Context, key, value string) error {
	return nil
}

func (*Noop) Remove(ctx context.Context, key string) error {
	return nil
}
