// Package store provides the owned state services for auth and chat
// data. Each store serializes its whole document to the persistence
// substrate after every mutation; substrate failures are logged and
// never surfaced to callers.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/orbitchat-ai/demo-platform/internal/model"
	"github.com/orbitchat-ai/demo-platform/internal/storage"
	"github.com/orbitchat-ai/demo-platform/pkg/logger"
	"github.com/orbitchat-ai/demo-platform/pkg/metrics"
)

const (
	// AuthStorageKey is the substrate key for the auth document.
	AuthStorageKey = "auth-storage"

	// ChatStorageKey is the substrate key for the chat document.
	ChatStorageKey = "chat-storage"
)

// ErrNoProfile is returned when a profile mutation has nothing to act on.
var ErrNoProfile = errors.New("no authenticated profile")

// Auth holds the single optional authenticated profile record.
type Auth struct {
	substrate storage.Store
	logger    *logger.Logger

	mu       sync.RWMutex
	profile  *model.Profile
	hydrated bool
}

// NewAuth creates an auth store backed by the given substrate.
func NewAuth(substrate storage.Store, log *logger.Logger) *Auth {
	return &Auth{
		substrate: substrate,
		logger:    log,
	}
}

// Hydrate loads the persisted profile once at startup. The store is
// marked hydrated whether or not a stored value exists; consumers must
// not trust Profile before Hydrated reports true.
func (s *Auth) Hydrate(ctx context.Context) error {
	raw, ok, err := s.substrate.Get(ctx, AuthStorageKey)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.hydrated = true
		return err
	}

	if ok {
		var p model.Profile
		if uerr := json.Unmarshal([]byte(raw), &p); uerr != nil {
			s.logger.Warn("discarding unreadable auth document", zap.Error(uerr))
		} else {
			s.profile = &p
		}
	}

	s.hydrated = true
	return nil
}

// Hydrated reports whether the initial load has completed.
func (s *Auth) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// Profile returns a copy of the current profile, or nil when absent.
func (s *Auth) Profile() *model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// SetProfile replaces the profile record. Any accepted profile is
// considered authenticated regardless of the caller-supplied flag.
func (s *Auth) SetProfile(ctx context.Context, p model.Profile) {
	p.IsAuthenticated = true

	s.mu.Lock()
	s.profile = &p
	s.mu.Unlock()

	s.persist(ctx)
}

// UpdateProfile rewrites name and phone while preserving the country
// code and session bookkeeping.
func (s *Auth) UpdateProfile(ctx context.Context, name, phone string) error {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return ErrNoProfile
	}
	s.profile.Name = name
	s.profile.Phone = phone
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// Logout clears the profile wholesale.
func (s *Auth) Logout(ctx context.Context) {
	s.mu.Lock()
	s.profile = nil
	s.mu.Unlock()

	if err := s.substrate.Remove(ctx, AuthStorageKey); err != nil {
		s.logger.Warn("failed to clear auth document", zap.Error(err))
		metrics.PersistFailuresTotal.WithLabelValues(AuthStorageKey).Inc()
	}
}

func (s *Auth) persist(ctx context.Context) {
	s.mu.RLock()
	data, err := json.Marshal(s.profile)
	s.mu.RUnlock()

	if err == nil {
		err = s.substrate.Set(ctx, AuthStorageKey, string(data))
	}
	if err != nil {
		s.logger.Warn("failed to persist auth document", zap.Error(err))
		metrics.PersistFailuresTotal.WithLabelValues(AuthStorageKey).Inc()
	}
}
