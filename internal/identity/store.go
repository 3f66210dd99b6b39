// Package identity holds the session identity store: login against the
// directory, logout, and rehydration from durable storage.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/limitless-hr/hris/internal/platform/storage"
	"github.com/limitless-hr/hris/internal/rbac"
)

// StorageKey is the only key the Store writes.
const StorageKey = "hris_user"

// Store owns the current identity of one browser session.
type Store struct {
	mu        sync.RWMutex
	current   *Identity
	kv        storage.KV
	directory *Directory
	logger    *slog.Logger
}

// NewStore creates a Store and rehydrates the persisted identity once.
// Missing, unreadable or malformed data leaves the store signed out.
func NewStore(ctx context.Context, kv storage.KV, directory *Directory, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{kv: kv, directory: directory, logger: logger}
	s.rehydrate(ctx)
	return s
}

func (s *Store) rehydrate(ctx context.Context) {
	if s.kv == nil {
		return
	}
	raw, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("identity rehydrate", slog.Any("error", err))
		}
		return
	}
	var stored Identity
	if err := json.Unmarshal(raw, &stored); err != nil || !stored.valid() {
		s.logger.Warn("identity discard malformed", slog.Any("error", err))
		if err := s.kv.Delete(ctx, StorageKey); err != nil {
			s.logger.Warn("identity delete malformed", slog.Any("error", err))
		}
		return
	}
	s.current = &stored
}

// Login signs in the directory identity for email. The password is accepted
// but not checked here; the directory lookup alone decides.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	id, ok := s.directory.Lookup(email)
	if !ok {
		return false
	}
	s.mu.Lock()
	s.current = &id
	s.mu.Unlock()
	s.persist(ctx, id)
	return true
}

// Logout clears the identity and its persisted copy.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	if s.kv == nil {
		return
	}
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		s.logger.Warn("identity logout delete", slog.Any("error", err))
	}
}

func (s *Store) persist(ctx context.Context, id Identity) {
	if s.kv == nil {
		return
	}
	data, err := json.Marshal(id)
	if err != nil {
		s.logger.Warn("identity encode", slog.Any("error", err))
		return
	}
	if err := s.kv.Set(ctx, StorageKey, data, 0); err != nil {
		s.logger.Warn("identity persist", slog.Any("error", err))
	}
}

// Current returns a copy of the signed-in identity.
func (s *Store) Current() (Identity, bool) {
	if s == nil {
		return Identity{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}

// IsAuthenticated is true exactly when an identity is present.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

// Subject implements rbac.SubjectSource.
func (s *Store) Subject() (rbac.Subject, bool) {
	id, ok := s.Current()
	if !ok {
		return rbac.Subject{}, false
	}
	return id.Subject(), true
}

var _ rbac.SubjectSource = (*Store)(nil)
