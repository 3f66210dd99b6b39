// Package storage provides the durable key-value layer that stands in for
// browser local storage. Each browser session gets its own Scope.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("storage: key not found")

// KV is a minimal byte-oriented key-value store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. A zero ttl keeps the value until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Scoped prefixes every key with a fixed namespace.
type Scoped struct {
	kv     KV
	prefix string
	ttl    time.Duration
}

// Scope returns a KV whose keys live under prefix.
func Scope(kv KV, prefix string) *Scoped {
	return &Scoped{kv: kv, prefix: prefix}
}

// WithDefaultTTL returns a copy of s that applies ttl to writes made
// with a zero ttl.
func (s *Scoped) WithDefaultTTL(ttl time.Duration) *Scoped {
	return &Scoped{kv: s.kv, prefix: s.prefix, ttl: ttl}
}

// Get implements KV.
func (s *Scoped) Get(ctx context.Context, key string) ([]byte, error) {
	return s.kv.Get(ctx, s.prefix+key)
}

// Set implements KV.
func (s *Scoped) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = s.ttl
	}
	return s.kv.Set(ctx, s.prefix+key, value, ttl)
}

// Delete implements KV.
func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, s.prefix+key)
}

var _ KV = (*Scoped)(nil)
