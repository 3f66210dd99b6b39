package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "k", []byte("v1"), 0))
	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))

	require.NoError(t, kv.Set(ctx, "k", []byte("v2"), 0))
	got, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))

	require.NoError(t, kv.Delete(ctx, "k"))
	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting twice is harmless
	require.NoError(t, kv.Delete(ctx, "k"))
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestMemoryKVExpiry(t *testing.T) {
	kv := NewMemoryKV()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", []byte("v"), time.Minute))
	now = now.Add(30 * time.Second)
	_, err := kv.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisKV(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exerciseKV(t, NewRedisKV(client))
}

func TestRedisKVUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	kv := NewRedisKV(client)
	mr.Close()

	_, err := kv.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestScopeIsolatesNamespaces(t *testing.T) {
	base := NewMemoryKV()
	ctx := context.Background()
	a := Scope(base, "browser:a:")
	b := Scope(base, "browser:b:")

	require.NoError(t, a.Set(ctx, "hris_user", []byte("alice"), 0))
	_, err := b.Get(ctx, "hris_user")
	assert.ErrorIs(t, err, ErrNotFound)

	raw, err := base.Get(ctx, "browser:a:hris_user")
	require.NoError(t, err)
	assert.Equal(t, "alice", string(raw))
}

func TestScopeDefaultTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()
	scoped := Scope(NewRedisKV(client), "browser:x:").WithDefaultTTL(time.Hour)

	require.NoError(t, scoped.Set(ctx, "hris_audit_logs", []byte("[]"), 0))
	assert.Equal(t, time.Hour, mr.TTL("browser:x:hris_audit_logs"))

	require.NoError(t, scoped.Set(ctx, "short", []byte("1"), time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("browser:x:short"))
}

func TestNewRedisClientPing(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())
}
