package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	values map[string]string
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryStore) DeleteIfEqual(_ context.Context, key, value string) (bool, error) {
	if current, ok := m.values[key]; ok && current == value {
		delete(m.values, key)
		return true, nil
	}
	return false, nil
}

func TestRedisLockExclusive(t *testing.T) {
	store := &memoryStore{values: map[string]string{}}
	ctx := context.Background()

	first, err := NewRedisLock(store, "mes:lock:cron-worker", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "mes:lock:cron-worker", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// a non-owner release leaves the holder's key alone
	require.NoError(t, second.Release(ctx))
	assert.Contains(t, store.values, "mes:lock:cron-worker")

	require.NoError(t, first.Release(ctx))
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewRedisLockValidates(t *testing.T) {
	_, err := NewRedisLock(nil, "k", time.Minute)
	assert.Error(t, err)
	_, err = NewRedisLock(&memoryStore{}, "", time.Minute)
	assert.Error(t, err)
}

func TestRedisLockLeavesReassignedLease(t *testing.T) {
	store := &memoryStore{values: map[string]string{}}
	ctx := context.Background()
	lock, err := NewRedisLock(store, "mes:lock:cron-worker:dev", time.Minute)
	require.NoError(t, err)

	holder, err := lock.Holder(ctx)
	require.NoError(t, err)
	assert.Empty(t, holder)

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	holder, err = lock.Holder(ctx)
	require.NoError(t, err)
	assert.Contains(t, holder, "/")

	// the lease expired and another replica took it
	store.values["mes:lock:cron-worker:dev"] = "other-host/1"
	require.NoError(t, lock.Release(ctx))
	assert.Equal(t, "other-host/1", store.values["mes:lock:cron-worker:dev"])
}

func TestRedisLockTTL(t *testing.T) {
	lock, err := NewRedisLock(&memoryStore{values: map[string]string{}}, "k", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultLockTTL, lock.TTL())

	lease := LeaseTTL(10*time.Minute, time.Hour, 6)
	lock, err = NewRedisLock(&memoryStore{values: map[string]string{}}, "k", lease)
	require.NoError(t, err)
	assert.Equal(t, 61*time.Minute, lock.TTL())
}
