package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := NewRedisClient(ctx, DefaultRedisConfig("redis://"+mr.Addr()), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	l := NewLocker(client)
	ok, err := l.NewLock(ctx, "user_lock:juan@example.com", "owner-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.NewLock(ctx, "user_lock:juan@example.com", "owner-2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, l.ReleaseLock(ctx, "user_lock:juan@example.com", "owner-2"), ErrLockNotOwned)
	require.NoError(t, l.ReleaseLock(ctx, "user_lock:juan@example.com", "owner-1"))

	ok, err = l.NewLock(ctx, "user_lock:juan@example.com", "owner-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLockerWithoutClient(t *testing.T) {
	l := NewLocker(nil)
	ok, err := l.NewLock(context.Background(), "k", "v", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, l.ReleaseLock(context.Background(), "k", "v"))
}

func TestNewRedisClientBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), DefaultRedisConfig("not a url"), zerolog.Nop())
	assert.Error(t, err)
}
