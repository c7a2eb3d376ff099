package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newRedisLimiter(t *testing.T, quota Quota) (*RedisLimiter, *miniredis.Miniredis, *fakeClock) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := zerolog.Nop()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}

	l := NewRedisLimiter(client, quota, &logger)
	l.now = clock.now
	return l, mr, clock
}

func TestRedisLimiter_AllowsUpToQuota(t *testing.T) {
	l, mr, _ := newRedisLimiter(t, Quota{Requests: 3, Window: 10 * time.Second})
	ctx := context.Background()

	for want := 2; want >= 0; want-- {
		res, err := l.Limit(ctx, "guestbook:u1")
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, want, res.Remaining)
		assert.Equal(t, 3, res.Limit)
	}

	res, err := l.Limit(ctx, "guestbook:u1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 0, res.Remaining)

	assert.True(t, mr.Exists(KeyPrefix+"guestbook:u1"))
}

func TestRedisLimiter_WindowSlides(t *testing.T) {
	l, _, clock := newRedisLimiter(t, Quota{Requests: 1, Window: 10 * time.Second})
	ctx := context.Background()

	res, err := l.Limit(ctx, "guestbook:u1")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, clock.t.Add(10*time.Second).UnixMilli(), res.Reset.UnixMilli())

	clock.advance(5 * time.Second)
	res, err = l.Limit(ctx, "guestbook:u1")
	require.NoError(t, err)
	assert.False(t, res.Success)

	clock.advance(5*time.Second + time.Millisecond)
	res, err = l.Limit(ctx, "guestbook:u1")
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestRedisLimiter_KeysAreIndependent(t *testing.T) {
	l, _, _ := newRedisLimiter(t, Quota{Requests: 1, Window: time.Minute})
	ctx := context.Background()

	res, err := l.Limit(ctx, "guestbook:u1")
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = l.Limit(ctx, "guestbook:u2")
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestRedisLimiter_RedisDown(t *testing.T) {
	l, mr, _ := newRedisLimiter(t, Quota{Requests: 1, Window: time.Minute})
	mr.Close()

	_, err := l.Limit(context.Background(), "guestbook:u1")
	assert.Error(t, err)
}

func TestMemoryLimiter_TokenBucket(t *testing.T) {
	l := NewMemoryLimiter(Quota{Requests: 2, Window: 10 * time.Second})
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l.now = clock.now
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := l.Limit(ctx, "guestbook:u1")
		require.NoError(t, err)
		assert.True(t, res.Success)
	}

	res, err := l.Limit(ctx, "guestbook:u1")
	require.NoError(t, err)
	assert.False(t, res.Success)

	other, err := l.Limit(ctx, "guestbook:u2")
	require.NoError(t, err)
	assert.True(t, other.Success)

	clock.advance(5 * time.Second)
	res, err = l.Limit(ctx, "guestbook:u1")
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestMemoryLimiter_CleanupDropsIdleKeys(t *testing.T) {
	l := NewMemoryLimiter(Quota{Requests: 1, Window: time.Second})
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l.now = clock.now
	ctx := context.Background()

	_, err := l.Limit(ctx, "guestbook:u1")
	require.NoError(t, err)

	clock.advance(2 * time.Second)
	_, err = l.Limit(ctx, "guestbook:u2")
	require.NoError(t, err)

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.visitors, "guestbook:u1")
	assert.Contains(t, l.visitors, "guestbook:u2")
}
