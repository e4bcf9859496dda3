package quota

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisLocker(t *testing.T, ttl time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLocker(client, ttl)
	l.retry = time.Millisecond
	return l, mr
}

func assertMutualExclusion(t *testing.T, l Locker) {
	t.Helper()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lease, err := l.Lock(ctx, "acct")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			assert.NoError(t, lease.Unlock(ctx))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestLocalLocker_MutualExclusion(t *testing.T) {
	l := NewLocalLocker()
	assertMutualExclusion(t, l)
	assert.Empty(t, l.locks, "idle entries are dropped")
}

func TestLocalLocker_IndependentKeys(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	a, err := l.Lock(ctx, "a")
	require.NoError(t, err)
	b, err := l.Lock(ctx, "b")
	require.NoError(t, err, "different keys never contend")

	require.NoError(t, a.Unlock(ctx))
	require.NoError(t, b.Unlock(ctx))
}

func TestLocalLocker_ContextCanceled(t *testing.T) {
	l := NewLocalLocker()
	held, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, held.Unlock(context.Background()))
	require.NoError(t, held.Unlock(context.Background()), "second unlock is a no-op")
	assert.Empty(t, l.locks)
}

func TestRedisLocker_MutualExclusion(t *testing.T) {
	l, _ := setupRedisLocker(t, time.Minute)
	assertMutualExclusion(t, l)
}

func TestRedisLocker_WaitsThenTimesOut(t *testing.T) {
	l, mr := setupRedisLocker(t, time.Minute)
	held, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, mr.Exists("voxgate:quota:lock:a"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, held.Unlock(context.Background()))
	assert.False(t, mr.Exists("voxgate:quota:lock:a"))
}

func TestRedisLocker_ExpiredLeaseIsNotStolenBack(t *testing.T) {
	l, mr := setupRedisLocker(t, time.Second)
	ctx := context.Background()

	first, err := l.Lock(ctx, "a")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	second, err := l.Lock(ctx, "a")
	require.NoError(t, err)

	assert.ErrorIs(t, first.Unlock(ctx), ErrLeaseLost)
	assert.True(t, mr.Exists("voxgate:quota:lock:a"), "the new holder keeps its lease")

	require.NoError(t, second.Unlock(ctx))
}

func TestRedisLocker_ServerDown(t *testing.T) {
	l, mr := setupRedisLocker(t, time.Second)
	mr.Close()

	_, err := l.Lock(context.Background(), "a")
	assert.Error(t, err)
}
