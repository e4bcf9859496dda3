package quota

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voxgate/voxgate/internal/common"
)

// ErrLeaseLost is returned by Unlock when a Redis lease expired and was
// taken over before it was released.
var ErrLeaseLost = errors.New("quota lock lease lost")

// Locker hands out exclusive per-key leases.
type Locker interface {
	Lock(ctx context.Context, key string) (Lease, error)
}

// Lease is a held lock. Unlock must be called exactly once.
type Lease interface {
	Unlock(ctx context.Context) error
}

// LocalLocker is an in-process keyed mutex. Entries are dropped once no
// caller holds or waits for them.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localEntry
}

type localEntry struct {
	sem  chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localEntry)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (Lease, error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &localEntry{sem: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
		return &localLease{l: l, key: key, e: e}, nil
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}
}

func (l *LocalLocker) release(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

type localLease struct {
	l    *LocalLocker
	key  string
	e    *localEntry
	once sync.Once
}

func (le *localLease) Unlock(context.Context) error {
	le.once.Do(func() {
		<-le.e.sem
		le.l.release(le.key, le.e)
	})
	return nil
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes across server instances with SET NX PX leases.
type RedisLocker struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

// NewRedisLocker returns a locker whose leases expire after ttl if never
// released. ttl must exceed the longest span a lease is held for.
func NewRedisLocker(client redis.Cmdable, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		prefix: "voxgate:quota:lock:",
		ttl:    ttl,
		retry:  25 * time.Millisecond,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (Lease, error) {
	token, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, err
	}
	k := l.prefix + key

	for {
		ok, err := l.client.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return &redisLease{client: l.client, key: k, token: token}, nil
		}

		t := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

type redisLease struct {
	client redis.Cmdable
	key    string
	token  string
}

func (le *redisLease) Unlock(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, le.client, []string{le.key}, le.token).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLeaseLost
	}
	return nil
}
