package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

func newRedisLocker(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, "test:", time.Second), mr
}

func lockers(t *testing.T) map[string]locker {
	r, _ := newRedisLocker(t)
	return map[string]locker{"local": NewLocal(), "redis": r}
}

func TestMutualExclusion(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				inside  int
				maxSeen int
			)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					unlock, err := l.Lock(context.Background(), "emp-1:2026-10-15")
					if !assert.NoError(t, err) {
						return
					}
					mu.Lock()
					inside++
					if inside > maxSeen {
						maxSeen = inside
					}
					mu.Unlock()
					time.Sleep(2 * time.Millisecond)
					mu.Lock()
					inside--
					mu.Unlock()
					unlock()
				}()
			}
			wg.Wait()
			assert.Equal(t, 1, maxSeen)
		})
	}
}

func TestIndependentKeys(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlockA, err := l.Lock(context.Background(), "a")
			require.NoError(t, err)
			defer unlockA()

			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()
			unlockB, err := l.Lock(ctx, "b")
			require.NoError(t, err)
			unlockB()
		})
	}
}

func TestLockHonoursContext(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlock, err := l.Lock(context.Background(), "busy")
			require.NoError(t, err)
			defer unlock()

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			_, err = l.Lock(ctx, "busy")
			assert.ErrorIs(t, err, ErrNotAcquired)
		})
	}
}

func TestLocalDropsIdleEntries(t *testing.T) {
	l := NewLocal()
	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()
	unlock()
	assert.Empty(t, l.locks)
}

func TestRedisReleaseOnlyOwnToken(t *testing.T) {
	r, mr := newRedisLocker(t)
	unlock, err := r.Lock(context.Background(), "k")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists("test:k"))

	other, err := r.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock()
	assert.True(t, mr.Exists("test:k"), "stale holder must not release a newer lock")
	other()
	assert.False(t, mr.Exists("test:k"))
}
