package lock

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

	"github.com/orris-inc/tenancy/internal/shared/logger"
)

type locker interface {
	Lock(ctx context.Context, tenantID uint) (func(), error)
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func assertMutualExclusion(t *testing.T, l locker) {
	t.Helper()

	var (
		wg      sync.WaitGroup
		holders atomic.Int32
		maxSeen atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), 1)
			if !assert.NoError(t, err) {
				return
			}
			n := holders.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(5 * time.Millisecond)
			holders.Add(-1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen.Load())
}

func TestRedisTenantLocker_MutualExclusion(t *testing.T) {
	_, client := setupTestRedis(t)
	assertMutualExclusion(t, NewRedisTenantLocker(client, 5*time.Second, 5*time.Second, logger.NewNopLogger()))
}

func TestRedisTenantLocker_TimesOut(t *testing.T) {
	_, client := setupTestRedis(t)
	l := NewRedisTenantLocker(client, 5*time.Second, 100*time.Millisecond, logger.NewNopLogger())

	unlock, err := l.Lock(context.Background(), 7)
	require.NoError(t, err)
	defer unlock()

	_, err = l.Lock(context.Background(), 7)
	assert.ErrorIs(t, err, ErrLockTimeout)

	// Other tenants are unaffected.
	other, err := l.Lock(context.Background(), 8)
	require.NoError(t, err)
	other()
}

func TestRedisTenantLocker_StaleReleaseKeepsNewHolder(t *testing.T) {
	mr, client := setupTestRedis(t)
	l := NewRedisTenantLocker(client, time.Second, 100*time.Millisecond, logger.NewNopLogger())

	staleUnlock, err := l.Lock(context.Background(), 3)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	unlock, err := l.Lock(context.Background(), 3)
	require.NoError(t, err)
	defer unlock()

	staleUnlock()
	assert.True(t, mr.Exists(l.buildKey(3)), "stale release must not drop the new holder's lock")
}

func TestLocalTenantLocker_MutualExclusion(t *testing.T) {
	assertMutualExclusion(t, NewLocalTenantLocker(5*time.Second))
}

func TestLocalTenantLocker_ContextCancel(t *testing.T) {
	l := NewLocalTenantLocker(time.Minute)

	unlock, err := l.Lock(context.Background(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Lock(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)

	unlock()
	unlock()

	again, err := l.Lock(context.Background(), 1)
	require.NoError(t, err)
	again()
}

func (l *LocalTenantLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

func TestLocalTenantLocker_DropsIdleSlots(t *testing.T) {
	l := NewLocalTenantLocker(50 * time.Millisecond)

	for id := uint(1); id <= 100; id++ {
		unlock, err := l.Lock(context.Background(), id)
		require.NoError(t, err)
		unlock()
	}
	assert.Zero(t, l.held())

	unlock, err := l.Lock(context.Background(), 5)
	require.NoError(t, err)
	_, err = l.Lock(context.Background(), 5)
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.Equal(t, 1, l.held())

	unlock()
	assert.Zero(t, l.held())
}
