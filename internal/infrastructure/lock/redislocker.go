// Package lock serializes lifecycle changes per tenant.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/tenancy/internal/shared/logger"
)

const (
	tenantLockKeyPrefix = "tenancy:lock:tenant:"
	retryInterval       = 50 * time.Millisecond
)

// ErrLockTimeout is returned when the lock is still held after the wait.
var ErrLockTimeout = errors.New("timed out waiting for tenant lock")

// releaseScript deletes the key only if it still holds our token, so a
// holder whose TTL elapsed cannot release the next holder's lock.
// KEYS[1] = lock key, ARGV[1] = token
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisTenantLocker is a SET NX PX lock shared by every process that points
// at the same Redis.
type RedisTenantLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	logger logger.Interface
}

func NewRedisTenantLocker(client *redis.Client, ttl, wait time.Duration, log logger.Interface) *RedisTenantLocker {
	return &RedisTenantLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
		logger: log,
	}
}

func (l *RedisTenantLocker) buildKey(tenantID uint) string {
	return fmt.Sprintf("%s%d", tenantLockKeyPrefix, tenantID)
}

// Lock retries until the lock is free, ctx is done or the wait elapses.
func (l *RedisTenantLocker) Lock(ctx context.Context, tenantID uint) (func(), error) {
	key := l.buildKey(tenantID)
	token := uuid.NewString()

	deadline := time.Now().Add(l.wait)
	for {
		acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire tenant lock: %w", err)
		}
		if acquired {
			break
		}
		if !time.Now().Before(deadline) {
			return nil, ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	return func() {
		// The caller's ctx may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		released, err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Int()
		if err != nil {
			l.logger.Warnw("failed to release tenant lock", "tenant_id", tenantID, "error", err)
			return
		}
		if released == 0 {
			l.logger.Warnw("tenant lock expired before release", "tenant_id", tenantID, "ttl", l.ttl)
		}
	}, nil
}
