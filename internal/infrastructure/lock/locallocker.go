package lock

import (
	"context"
	"sync"
	"time"
)

// LocalTenantLocker serializes within one process. Used when Redis is
// disabled, which is only safe for single-instance deployments.
type LocalTenantLocker struct {
	mu    sync.Mutex
	slots map[uint]*tenantSlot
	wait  time.Duration
}

// tenantSlot is dropped from the map once no caller holds or waits on it.
type tenantSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocalTenantLocker(wait time.Duration) *LocalTenantLocker {
	return &LocalTenantLocker{
		slots: make(map[uint]*tenantSlot),
		wait:  wait,
	}
}

func (l *LocalTenantLocker) acquire(tenantID uint) *tenantSlot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[tenantID]
	if !ok {
		s = &tenantSlot{ch: make(chan struct{}, 1)}
		l.slots[tenantID] = s
	}
	s.refs++
	return s
}

func (l *LocalTenantLocker) release(tenantID uint, s *tenantSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s.refs--
	if s.refs == 0 {
		delete(l.slots, tenantID)
	}
}

func (l *LocalTenantLocker) Lock(ctx context.Context, tenantID uint) (func(), error) {
	s := l.acquire(tenantID)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(tenantID, s)
		return nil, ctx.Err()
	case <-timer.C:
		l.release(tenantID, s)
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.release(tenantID, s)
		})
	}, nil
}
