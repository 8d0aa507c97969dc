package usecases

import (
	"context"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/tenancy/internal/application/notification"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

func TestSendExpiryRemindersUseCase_Execute_ExactDayMatch(t *testing.T) {
	h := newHarness(t)
	durations := map[uint]int{1: 7, 2: 8, 3: 14, 4: 30, 5: 31}
	for id, days := range durations {
		h.addTenant(id)
		h.addPlan(id, "Plan", 0, 10, days, false)
		h.mustSubscribe(id, id, vo.NoActor())
	}
	h.port.sent = nil

	count, err := NewSendExpiryRemindersUseCase(h.deps, []int{7, 14, 30}).Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	sort.Ints(h.metrics.reminders)
	assert.Equal(t, []int{7, 14, 30}, h.metrics.reminders)
	for _, kind := range h.port.kinds() {
		assert.Equal(t, notification.KindExpiryReminder, kind)
	}
}

func TestSendExpiryRemindersUseCase_Execute_NextDaySendsAgainOnlyAtThreshold(t *testing.T) {
	h := newHarness(t)
	h.addTenant(1)
	h.addPlan(1, "Plan", 0, 10, 15, false)
	h.mustSubscribe(1, 1, vo.NoActor())
	uc := NewSendExpiryRemindersUseCase(h.deps, nil)

	count, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	h.clock.advanceDays(1)
	count, err = uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	h.clock.advanceDays(1)
	count, err = uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSendExpiryRemindersUseCase_ProcessReminders_DeliveryFailure(t *testing.T) {
	h := newHarness(t)
	h.addTenant(1)
	h.addPlan(1, "Plan", 0, 10, 7, false)
	h.mustSubscribe(1, 1, vo.NoActor())
	h.port.fail = true

	err := NewSendExpiryRemindersUseCase(h.deps, []int{7}).ProcessReminders(context.Background())

	require.NoError(t, err)
	assert.Empty(t, h.metrics.reminders)
}

type slowPort struct {
	delay     time.Duration
	delivered atomic.Int32
}

func (p *slowPort) Notify(ctx context.Context, _ uint, _ notification.Notification) error {
	select {
	case <-time.After(p.delay):
		p.delivered.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestSendExpiryRemindersUseCase_Execute_DeliversBeforeReturning(t *testing.T) {
	h := newHarness(t)
	h.addTenant(1)
	h.addPlan(1, "Plan", 0, 10, 7, false)
	h.mustSubscribe(1, 1, vo.NoActor())

	port := &slowPort{delay: 50 * time.Millisecond}
	deps := h.deps
	deps.Notifier = notification.NewDispatcher(port, logger.NewNopLogger(), time.Second)

	count, err := NewSendExpiryRemindersUseCase(deps, []int{7}).Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, int32(1), port.delivered.Load())
}

func TestSendExpiryRemindersUseCase_Execute_CountsOnlyDelivered(t *testing.T) {
	h := newHarness(t)
	h.addTenant(1)
	h.addPlan(1, "Plan", 0, 10, 7, false)
	h.mustSubscribe(1, 1, vo.NoActor())

	// Deliveries outlive the per-message timeout and are not counted.
	port := &slowPort{delay: time.Second}
	deps := h.deps
	deps.ReminderNotifier = notification.NewDispatcher(port, logger.NewNopLogger(), 20*time.Millisecond).Inline()

	count, err := NewSendExpiryRemindersUseCase(deps, []int{7}).Execute(context.Background())

	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, h.metrics.reminders)
	assert.Zero(t, port.delivered.Load())
}
