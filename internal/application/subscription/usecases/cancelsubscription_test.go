package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/tenancy/internal/application/notification"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/domain/tenant"
	apperrors "github.com/orris-inc/tenancy/internal/shared/errors"
)

func TestCancelSubscriptionUseCase_Execute(t *testing.T) {
	t.Run("nothing active", func(t *testing.T) {
		h := newHarness(t)
		h.addTenant(1)

		res, err := NewCancelSubscriptionUseCase(h.deps).Execute(context.Background(), CancelSubscriptionCommand{TenantID: 1})

		require.NoError(t, err)
		assert.Equal(t, 0, res.CancelledCount)
		assert.Equal(t, tenant.ProjectionInactive, res.TenantStatus)
		assert.Empty(t, h.port.kinds())
	})

	t.Run("active subscription", func(t *testing.T) {
		h := newHarness(t)
		h.addTenant(1)
		h.addPlan(10, "Starter", 0, 10, 30, false)
		sub := h.mustSubscribe(1, 10, vo.NoActor()).Subscription

		res, err := NewCancelSubscriptionUseCase(h.deps).Execute(context.Background(), CancelSubscriptionCommand{
			TenantID: 1,
			Actor:    vo.AdminActor(2),
		})

		require.NoError(t, err)
		assert.Equal(t, 1, res.CancelledCount)
		assert.Equal(t, tenant.ProjectionInactive, res.TenantStatus)
		assert.Equal(t, vo.StatusExpired, sub.Status())
		assert.Nil(t, h.tenants.tenants[1].CurrentPlanID())
		assert.Contains(t, h.port.kinds(), notification.KindSubscriptionCancelled)
	})

	t.Run("lapsed subscription is not counted", func(t *testing.T) {
		h := newHarness(t)
		h.addTenant(1)
		h.addPlan(10, "Starter", 0, 10, 30, false)
		sub := h.mustSubscribe(1, 10, vo.NoActor()).Subscription
		h.clock.advanceDays(45)

		res, err := NewCancelSubscriptionUseCase(h.deps).Execute(context.Background(), CancelSubscriptionCommand{TenantID: 1})

		require.NoError(t, err)
		assert.Equal(t, 0, res.CancelledCount)
		assert.Equal(t, vo.StatusExpired, sub.Status())
	})

	t.Run("pending checkout", func(t *testing.T) {
		h := newHarness(t)
		h.addTenant(1)
		h.addPlan(20, "Pro", 2000, 20, 30, false)
		pending := pendingCheckout(t, h, 20, "cs_1")

		res, err := NewCancelSubscriptionUseCase(h.deps).Execute(context.Background(), CancelSubscriptionCommand{TenantID: 1})

		require.NoError(t, err)
		assert.Equal(t, 0, res.CancelledCount)
		assert.Equal(t, vo.StatusCancelled, pending.Subscription.Status())
		assert.Equal(t, tenant.ProjectionInactive, res.TenantStatus)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		h := newHarness(t)
		_, err := NewCancelSubscriptionUseCase(h.deps).Execute(context.Background(), CancelSubscriptionCommand{TenantID: 5})
		assert.True(t, apperrors.IsNotFoundError(err))
	})
}
