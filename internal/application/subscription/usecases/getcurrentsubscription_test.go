package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/tenancy/internal/application/notification"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/domain/tenant"
)

func TestGetCurrentSubscriptionUseCase_Execute_Live(t *testing.T) {
	h := newHarness(t)
	h.addTenant(1)
	h.addPlan(10, "Starter", 0, 10, 30, false)
	sub := h.mustSubscribe(1, 10, vo.NoActor()).Subscription
	writes := h.tenants.writes

	got, err := NewGetCurrentSubscriptionUseCase(h.deps).Execute(context.Background(), 1)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sub.ID(), got.ID())
	assert.Equal(t, writes, h.tenants.writes)
}

func TestGetCurrentSubscriptionUseCase_Execute_LazyExpiry(t *testing.T) {
	h := newHarness(t)
	h.addTenant(1)
	h.addPlan(10, "Starter", 0, 10, 30, false)
	sub := h.mustSubscribe(1, 10, vo.NoActor()).Subscription
	h.clock.advanceDays(30)

	got, err := NewGetCurrentSubscriptionUseCase(h.deps).Execute(context.Background(), 1)

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, vo.StatusExpired, sub.Status())
	assert.Equal(t, tenant.ProjectionInactive, h.tenants.tenants[1].SubscriptionStatus())
	assert.Contains(t, h.port.kinds(), notification.KindSubscriptionExpired)
}

func TestGetCurrentSubscriptionUseCase_Execute_RepairsStaleProjection(t *testing.T) {
	h := newHarness(t)
	h.addTenant(1)
	h.addPlan(10, "Starter", 0, 10, 30, false)
	h.mustSubscribe(1, 10, vo.NoActor())
	h.tenants.tenants[1].ClearSubscription(h.clock.now)

	got, err := NewGetCurrentSubscriptionUseCase(h.deps).Execute(context.Background(), 1)

	require.NoError(t, err)
	require.NotNil(t, got)
	tn := h.tenants.tenants[1]
	assert.Equal(t, tenant.ProjectionActive, tn.SubscriptionStatus())
	require.NotNil(t, tn.CurrentPlanID())
	assert.Equal(t, uint(10), *tn.CurrentPlanID())
}

func TestGetCurrentSubscriptionUseCase_Execute_None(t *testing.T) {
	h := newHarness(t)
	h.addTenant(1)

	got, err := NewGetCurrentSubscriptionUseCase(h.deps).Execute(context.Background(), 1)

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, h.tenants.writes)
}
