package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/tenancy/internal/application/notification"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	apperrors "github.com/orris-inc/tenancy/internal/shared/errors"
)

func TestExtendSubscriptionUseCase_Execute_AddsDays(t *testing.T) {
	h := newHarness(t)
	h.addTenant(1)
	h.addPlan(10, "Starter", 0, 10, 30, false)
	sub := h.mustSubscribe(1, 10, vo.NoActor()).Subscription
	endDate := sub.EndDate()
	h.clock.advanceDays(10)

	res, err := NewExtendSubscriptionUseCase(h.deps).Execute(context.Background(), ExtendSubscriptionCommand{
		TenantID: 1,
		Days:     15,
		Actor:    vo.AdminActor(1),
	})

	require.NoError(t, err)
	assert.Equal(t, endDate.AddDate(0, 0, 15), res.Subscription.EndDate())
	assert.Equal(t, 20, res.DaysRemainingBefore)
	assert.Equal(t, 35, res.DaysRemainingAfter)
	assert.Equal(t, uint(10), res.Subscription.PlanID())
	assert.Contains(t, h.port.kinds(), notification.KindSubscriptionExtended)
}

func TestExtendSubscriptionUseCase_Execute_Errors(t *testing.T) {
	h := newHarness(t)
	h.addTenant(1)
	h.addPlan(10, "Starter", 0, 10, 30, false)
	uc := NewExtendSubscriptionUseCase(h.deps)

	_, err := uc.Execute(context.Background(), ExtendSubscriptionCommand{TenantID: 1, Days: 0})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = uc.Execute(context.Background(), ExtendSubscriptionCommand{TenantID: 1, Days: 5})
	assert.True(t, apperrors.IsNotFoundError(err))

	sub := h.mustSubscribe(1, 10, vo.NoActor()).Subscription
	endDate := sub.EndDate()
	h.employees.counts[1] = 11

	_, err = uc.Execute(context.Background(), ExtendSubscriptionCommand{TenantID: 1, Days: 5})
	assert.True(t, apperrors.IsPolicyViolationError(err))
	assert.Equal(t, endDate, sub.EndDate())
}
