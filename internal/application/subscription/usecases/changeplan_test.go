package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	apperrors "github.com/orris-inc/tenancy/internal/shared/errors"
)

func TestChangePlanUseCase_Execute(t *testing.T) {
	t.Run("requires a current subscription", func(t *testing.T) {
		h := newHarness(t)
		h.addTenant(1)
		h.addPlan(20, "Pro", 0, 20, 30, false)

		_, err := NewChangePlanUseCase(h.subscribe()).Execute(context.Background(), ChangePlanCommand{TenantID: 1, NewPlanID: 20})

		require.Error(t, err)
		assert.True(t, apperrors.IsNotFoundError(err))
		assert.Empty(t, h.subs.rows)
	})

	t.Run("upgrade", func(t *testing.T) {
		h := newHarness(t)
		h.addTenant(1)
		h.addPlan(10, "Basic", 0, 10, 30, false)
		h.addPlan(20, "Pro", 1500, 20, 30, false)
		h.mustSubscribe(1, 10, vo.NoActor())

		res, err := NewChangePlanUseCase(h.subscribe()).Execute(context.Background(), ChangePlanCommand{
			TenantID:  1,
			NewPlanID: 20,
			Actor:     vo.SellerActor(4),
		})

		require.NoError(t, err)
		assert.Equal(t, vo.ActionUpgrade, res.Action)
		assert.Equal(t, "Basic", res.OldPlan.Name)
		assert.Equal(t, "Pro", res.NewPlan.Name)
		assert.Equal(t, vo.StatusActive, res.Subscription.Status())
	})

	t.Run("downgrade rejected", func(t *testing.T) {
		h := newHarness(t)
		h.addTenant(1)
		h.addPlan(10, "Basic", 0, 10, 30, false)
		h.addPlan(20, "Pro", 0, 20, 30, false)
		h.mustSubscribe(1, 20, vo.NoActor())

		_, err := NewChangePlanUseCase(h.subscribe()).Execute(context.Background(), ChangePlanCommand{TenantID: 1, NewPlanID: 10})

		require.Error(t, err)
		assert.True(t, apperrors.IsPolicyViolationError(err))
	})
}
