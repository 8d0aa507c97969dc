package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/tenancy/internal/application/notification"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/domain/tenant"
	apperrors "github.com/orris-inc/tenancy/internal/shared/errors"
)

type CancelSubscriptionCommand struct {
	TenantID uint
	Actor    vo.Actor
}

type CancelSubscriptionResult struct {
	// CancelledCount counts live ACTIVE subscriptions that were ended.
	// Abandoned PENDING checkouts are cancelled too but not counted.
	CancelledCount int
	TenantStatus   tenant.ProjectionStatus
}

type CancelSubscriptionUseCase struct {
	lifecycle
}

func NewCancelSubscriptionUseCase(deps Deps) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{lifecycle: newLifecycle(deps)}
}

// Execute ends the tenant's subscription. Cancelling a tenant with nothing
// active returns a zero count, never an error.
func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) (*CancelSubscriptionResult, error) {
	if cmd.TenantID == 0 {
		return nil, apperrors.NewValidationError("tenant ID is required")
	}

	unlock, err := uc.lockTenant(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := uc.now()
	t, err := uc.loadTenant(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}

	result := &CancelSubscriptionResult{}
	pendingCancelled := 0
	var planName string

	err = uc.TxManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		live, lapsed, err := uc.loadActive(txCtx, cmd.TenantID, now)
		if err != nil {
			return err
		}
		if lapsed != nil {
			if err := uc.expireLapsed(txCtx, lapsed, now); err != nil {
				return err
			}
		}
		if live != nil {
			if err := live.Expire(now); err != nil {
				return err
			}
			if err := uc.Subscriptions.Update(txCtx, live); err != nil {
				return fmt.Errorf("failed to cancel subscription: %w", err)
			}
			planName = live.Plan().Name
			result.CancelledCount = 1
		}

		pendingCancelled, err = uc.cancelPending(txCtx, cmd.TenantID, 0, now)
		if err != nil {
			return err
		}

		t.ClearSubscription(now)
		return uc.saveProjection(txCtx, t)
	})
	if err != nil {
		uc.Logger.Errorw("failed to cancel subscription", "tenant_id", cmd.TenantID, "error", err)
		return nil, err
	}
	result.TenantStatus = t.SubscriptionStatus()

	uc.Logger.Infow("subscription cancelled",
		"tenant_id", cmd.TenantID,
		"cancelled_count", result.CancelledCount,
		"pending_cancelled", pendingCancelled,
		"actor", cmd.Actor.String(),
	)
	if result.CancelledCount > 0 {
		uc.notify(ctx, cmd.TenantID, notification.KindSubscriptionCancelled,
			"Subscription cancelled",
			fmt.Sprintf("Your **%s** subscription has been cancelled.", planName))
	}
	return result, nil
}
