package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/tenancy/internal/application/notification"
	"github.com/orris-inc/tenancy/internal/domain/subscription"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	apperrors "github.com/orris-inc/tenancy/internal/shared/errors"
)

type ExtendSubscriptionCommand struct {
	TenantID uint
	Days     int
	Actor    vo.Actor
}

type ExtendSubscriptionResult struct {
	Subscription        *subscription.Subscription
	DaysRemainingBefore int
	DaysRemainingAfter  int
}

// ExtendSubscriptionUseCase adds days to the live subscription's end date.
// It never renews or changes the plan.
type ExtendSubscriptionUseCase struct {
	lifecycle
}

func NewExtendSubscriptionUseCase(deps Deps) *ExtendSubscriptionUseCase {
	return &ExtendSubscriptionUseCase{lifecycle: newLifecycle(deps)}
}

func (uc *ExtendSubscriptionUseCase) Execute(ctx context.Context, cmd ExtendSubscriptionCommand) (*ExtendSubscriptionResult, error) {
	if cmd.TenantID == 0 {
		return nil, apperrors.NewValidationError("tenant ID is required")
	}
	if cmd.Days < 1 {
		return nil, apperrors.NewValidationError("days must be at least 1")
	}

	unlock, err := uc.lockTenant(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := uc.now()
	if _, err := uc.loadTenant(ctx, cmd.TenantID); err != nil {
		return nil, err
	}
	live, _, err := uc.loadActive(ctx, cmd.TenantID, now)
	if err != nil {
		return nil, err
	}
	if live == nil {
		return nil, apperrors.NewNotFoundError("no active subscription to extend")
	}

	usage, err := uc.countEmployees(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}
	if allowed := live.EffectiveEntitlement(); usage > allowed {
		uc.Logger.Errorw("usage exceeds entitlement on active subscription",
			"tenant_id", cmd.TenantID,
			"subscription_id", live.ID(),
			"usage", usage,
			"allowed", allowed,
		)
		return nil, apperrors.NewPolicyViolationError(
			fmt.Sprintf("cannot extend: %d records in use exceed the %d allowed", usage, allowed))
	}

	before := live.DaysRemaining(now)
	err = uc.TxManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := live.Extend(cmd.Days, now); err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		if err := uc.Subscriptions.Update(txCtx, live); err != nil {
			return fmt.Errorf("failed to extend subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		uc.Logger.Errorw("failed to extend subscription", "tenant_id", cmd.TenantID, "error", err)
		return nil, err
	}

	result := &ExtendSubscriptionResult{
		Subscription:        live,
		DaysRemainingBefore: before,
		DaysRemainingAfter:  live.DaysRemaining(now),
	}

	uc.Logger.Infow("subscription extended",
		"tenant_id", cmd.TenantID,
		"subscription_id", live.ID(),
		"days", cmd.Days,
		"end_date", live.EndDate(),
		"actor", cmd.Actor.String(),
	)
	uc.notify(ctx, cmd.TenantID, notification.KindSubscriptionExtended,
		"Subscription extended",
		fmt.Sprintf("Your subscription has been extended by %d days and now ends on %s.",
			cmd.Days, live.EndDate().Format("2006-01-02")))
	return result, nil
}
