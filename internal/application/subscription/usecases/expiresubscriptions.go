package usecases

import (
	"context"
	"fmt"
)

// ExpireSubscriptionsUseCase is the nightly sweep. It persists EXPIRED for
// lapsed rows and clears their tenants' projections, through the same path
// lazy reads use.
type ExpireSubscriptionsUseCase struct {
	lifecycle
}

func NewExpireSubscriptionsUseCase(deps Deps) *ExpireSubscriptionsUseCase {
	return &ExpireSubscriptionsUseCase{lifecycle: newLifecycle(deps)}
}

// Execute returns the number of subscriptions marked as expired.
func (uc *ExpireSubscriptionsUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.now()
	lapsed, err := uc.Subscriptions.FindLapsed(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to find lapsed subscriptions: %w", err)
	}
	if len(lapsed) == 0 {
		return 0, nil
	}

	uc.Logger.Infow("found lapsed subscriptions to process", "count", len(lapsed))

	seen := make(map[uint]bool, len(lapsed))
	expiredCount := 0
	for _, sub := range lapsed {
		if err := ctx.Err(); err != nil {
			return expiredCount, err
		}
		tenantID := sub.TenantID()
		if seen[tenantID] {
			continue
		}
		seen[tenantID] = true

		expired, err := uc.expireTenant(ctx, tenantID)
		if err != nil {
			uc.Logger.Errorw("failed to expire subscription",
				"tenant_id", tenantID,
				"subscription_id", sub.ID(),
				"error", err,
			)
			continue
		}
		if expired {
			expiredCount++
		}
	}

	uc.Metrics.RecordExpired(expiredCount)
	return expiredCount, nil
}

func (uc *ExpireSubscriptionsUseCase) expireTenant(ctx context.Context, tenantID uint) (bool, error) {
	unlock, err := uc.lockTenant(ctx, tenantID)
	if err != nil {
		return false, err
	}
	defer unlock()

	_, expired, err := uc.reconcile(ctx, tenantID, uc.now())
	if err != nil {
		return false, err
	}
	return expired != nil, nil
}
