package usecases

import (
	"context"

	"github.com/orris-inc/tenancy/internal/domain/subscription"
	apperrors "github.com/orris-inc/tenancy/internal/shared/errors"
)

type GetCurrentSubscriptionUseCase struct {
	lifecycle
}

func NewGetCurrentSubscriptionUseCase(deps Deps) *GetCurrentSubscriptionUseCase {
	return &GetCurrentSubscriptionUseCase{lifecycle: newLifecycle(deps)}
}

// Execute returns the tenant's live subscription or nil. A lapsed row or a
// stale projection found on the way is repaired under the tenant lock.
func (uc *GetCurrentSubscriptionUseCase) Execute(ctx context.Context, tenantID uint) (*subscription.Subscription, error) {
	if tenantID == 0 {
		return nil, apperrors.NewValidationError("tenant ID is required")
	}

	now := uc.now()
	t, err := uc.loadTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	live, lapsed, err := uc.loadActive(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}
	if lapsed == nil && t.ProjectionMatches(live) {
		return live, nil
	}

	unlock, err := uc.lockTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	live, _, err = uc.reconcile(ctx, tenantID, now)
	if err != nil {
		uc.Logger.Errorw("failed to reconcile subscription", "tenant_id", tenantID, "error", err)
		return nil, err
	}
	return live, nil
}
