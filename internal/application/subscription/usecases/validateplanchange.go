package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/tenancy/internal/domain/subscription"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	apperrors "github.com/orris-inc/tenancy/internal/shared/errors"
)

type PlanChangeValidation struct {
	Allowed      bool
	Action       vo.PlanChangeAction
	Reason       string
	CurrentUsage int
	CurrentPlan  *vo.PlanSnapshot
	TargetPlan   vo.PlanSnapshot
}

// ValidatePlanChangeUseCase answers what ChangePlan or Subscribe would do,
// without taking the lock or writing anything.
type ValidatePlanChangeUseCase struct {
	lifecycle
}

func NewValidatePlanChangeUseCase(deps Deps) *ValidatePlanChangeUseCase {
	return &ValidatePlanChangeUseCase{lifecycle: newLifecycle(deps)}
}

func (uc *ValidatePlanChangeUseCase) Execute(ctx context.Context, tenantID, planID uint) (*PlanChangeValidation, error) {
	if tenantID == 0 || planID == 0 {
		return nil, apperrors.NewValidationError("tenant ID and plan ID are required")
	}

	now := uc.now()
	if _, err := uc.loadTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	plan, err := uc.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	live, _, err := uc.loadActive(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}
	usage, err := uc.countEmployees(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	target := plan.Snapshot()
	current := snapshotPtr(live)
	decision := subscription.DecidePlanChange(current, usage, target)
	out := &PlanChangeValidation{
		Allowed:      decision.Allowed,
		Action:       decision.Action,
		Reason:       decision.Reason,
		CurrentUsage: usage,
		CurrentPlan:  current,
		TargetPlan:   target,
	}

	if !plan.IsActive() {
		out.Allowed = false
		out.Reason = fmt.Sprintf("plan %s is no longer offered", plan.Name())
		return out, nil
	}
	if target.IsTrial {
		used, err := uc.Subscriptions.HasTrialHistory(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("failed to check trial history: %w", err)
		}
		if used {
			out.Allowed = false
			out.Reason = "the trial has already been used by this tenant"
		}
	}
	return out, nil
}
