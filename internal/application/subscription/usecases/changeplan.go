package usecases

import (
	"context"

	"github.com/orris-inc/tenancy/internal/domain/subscription"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
)

type ChangePlanCommand struct {
	TenantID  uint
	NewPlanID uint
	Actor     vo.Actor
}

type ChangePlanResult struct {
	Subscription *subscription.Subscription
	Action       vo.PlanChangeAction
	OldPlan      vo.PlanSnapshot
	NewPlan      vo.PlanSnapshot
}

// ChangePlanUseCase moves an existing subscription to another plan under
// the normal policy. Same-terms targets renew (dates stack), better plans
// upgrade (dates restart).
type ChangePlanUseCase struct {
	subscribe *SubscribeUseCase
}

func NewChangePlanUseCase(subscribe *SubscribeUseCase) *ChangePlanUseCase {
	return &ChangePlanUseCase{subscribe: subscribe}
}

func (uc *ChangePlanUseCase) Execute(ctx context.Context, cmd ChangePlanCommand) (*ChangePlanResult, error) {
	res, err := uc.subscribe.execute(ctx, SubscribeCommand{
		TenantID: cmd.TenantID,
		PlanID:   cmd.NewPlanID,
		Actor:    cmd.Actor,
	}, true)
	if err != nil {
		return nil, err
	}

	out := &ChangePlanResult{
		Subscription: res.Subscription,
		Action:       res.Action,
		NewPlan:      res.Subscription.Plan(),
	}
	if res.PreviousPlan != nil {
		out.OldPlan = *res.PreviousPlan
	}
	return out, nil
}
