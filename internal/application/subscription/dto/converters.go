package dto

import (
	"time"

	"github.com/orris-inc/tenancy/internal/application/entitlement"
	"github.com/orris-inc/tenancy/internal/application/subscription/usecases"
	"github.com/orris-inc/tenancy/internal/domain/subscription"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/shared/mapper"
	"github.com/orris-inc/tenancy/internal/shared/money"
)

func ToPlanDTO(plan *subscription.Plan) *PlanDTO {
	if plan == nil {
		return nil
	}
	out := &PlanDTO{
		ID:             plan.ID(),
		Name:           plan.Name(),
		Slug:           plan.Slug(),
		Description:    plan.Description(),
		Price:          plan.Price(),
		Currency:       plan.Currency(),
		DisplayPrice:   money.Format(plan.Price(), plan.Currency()),
		MaxEntitlement: plan.MaxEntitlement(),
		DurationDays:   plan.DurationDays(),
		IsTrial:        plan.IsTrial(),
		Status:         string(plan.Status()),
		SortOrder:      plan.SortOrder(),
	}
	if p := plan.PaymentProvider(); p != nil {
		out.PaymentProvider = p.String()
	}
	return out
}

func ToPlanListDTO(result *usecases.ListPlansResult) *PlanListDTO {
	plans := mapper.MapSlicePtr(result.Plans, ToPlanDTO)
	if plans == nil {
		plans = []*PlanDTO{}
	}
	return &PlanListDTO{Plans: plans, Total: result.Total}
}

func ToPlanSnapshotDTO(s vo.PlanSnapshot) PlanSnapshotDTO {
	return PlanSnapshotDTO{
		PlanID:         s.PlanID,
		Name:           s.Name,
		Price:          s.Price,
		Currency:       s.Currency,
		DisplayPrice:   money.Format(s.Price, s.Currency),
		MaxEntitlement: s.MaxEntitlement,
		DurationDays:   s.DurationDays,
		IsTrial:        s.IsTrial,
	}
}

func toPlanSnapshotDTOPtr(s *vo.PlanSnapshot) *PlanSnapshotDTO {
	if s == nil {
		return nil
	}
	out := ToPlanSnapshotDTO(*s)
	return &out
}

// ToSubscriptionDTO renders sub with days remaining counted from now.
func ToSubscriptionDTO(sub *subscription.Subscription, now time.Time) *SubscriptionDTO {
	if sub == nil {
		return nil
	}
	out := &SubscriptionDTO{
		ID:                   sub.ID(),
		TenantID:             sub.TenantID(),
		Status:               sub.Status().String(),
		Plan:                 ToPlanSnapshotDTO(sub.Plan()),
		StartDate:            sub.StartDate(),
		EndDate:              sub.EndDate(),
		CustomEntitlement:    sub.CustomEntitlement(),
		EffectiveEntitlement: sub.EffectiveEntitlement(),
		ActivatedBy:          sub.ActivatedBy().String(),
		CreatedAt:            sub.CreatedAt(),
		UpdatedAt:            sub.UpdatedAt(),
	}
	if sub.Status() == vo.StatusActive {
		out.DaysRemaining = sub.DaysRemaining(now)
	}
	return out
}

func ToSubscribeResultDTO(res *usecases.SubscribeResult, now time.Time) *SubscribeResultDTO {
	return &SubscribeResultDTO{
		Message:         res.Message,
		Action:          res.Action.String(),
		RequiresPayment: res.RequiresPayment,
		CheckoutURL:     res.CheckoutURL,
		Subscription:    ToSubscriptionDTO(res.Subscription, now),
		PreviousPlan:    toPlanSnapshotDTOPtr(res.PreviousPlan),
	}
}

func ToChangePlanResultDTO(res *usecases.ChangePlanResult, now time.Time) *ChangePlanResultDTO {
	return &ChangePlanResultDTO{
		Action:       res.Action.String(),
		OldPlan:      ToPlanSnapshotDTO(res.OldPlan),
		NewPlan:      ToPlanSnapshotDTO(res.NewPlan),
		Subscription: ToSubscriptionDTO(res.Subscription, now),
	}
}

func ToCancelResultDTO(res *usecases.CancelSubscriptionResult) *CancelResultDTO {
	return &CancelResultDTO{
		CancelledCount: res.CancelledCount,
		TenantStatus:   string(res.TenantStatus),
	}
}

func ToExtendResultDTO(res *usecases.ExtendSubscriptionResult, now time.Time) *ExtendResultDTO {
	return &ExtendResultDTO{
		Subscription:        ToSubscriptionDTO(res.Subscription, now),
		DaysRemainingBefore: res.DaysRemainingBefore,
		DaysRemainingAfter:  res.DaysRemainingAfter,
	}
}

func ToConfirmPaymentResultDTO(res *usecases.ConfirmPaymentResult, now time.Time) *ConfirmPaymentResultDTO {
	return &ConfirmPaymentResultDTO{
		Activated:        res.Activated,
		AlreadyConfirmed: res.AlreadyConfirmed,
		Subscription:     ToSubscriptionDTO(res.Subscription, now),
	}
}

func ToPlanChangeValidationDTO(res *usecases.PlanChangeValidation) *PlanChangeValidationDTO {
	return &PlanChangeValidationDTO{
		Allowed:      res.Allowed,
		Action:       res.Action.String(),
		Reason:       res.Reason,
		CurrentUsage: res.CurrentUsage,
		CurrentPlan:  toPlanSnapshotDTOPtr(res.CurrentPlan),
		TargetPlan:   ToPlanSnapshotDTO(res.TargetPlan),
	}
}

func ToAllowanceDTO(a *entitlement.Allowance) *AllowanceDTO {
	return &AllowanceDTO{
		MaxAllowed: a.MaxAllowed,
		Current:    a.Current,
		Remaining:  a.Remaining,
		CanAdd:     a.CanAdd,
	}
}
