package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orris-inc/tenancy/internal/application/notification"
	"github.com/orris-inc/tenancy/internal/application/payment/paymentgateway"
	"github.com/orris-inc/tenancy/internal/domain/payment"
	"github.com/orris-inc/tenancy/internal/domain/subscription"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/domain/tenant"
	apperrors "github.com/orris-inc/tenancy/internal/shared/errors"
	"github.com/orris-inc/tenancy/internal/shared/money"
)

type SubscribeCommand struct {
	TenantID uint
	PlanID   uint
	Actor    vo.Actor
	// Override skips the plan change policy and the trial rule. Only admins
	// and supadmins may set it.
	Override bool
	// CustomEntitlement raises or lowers the cap for this subscription.
	// Admin only.
	CustomEntitlement *int
}

type SubscribeResult struct {
	Message         string
	RequiresPayment bool
	CheckoutURL     string
	Subscription    *subscription.Subscription
	Action          vo.PlanChangeAction
	PreviousPlan    *vo.PlanSnapshot
}

type SubscribeUseCase struct {
	lifecycle
}

func NewSubscribeUseCase(deps Deps) *SubscribeUseCase {
	return &SubscribeUseCase{lifecycle: newLifecycle(deps)}
}

func (uc *SubscribeUseCase) Execute(ctx context.Context, cmd SubscribeCommand) (*SubscribeResult, error) {
	return uc.execute(ctx, cmd, false)
}

// plannedChange is everything decided before the write transaction starts.
type plannedChange struct {
	tenant   *tenant.Tenant
	target   vo.PlanSnapshot
	live     *subscription.Subscription
	lapsed   *subscription.Subscription
	action   vo.PlanChangeAction
	checkout *paymentgateway.Checkout
	gateway  paymentgateway.Gateway
	ref      string
}

func (uc *SubscribeUseCase) execute(ctx context.Context, cmd SubscribeCommand, requireCurrent bool) (*SubscribeResult, error) {
	if err := validateSubscribeCommand(cmd); err != nil {
		return nil, err
	}

	unlock, err := uc.lockTenant(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := uc.now()
	pc, err := uc.prepare(ctx, cmd, requireCurrent, now)
	if err != nil {
		return nil, err
	}

	var sub *subscription.Subscription
	err = uc.TxManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var applyErr error
		sub, applyErr = uc.apply(txCtx, cmd, pc, now)
		return applyErr
	})
	if err != nil {
		uc.Metrics.RecordTransition(pc.action, OutcomeFailed)
		uc.Logger.Errorw("failed to apply subscription change",
			"tenant_id", cmd.TenantID,
			"plan_id", cmd.PlanID,
			"action", pc.action,
			"error", err,
		)
		return nil, mapWriteError(err)
	}

	result := &SubscribeResult{
		Subscription: sub,
		Action:       pc.action,
		PreviousPlan: snapshotPtr(pc.live),
	}
	uc.finish(ctx, cmd, pc, result)
	return result, nil
}

func validateSubscribeCommand(cmd SubscribeCommand) error {
	if cmd.TenantID == 0 {
		return apperrors.NewValidationError("tenant ID is required")
	}
	if cmd.PlanID == 0 {
		return apperrors.NewValidationError("plan ID is required")
	}
	if cmd.CustomEntitlement != nil && *cmd.CustomEntitlement < 1 {
		return apperrors.NewValidationError("custom entitlement must be at least 1")
	}
	if (cmd.Override || cmd.CustomEntitlement != nil) && !cmd.Actor.CanOverride() {
		return apperrors.NewForbiddenError("only admins may override plan rules")
	}
	return nil
}

// prepare loads state, runs the policy and, for a new paid subscription,
// obtains the checkout. Nothing is written here.
func (uc *SubscribeUseCase) prepare(ctx context.Context, cmd SubscribeCommand, requireCurrent bool, now time.Time) (*plannedChange, error) {
	t, err := uc.loadTenant(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}
	plan, err := uc.loadPlan(ctx, cmd.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive() {
		return nil, apperrors.NewPolicyViolationError(fmt.Sprintf("plan %s is no longer offered", plan.Name()))
	}

	live, lapsed, err := uc.loadActive(ctx, cmd.TenantID, now)
	if err != nil {
		return nil, err
	}
	if requireCurrent && live == nil {
		return nil, apperrors.NewNotFoundError("no active subscription to change")
	}

	usage, err := uc.countEmployees(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}

	target := plan.Snapshot()
	decision := subscription.DecidePlanChange(snapshotPtr(live), usage, target)
	pc := &plannedChange{
		tenant: t,
		target: target,
		live:   live,
		lapsed: lapsed,
		action: decision.Action,
	}

	if !cmd.Override {
		if target.IsTrial {
			used, err := uc.Subscriptions.HasTrialHistory(ctx, cmd.TenantID)
			if err != nil {
				return nil, fmt.Errorf("failed to check trial history: %w", err)
			}
			if used {
				uc.Metrics.RecordTransition(decision.Action, OutcomeRejected)
				return nil, apperrors.NewPolicyViolationError("the trial has already been used by this tenant")
			}
		}
		if !decision.Allowed {
			uc.Metrics.RecordTransition(decision.Action, OutcomeRejected)
			uc.Logger.Infow("plan change rejected",
				"tenant_id", cmd.TenantID,
				"plan_id", cmd.PlanID,
				"action", decision.Action,
				"reason", decision.Reason,
			)
			return nil, apperrors.NewPolicyViolationError(decision.Reason)
		}
	}

	ceiling := target.MaxEntitlement
	if cmd.CustomEntitlement != nil {
		ceiling = *cmd.CustomEntitlement
	}
	if usage > ceiling {
		uc.Metrics.RecordTransition(decision.Action, OutcomeRejected)
		return nil, apperrors.NewPolicyViolationError(
			fmt.Sprintf("entitlement of %d is below the %d records in use", ceiling, usage))
	}

	if live == nil && target.IsPaid() && !cmd.Override {
		if err := uc.startCheckout(ctx, cmd, pc); err != nil {
			return nil, err
		}
	}
	return pc, nil
}

// startCheckout calls the payment provider before any row is written, so a
// provider failure leaves no pending subscription behind.
func (uc *SubscribeUseCase) startCheckout(ctx context.Context, cmd SubscribeCommand, pc *plannedChange) error {
	gateway, err := uc.Gateways.Resolve(pc.target.Provider)
	if err != nil {
		uc.Logger.Errorw("no payment gateway for plan", "plan_id", pc.target.PlanID, "error", err)
		return apperrors.NewExternalError("payment is not available for this plan", err.Error())
	}

	ref := uuid.NewString()
	checkout, err := gateway.CreateCheckout(ctx, paymentgateway.CheckoutRequest{
		Reference: ref,
		TenantID:  cmd.TenantID,
		PlanID:    pc.target.PlanID,
		PlanName:  pc.target.Name,
		Amount:    pc.target.Price,
		Currency:  pc.target.Currency,
	})
	if err != nil {
		uc.Metrics.RecordTransition(pc.action, OutcomeFailed)
		uc.Logger.Errorw("failed to create checkout",
			"tenant_id", cmd.TenantID,
			"plan_id", pc.target.PlanID,
			"provider", gateway.Provider(),
			"error", err,
		)
		return apperrors.NewExternalError("failed to start checkout", err.Error())
	}

	pc.gateway = gateway
	pc.checkout = checkout
	pc.ref = ref
	return nil
}

func (uc *SubscribeUseCase) apply(ctx context.Context, cmd SubscribeCommand, pc *plannedChange, now time.Time) (*subscription.Subscription, error) {
	if pc.lapsed != nil {
		if err := uc.expireLapsed(ctx, pc.lapsed, now); err != nil {
			return nil, err
		}
	}

	provider := pc.target.Provider
	var sub *subscription.Subscription

	switch {
	case pc.live != nil && pc.action == vo.ActionRenew:
		sub = pc.live
		if err := sub.Renew(pc.target, cmd.Actor, now); err != nil {
			return nil, err
		}
		if cmd.CustomEntitlement != nil {
			if err := sub.SetCustomEntitlement(cmd.CustomEntitlement, now); err != nil {
				return nil, err
			}
		}
		if err := uc.Subscriptions.Update(ctx, sub); err != nil {
			return nil, fmt.Errorf("failed to renew subscription: %w", err)
		}

	case pc.checkout != nil:
		pending, err := subscription.NewPendingSubscription(cmd.TenantID, pc.target, cmd.Actor, now)
		if err != nil {
			return nil, err
		}
		if _, err := uc.cancelPending(ctx, cmd.TenantID, 0, now); err != nil {
			return nil, err
		}
		if err := uc.Subscriptions.Create(ctx, pending); err != nil {
			return nil, fmt.Errorf("failed to create pending subscription: %w", err)
		}
		p := pc.gateway.Provider()
		provider = &p
		tx, err := payment.NewTransaction(pc.ref, pending.ID(), cmd.TenantID, p,
			pc.checkout.ExternalTransactionID, pc.checkout.URL,
			pc.target.Price, pc.target.Currency, now)
		if err != nil {
			return nil, err
		}
		if err := uc.Transactions.Create(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to record payment transaction: %w", err)
		}
		sub = pending

	default:
		// New free subscription, upgrade, or an override switch. The
		// previous row is retained as EXPIRED and dates restart from now.
		if pc.live != nil {
			if err := pc.live.Expire(now); err != nil {
				return nil, err
			}
			if err := uc.Subscriptions.Update(ctx, pc.live); err != nil {
				return nil, fmt.Errorf("failed to supersede subscription: %w", err)
			}
		}
		if _, err := uc.cancelPending(ctx, cmd.TenantID, 0, now); err != nil {
			return nil, err
		}
		active, err := subscription.NewActiveSubscription(cmd.TenantID, pc.target, cmd.Actor, cmd.CustomEntitlement, now)
		if err != nil {
			return nil, err
		}
		if err := uc.Subscriptions.Create(ctx, active); err != nil {
			return nil, fmt.Errorf("failed to create subscription: %w", err)
		}
		sub = active
	}

	pc.tenant.ProjectSubscription(sub, provider, now)
	if err := uc.saveProjection(ctx, pc.tenant); err != nil {
		return nil, err
	}
	return sub, nil
}

func (uc *SubscribeUseCase) finish(ctx context.Context, cmd SubscribeCommand, pc *plannedChange, result *SubscribeResult) {
	sub := result.Subscription
	endDate := sub.EndDate().Format("2006-01-02")

	switch {
	case pc.checkout != nil:
		result.RequiresPayment = true
		result.CheckoutURL = pc.checkout.URL
		result.Message = fmt.Sprintf("Payment of %s is required to activate %s",
			money.Format(pc.target.Price, pc.target.Currency), pc.target.Name)
		uc.Metrics.RecordTransition(pc.action, OutcomePendingPayment)
		uc.notify(ctx, cmd.TenantID, notification.KindPaymentRequired,
			"Complete your payment",
			fmt.Sprintf("Your **%s** subscription is waiting for payment. [Pay now](%s)", pc.target.Name, pc.checkout.URL))

	case pc.live == nil:
		result.Message = fmt.Sprintf("Subscribed to %s until %s", pc.target.Name, endDate)
		uc.Metrics.RecordTransition(pc.action, OutcomeApplied)
		uc.notify(ctx, cmd.TenantID, notification.KindSubscriptionActivated,
			"Subscription active",
			fmt.Sprintf("Your **%s** subscription is active until %s.", pc.target.Name, endDate))

	case pc.action == vo.ActionRenew:
		result.Message = fmt.Sprintf("Subscription renewed until %s", endDate)
		uc.Metrics.RecordTransition(pc.action, OutcomeApplied)
		uc.notify(ctx, cmd.TenantID, notification.KindSubscriptionRenewed,
			"Subscription renewed",
			fmt.Sprintf("Your **%s** subscription now runs until %s.", pc.target.Name, endDate))

	default:
		result.Message = fmt.Sprintf("Plan changed from %s to %s", pc.live.Plan().Name, pc.target.Name)
		uc.Metrics.RecordTransition(pc.action, OutcomeApplied)
		uc.notify(ctx, cmd.TenantID, notification.KindPlanChanged,
			"Plan changed",
			fmt.Sprintf("You are now on **%s** until %s.", pc.target.Name, endDate))
	}

	uc.Logger.Infow("subscription change applied",
		"tenant_id", cmd.TenantID,
		"subscription_id", sub.ID(),
		"plan_id", pc.target.PlanID,
		"action", pc.action,
		"status", sub.Status(),
		"override", cmd.Override,
		"actor", cmd.Actor.String(),
	)
}
