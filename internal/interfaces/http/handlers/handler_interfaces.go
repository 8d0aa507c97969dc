package handlers

import (
	"context"
	"time"

	"github.com/orris-inc/tenancy/internal/application/entitlement"
	"github.com/orris-inc/tenancy/internal/application/subscription/usecases"
	"github.com/orris-inc/tenancy/internal/domain/subscription"
)

// Service interfaces for the handlers. *subscription.Service satisfies all of them.

type subscriptionService interface {
	Now() time.Time
	Subscribe(ctx context.Context, cmd usecases.SubscribeCommand) (*usecases.SubscribeResult, error)
	ChangePlan(ctx context.Context, cmd usecases.ChangePlanCommand) (*usecases.ChangePlanResult, error)
	Cancel(ctx context.Context, cmd usecases.CancelSubscriptionCommand) (*usecases.CancelSubscriptionResult, error)
	Extend(ctx context.Context, cmd usecases.ExtendSubscriptionCommand) (*usecases.ExtendSubscriptionResult, error)
	GetCurrentSubscription(ctx context.Context, tenantID uint) (*subscription.Subscription, error)
	ValidatePlanChange(ctx context.Context, tenantID, planID uint) (*usecases.PlanChangeValidation, error)
}

type entitlementService interface {
	ComputeAllowed(ctx context.Context, tenantID uint) (*entitlement.Allowance, error)
}

type planService interface {
	ListPlans(ctx context.Context, query usecases.ListPlansQuery) (*usecases.ListPlansResult, error)
	SyncPlans(ctx context.Context, defs []usecases.PlanDefinition) (*usecases.SyncPlansResult, error)
}

type paymentService interface {
	Now() time.Time
	ConfirmPayment(ctx context.Context, externalTransactionID string) (*usecases.ConfirmPaymentResult, error)
}

// webhookVerifier is satisfied by the Stripe gateway.
type webhookVerifier interface {
	ParseWebhook(payload []byte, signature string) (sessionID string, ok bool, err error)
}

// permissionChecker is satisfied by the casbin enforcer.
type permissionChecker interface {
	Enforce(role, resource, action string) (bool, error)
}
