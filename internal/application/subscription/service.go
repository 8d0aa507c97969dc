// Package subscription wires the tenant subscription use cases behind one
// facade consumed by the HTTP handlers, the scheduler and the CLI.
package subscription

import (
	"context"
	"time"

	"github.com/orris-inc/tenancy/internal/application/entitlement"
	"github.com/orris-inc/tenancy/internal/application/subscription/usecases"
	subdomain "github.com/orris-inc/tenancy/internal/domain/subscription"
	"github.com/orris-inc/tenancy/internal/shared/biztime"
)

type ServiceConfig struct {
	ReminderDays []int
}

type Service struct {
	subscribe  *usecases.SubscribeUseCase
	changePlan *usecases.ChangePlanUseCase
	confirm    *usecases.ConfirmPaymentUseCase
	cancel     *usecases.CancelSubscriptionUseCase
	extend     *usecases.ExtendSubscriptionUseCase
	getCurrent *usecases.GetCurrentSubscriptionUseCase
	validate   *usecases.ValidatePlanChangeUseCase
	expire     *usecases.ExpireSubscriptionsUseCase
	reminders  *usecases.SendExpiryRemindersUseCase
	listPlans  *usecases.ListPlansUseCase
	syncPlans  *usecases.SyncPlansUseCase
	tracker    *entitlement.Tracker
	now        func() time.Time
}

func NewService(deps usecases.Deps, cfg ServiceConfig) *Service {
	subscribe := usecases.NewSubscribeUseCase(deps)
	now := deps.Now
	if now == nil {
		now = biztime.NowUTC
	}
	return &Service{
		subscribe:  subscribe,
		changePlan: usecases.NewChangePlanUseCase(subscribe),
		confirm:    usecases.NewConfirmPaymentUseCase(deps),
		cancel:     usecases.NewCancelSubscriptionUseCase(deps),
		extend:     usecases.NewExtendSubscriptionUseCase(deps),
		getCurrent: usecases.NewGetCurrentSubscriptionUseCase(deps),
		validate:   usecases.NewValidatePlanChangeUseCase(deps),
		expire:     usecases.NewExpireSubscriptionsUseCase(deps),
		reminders:  usecases.NewSendExpiryRemindersUseCase(deps, cfg.ReminderDays),
		listPlans:  usecases.NewListPlansUseCase(deps.Plans, deps.Logger),
		syncPlans:  usecases.NewSyncPlansUseCase(deps.Plans, deps.Logger),
		tracker:    entitlement.NewTracker(deps.Subscriptions, deps.Employees, deps.Logger),
		now:        now,
	}
}

// Now is the clock the use cases run on, for rendering days remaining.
func (s *Service) Now() time.Time {
	return s.now().UTC()
}

func (s *Service) Subscribe(ctx context.Context, cmd usecases.SubscribeCommand) (*usecases.SubscribeResult, error) {
	return s.subscribe.Execute(ctx, cmd)
}

func (s *Service) ChangePlan(ctx context.Context, cmd usecases.ChangePlanCommand) (*usecases.ChangePlanResult, error) {
	return s.changePlan.Execute(ctx, cmd)
}

func (s *Service) ConfirmPayment(ctx context.Context, externalTransactionID string) (*usecases.ConfirmPaymentResult, error) {
	return s.confirm.Execute(ctx, externalTransactionID)
}

func (s *Service) Cancel(ctx context.Context, cmd usecases.CancelSubscriptionCommand) (*usecases.CancelSubscriptionResult, error) {
	return s.cancel.Execute(ctx, cmd)
}

func (s *Service) Extend(ctx context.Context, cmd usecases.ExtendSubscriptionCommand) (*usecases.ExtendSubscriptionResult, error) {
	return s.extend.Execute(ctx, cmd)
}

func (s *Service) GetCurrentSubscription(ctx context.Context, tenantID uint) (*subdomain.Subscription, error) {
	return s.getCurrent.Execute(ctx, tenantID)
}

func (s *Service) ValidatePlanChange(ctx context.Context, tenantID, planID uint) (*usecases.PlanChangeValidation, error) {
	return s.validate.Execute(ctx, tenantID, planID)
}

func (s *Service) ComputeAllowed(ctx context.Context, tenantID uint) (*entitlement.Allowance, error) {
	return s.tracker.ComputeAllowed(ctx, tenantID)
}

func (s *Service) EnsureCanAdd(ctx context.Context, tenantID uint) error {
	return s.tracker.EnsureCanAdd(ctx, tenantID)
}

func (s *Service) ListPlans(ctx context.Context, query usecases.ListPlansQuery) (*usecases.ListPlansResult, error) {
	return s.listPlans.Execute(ctx, query)
}

func (s *Service) SyncPlans(ctx context.Context, defs []usecases.PlanDefinition) (*usecases.SyncPlansResult, error) {
	return s.syncPlans.Execute(ctx, defs)
}

// ExpiryJob is the nightly sweep, run by the scheduler.
func (s *Service) ExpiryJob() *usecases.ExpireSubscriptionsUseCase {
	return s.expire
}

// ReminderJob sends the daily expiry reminders.
func (s *Service) ReminderJob() *usecases.SendExpiryRemindersUseCase {
	return s.reminders
}
