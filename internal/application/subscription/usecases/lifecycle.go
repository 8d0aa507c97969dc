package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orris-inc/tenancy/internal/application/notification"
	"github.com/orris-inc/tenancy/internal/domain/payment"
	"github.com/orris-inc/tenancy/internal/domain/subscription"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/domain/tenant"
	"github.com/orris-inc/tenancy/internal/shared/biztime"
	apperrors "github.com/orris-inc/tenancy/internal/shared/errors"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

// Deps bundles the collaborators shared by the lifecycle use cases.
type Deps struct {
	Subscriptions subscription.SubscriptionRepository
	Plans         subscription.PlanRepository
	Tenants       tenant.Repository
	Transactions  payment.TransactionRepository
	Employees     EmployeeCounter
	Gateways      GatewayResolver
	Locker        TenantLocker
	TxManager     TxManager
	Notifier      *notification.Dispatcher
	Metrics       MetricsRecorder
	Logger        logger.Interface
	// ReminderNotifier must deliver inline so the reminder job only counts
	// sent messages. Defaults to Notifier.Inline().
	ReminderNotifier *notification.Dispatcher
	// Now defaults to biztime.NowUTC.
	Now func() time.Time
}

// lifecycle holds the plumbing every mutating use case repeats: the tenant
// lock, entity loading with error mapping, and lapsed-row expiry.
type lifecycle struct {
	Deps
}

func newLifecycle(deps Deps) lifecycle {
	if deps.Metrics == nil {
		deps.Metrics = NopMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	if deps.Now == nil {
		deps.Now = biztime.NowUTC
	}
	return lifecycle{Deps: deps}
}

func (l lifecycle) now() time.Time {
	return l.Now().UTC()
}

func (l lifecycle) lockTenant(ctx context.Context, tenantID uint) (func(), error) {
	unlock, err := l.Locker.Lock(ctx, tenantID)
	if err != nil {
		l.Logger.Warnw("failed to acquire tenant lock", "tenant_id", tenantID, "error", err)
		return nil, apperrors.NewConflictError("another change for this tenant is in progress, retry shortly")
	}
	return unlock, nil
}

func (l lifecycle) loadTenant(ctx context.Context, tenantID uint) (*tenant.Tenant, error) {
	t, err := l.Tenants.GetByID(ctx, tenantID)
	if err != nil {
		l.Logger.Errorw("failed to get tenant", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	if t == nil {
		return nil, apperrors.NewNotFoundError("tenant not found", fmt.Sprintf("tenant_id=%d", tenantID))
	}
	return t, nil
}

func (l lifecycle) loadPlan(ctx context.Context, planID uint) (*subscription.Plan, error) {
	plan, err := l.Plans.GetByID(ctx, planID)
	if err != nil {
		l.Logger.Errorw("failed to get plan", "plan_id", planID, "error", err)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("plan not found", fmt.Sprintf("plan_id=%d", planID))
	}
	return plan, nil
}

// loadActive returns the tenant's ACTIVE row split into live and lapsed.
// At most one of the two is non-nil.
func (l lifecycle) loadActive(ctx context.Context, tenantID uint, now time.Time) (live, lapsed *subscription.Subscription, err error) {
	sub, err := l.Subscriptions.GetActiveByTenantID(ctx, tenantID)
	if err != nil {
		l.Logger.Errorw("failed to get active subscription", "tenant_id", tenantID, "error", err)
		return nil, nil, fmt.Errorf("failed to get active subscription: %w", err)
	}
	if sub == nil {
		return nil, nil, nil
	}
	if sub.IsLapsedAt(now) {
		return nil, sub, nil
	}
	return sub, nil, nil
}

func (l lifecycle) countEmployees(ctx context.Context, tenantID uint) (int, error) {
	n, err := l.Employees.Count(ctx, tenantID)
	if err != nil {
		l.Logger.Errorw("failed to count employees", "tenant_id", tenantID, "error", err)
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return n, nil
}

// expireLapsed persists EXPIRED for a row whose end date has passed. Must
// run inside a transaction together with the projection write.
func (l lifecycle) expireLapsed(ctx context.Context, sub *subscription.Subscription, now time.Time) error {
	if err := sub.Expire(now); err != nil {
		return err
	}
	if err := l.Subscriptions.Update(ctx, sub); err != nil {
		return fmt.Errorf("failed to expire subscription %d: %w", sub.ID(), err)
	}
	l.Logger.Infow("subscription lapsed",
		"subscription_id", sub.ID(),
		"tenant_id", sub.TenantID(),
		"end_date", sub.EndDate(),
	)
	return nil
}

// cancelPending abandons unpaid checkouts other than keepID.
func (l lifecycle) cancelPending(ctx context.Context, tenantID, keepID uint, now time.Time) (int, error) {
	pending, err := l.Subscriptions.GetPendingByTenantID(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending subscriptions: %w", err)
	}
	cancelled := 0
	for _, p := range pending {
		if p.ID() == keepID {
			continue
		}
		if err := p.Cancel(now); err != nil {
			return cancelled, err
		}
		if err := l.Subscriptions.Update(ctx, p); err != nil {
			return cancelled, fmt.Errorf("failed to cancel pending subscription %d: %w", p.ID(), err)
		}
		cancelled++
	}
	return cancelled, nil
}

func (l lifecycle) saveProjection(ctx context.Context, t *tenant.Tenant) error {
	if err := l.Tenants.UpdateProjection(ctx, t); err != nil {
		return fmt.Errorf("failed to update tenant projection: %w", err)
	}
	return nil
}

// mapWriteError turns storage-level violations of the one-active rule into
// a Conflict and leaves application errors untouched.
func mapWriteError(err error) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, subscription.ErrActiveSlotTaken) || apperrors.IsDuplicateError(err) {
		return apperrors.NewConflictError("tenant already has an active subscription")
	}
	return err
}

func (l lifecycle) notify(ctx context.Context, tenantID uint, kind notification.Kind, title, message string) {
	l.Notifier.Dispatch(ctx, tenantID, notification.Notification{
		Title:   title,
		Message: message,
		Kind:    kind,
	})
}

func snapshotPtr(s *subscription.Subscription) *vo.PlanSnapshot {
	if s == nil {
		return nil
	}
	p := s.Plan()
	return &p
}
