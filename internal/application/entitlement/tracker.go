// Package entitlement answers how many managed records a tenant may hold.
package entitlement

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/tenancy/internal/domain/subscription"
	"github.com/orris-inc/tenancy/internal/shared/biztime"
	apperrors "github.com/orris-inc/tenancy/internal/shared/errors"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

// Allowance is a point-in-time view; it is recomputed on every call.
type Allowance struct {
	MaxAllowed int
	Current    int
	Remaining  int
	CanAdd     bool
}

// Counter reports the live number of managed records for a tenant.
type Counter interface {
	Count(ctx context.Context, tenantID uint) (int, error)
}

type Tracker struct {
	subscriptions subscription.SubscriptionRepository
	counter       Counter
	logger        logger.Interface
	now           func() time.Time
}

func NewTracker(subscriptions subscription.SubscriptionRepository, counter Counter, log logger.Interface) *Tracker {
	return &Tracker{
		subscriptions: subscriptions,
		counter:       counter,
		logger:        log,
		now:           biztime.NowUTC,
	}
}

// ComputeAllowed derives the tenant's allowance from its live subscription.
// A tenant without one is allowed nothing.
func (t *Tracker) ComputeAllowed(ctx context.Context, tenantID uint) (*Allowance, error) {
	sub, err := t.subscriptions.GetActiveByTenantID(ctx, tenantID)
	if err != nil {
		t.logger.Errorw("failed to get active subscription", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}
	current, err := t.counter.Count(ctx, tenantID)
	if err != nil {
		t.logger.Errorw("failed to count employees", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}

	live := sub != nil && sub.IsLiveAt(t.now())
	maxAllowed := 0
	if live {
		maxAllowed = sub.EffectiveEntitlement()
	}

	remaining := maxAllowed - current
	if remaining < 0 {
		remaining = 0
	}
	return &Allowance{
		MaxAllowed: maxAllowed,
		Current:    current,
		Remaining:  remaining,
		CanAdd:     live && remaining > 0,
	}, nil
}

// EnsureCanAdd fails with a policy violation when one more record would not fit.
func (t *Tracker) EnsureCanAdd(ctx context.Context, tenantID uint) error {
	a, err := t.ComputeAllowed(ctx, tenantID)
	if err != nil {
		return err
	}
	if a.CanAdd {
		return nil
	}
	if a.MaxAllowed == 0 {
		return apperrors.NewPolicyViolationError("no active subscription allows adding records")
	}
	return apperrors.NewPolicyViolationError(
		fmt.Sprintf("limit reached: %d of %d records in use", a.Current, a.MaxAllowed))
}
