package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/tenancy/internal/application/notification"
	"github.com/orris-inc/tenancy/internal/domain/subscription"
)

// reconcile expires a lapsed ACTIVE row and brings the tenant projection in
// line with the live subscription. Lazy reads and the nightly sweep both go
// through here. The caller holds the tenant lock.
func (l lifecycle) reconcile(ctx context.Context, tenantID uint, now time.Time) (live, expired *subscription.Subscription, err error) {
	t, err := l.loadTenant(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}

	err = l.TxManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var lapsed *subscription.Subscription
		live, lapsed, err = l.loadActive(txCtx, tenantID, now)
		if err != nil {
			return err
		}
		if lapsed != nil {
			if err := l.expireLapsed(txCtx, lapsed, now); err != nil {
				return err
			}
			expired = lapsed
		}

		if t.ProjectionMatches(live) {
			return nil
		}
		if live != nil {
			provider := t.PaymentProvider()
			if provider == nil {
				provider = live.Plan().Provider
			}
			t.ProjectSubscription(live, provider, now)
		} else {
			t.ClearSubscription(now)
		}
		l.Logger.Infow("tenant projection resynced",
			"tenant_id", tenantID,
			"status", t.SubscriptionStatus(),
		)
		return l.saveProjection(txCtx, t)
	})
	if err != nil {
		return nil, nil, err
	}

	if expired != nil {
		l.notify(ctx, tenantID, notification.KindSubscriptionExpired,
			"Subscription expired",
			fmt.Sprintf("Your **%s** subscription ended on %s. Renew to keep adding records.",
				expired.Plan().Name, expired.EndDate().Format("2006-01-02")))
	}
	return live, expired, nil
}
