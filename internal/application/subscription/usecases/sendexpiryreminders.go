package usecases

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/orris-inc/tenancy/internal/application/notification"
	"github.com/orris-inc/tenancy/internal/domain/subscription"
	"github.com/orris-inc/tenancy/internal/shared/biztime"
)

// DefaultReminderDays are the days-before-expiry at which tenants are reminded.
var DefaultReminderDays = []int{7, 14, 21, 30}

const reminderConcurrency = 8

// SendExpiryRemindersUseCase reminds tenants whose subscription ends in
// exactly one of the configured numbers of business days. Exact matching
// means a daily run sends at most one reminder per threshold.
type SendExpiryRemindersUseCase struct {
	lifecycle
	reminderDays map[int]bool
	notifier     *notification.Dispatcher
}

func NewSendExpiryRemindersUseCase(deps Deps, reminderDays []int) *SendExpiryRemindersUseCase {
	if len(reminderDays) == 0 {
		reminderDays = DefaultReminderDays
	}
	days := make(map[int]bool, len(reminderDays))
	for _, d := range reminderDays {
		if d > 0 {
			days[d] = true
		}
	}
	notifier := deps.ReminderNotifier
	if notifier == nil {
		notifier = deps.Notifier.Inline()
	}
	return &SendExpiryRemindersUseCase{
		lifecycle:    newLifecycle(deps),
		reminderDays: days,
		notifier:     notifier,
	}
}

// ProcessReminders runs one reminder pass.
func (uc *SendExpiryRemindersUseCase) ProcessReminders(ctx context.Context) error {
	_, err := uc.Execute(ctx)
	return err
}

// Execute returns the number of reminders delivered.
func (uc *SendExpiryRemindersUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.now()
	active, err := uc.Subscriptions.FindActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to find active subscriptions: %w", err)
	}

	var sent atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reminderConcurrency)

	for _, sub := range active {
		if !sub.IsLiveAt(now) {
			continue
		}
		days := biztime.CalendarDaysBetween(now, sub.EndDate())
		if !uc.reminderDays[days] {
			continue
		}

		g.Go(func() error {
			if uc.remind(gctx, sub, days) {
				sent.Add(1)
				uc.Metrics.RecordReminder(days)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(sent.Load()), err
	}

	count := int(sent.Load())
	if count > 0 {
		uc.Logger.Infow("expiry reminders sent", "count", count)
	}
	return count, nil
}

func (uc *SendExpiryRemindersUseCase) remind(ctx context.Context, sub *subscription.Subscription, days int) bool {
	return uc.notifier.Dispatch(ctx, sub.TenantID(), notification.Notification{
		Title: fmt.Sprintf("Your subscription ends in %d days", days),
		Message: fmt.Sprintf("Your **%s** subscription ends on %s. Renew before then to keep your %d record allowance.",
			sub.Plan().Name, biztime.FormatInBizTimezone(sub.EndDate(), "2006-01-02"), sub.EffectiveEntitlement()),
		Kind: notification.KindExpiryReminder,
	})
}
