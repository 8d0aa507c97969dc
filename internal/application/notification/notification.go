// Package notification delivers tenant-facing messages about subscription
// changes. Delivery never blocks or fails a lifecycle transition.
package notification

import (
	"context"
	"time"

	"github.com/orris-inc/tenancy/internal/shared/goroutine"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

type Kind string

const (
	KindSubscriptionActivated Kind = "subscription_activated"
	KindPaymentRequired       Kind = "payment_required"
	KindSubscriptionRenewed   Kind = "subscription_renewed"
	KindPlanChanged           Kind = "plan_changed"
	KindSubscriptionExtended  Kind = "subscription_extended"
	KindSubscriptionCancelled Kind = "subscription_cancelled"
	KindSubscriptionExpired   Kind = "subscription_expired"
	KindExpiryReminder        Kind = "expiry_reminder"
)

// Notification is a single message. Message may contain markdown.
type Notification struct {
	Title   string
	Message string
	Kind    Kind
}

// Port is implemented by delivery channels such as email.
type Port interface {
	Notify(ctx context.Context, tenantID uint, n Notification) error
}

// Dispatcher sends notifications through a Port and swallows failures.
type Dispatcher struct {
	port    Port
	logger  logger.Interface
	timeout time.Duration
	async   bool
}

// NewDispatcher delivers in the background, detached from the caller's
// context and bounded by timeout.
func NewDispatcher(port Port, log logger.Interface, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{port: port, logger: log, timeout: timeout, async: true}
}

// NewInlineDispatcher delivers on the calling goroutine. Used by batch jobs
// that already fan out, and by tests.
func NewInlineDispatcher(port Port, log logger.Interface) *Dispatcher {
	return &Dispatcher{port: port, logger: log}
}

// Inline returns a dispatcher over the same port that delivers on the calling
// goroutine, keeping d's timeout per delivery.
func (d *Dispatcher) Inline() *Dispatcher {
	if d == nil {
		return nil
	}
	return &Dispatcher{port: d.port, logger: d.logger, timeout: d.timeout}
}

// Dispatch sends n and logs any error. It reports whether an inline delivery
// succeeded; async dispatches always report true.
func (d *Dispatcher) Dispatch(ctx context.Context, tenantID uint, n Notification) bool {
	if d == nil || d.port == nil {
		return false
	}

	if d.async {
		goroutine.SafeGoWithTimeout(d.logger, "notify-"+string(n.Kind), d.timeout, func(ctx context.Context) {
			d.deliver(ctx, tenantID, n)
		})
		return true
	}
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	return d.deliver(ctx, tenantID, n)
}

func (d *Dispatcher) deliver(ctx context.Context, tenantID uint, n Notification) bool {
	if err := d.port.Notify(ctx, tenantID, n); err != nil {
		d.logger.Warnw("notification delivery failed",
			"tenant_id", tenantID,
			"kind", n.Kind,
			"error", err,
		)
		return false
	}
	return true
}
