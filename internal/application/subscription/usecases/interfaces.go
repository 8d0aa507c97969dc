package usecases

import (
	"context"

	"github.com/orris-inc/tenancy/internal/application/payment/paymentgateway"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
)

// TenantLocker serializes lifecycle mutations per tenant. The returned
// unlock func must be called exactly once.
type TenantLocker interface {
	Lock(ctx context.Context, tenantID uint) (unlock func(), err error)
}

// TxManager runs fn in one database transaction. Repositories called with
// the derived context join it.
type TxManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EmployeeCounter reports the live number of managed records for a tenant.
type EmployeeCounter interface {
	Count(ctx context.Context, tenantID uint) (int, error)
}

// GatewayResolver picks the payment gateway for a plan's provider.
type GatewayResolver interface {
	Resolve(provider *vo.PaymentProvider) (paymentgateway.Gateway, error)
}

// MetricsRecorder observes lifecycle outcomes.
type MetricsRecorder interface {
	RecordTransition(action vo.PlanChangeAction, outcome string)
	RecordConfirmation(outcome string)
	RecordReminder(days int)
	RecordExpired(count int)
}

const (
	OutcomeApplied        = "applied"
	OutcomePendingPayment = "pending_payment"
	OutcomeRejected       = "rejected"
	OutcomeFailed         = "failed"
	OutcomeActivated      = "activated"
	OutcomeReplayed       = "replayed"
	OutcomeIgnored        = "ignored"
)

type nopMetrics struct{}

func (nopMetrics) RecordTransition(vo.PlanChangeAction, string) {}
func (nopMetrics) RecordConfirmation(string)                    {}
func (nopMetrics) RecordReminder(int)                           {}
func (nopMetrics) RecordExpired(int)                            {}

// NopMetrics discards all observations.
func NopMetrics() MetricsRecorder {
	return nopMetrics{}
}
