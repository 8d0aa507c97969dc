package paymentgateway

import (
	"context"

	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
)

// Gateway creates hosted checkouts with one payment provider. Confirmation
// arrives later through the provider's webhook or an admin action.
type Gateway interface {
	Provider() vo.PaymentProvider
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
}

// CheckoutRequest describes what the tenant is paying for.
type CheckoutRequest struct {
	Reference string // our idempotency reference, a uuid
	TenantID  uint
	PlanID    uint
	PlanName  string
	Amount    uint64 // Amount in smallest currency unit
	Currency  string
}

type Checkout struct {
	URL string
	// ExternalTransactionID is the provider's identifier that the later
	// confirmation will carry.
	ExternalTransactionID string
}
