package payment

import (
	"context"
	"fmt"
	"net/url"

	"github.com/orris-inc/tenancy/internal/application/payment/paymentgateway"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
)

const manualExternalIDPrefix = "manual_"

// ManualGateway covers payments settled outside the system, such as bank
// transfers. An admin confirms them with the returned external ID.
type ManualGateway struct {
	payURL string
}

func NewManualGateway(payURL string) *ManualGateway {
	return &ManualGateway{payURL: payURL}
}

func (g *ManualGateway) Provider() vo.PaymentProvider {
	return vo.PaymentProviderManual
}

func (g *ManualGateway) CreateCheckout(_ context.Context, req paymentgateway.CheckoutRequest) (*paymentgateway.Checkout, error) {
	u, err := url.Parse(g.payURL)
	if err != nil {
		return nil, fmt.Errorf("invalid manual payment URL: %w", err)
	}
	q := u.Query()
	q.Set("reference", req.Reference)
	u.RawQuery = q.Encode()

	return &paymentgateway.Checkout{
		URL:                   u.String(),
		ExternalTransactionID: manualExternalIDPrefix + req.Reference,
	}, nil
}
