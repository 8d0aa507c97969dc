package paymentgateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
)

type stubGateway struct {
	provider vo.PaymentProvider
}

func (s stubGateway) Provider() vo.PaymentProvider {
	return s.provider
}

func (s stubGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	return &Checkout{URL: "https://pay/" + req.Reference, ExternalTransactionID: req.Reference}, nil
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry(vo.PaymentProviderManual,
		stubGateway{provider: vo.PaymentProviderManual},
		stubGateway{provider: vo.PaymentProviderStripe},
	)

	g, err := r.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, vo.PaymentProviderManual, g.Provider())

	stripe := vo.PaymentProviderStripe
	g, err = r.Resolve(&stripe)
	require.NoError(t, err)
	assert.Equal(t, vo.PaymentProviderStripe, g.Provider())
}

func TestRegistry_ResolveMissing(t *testing.T) {
	r := NewRegistry(vo.PaymentProviderStripe, stubGateway{provider: vo.PaymentProviderManual})

	_, err := r.Resolve(nil)
	assert.Error(t, err)
}
