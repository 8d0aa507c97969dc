package paymentgateway

import (
	"fmt"

	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
)

// Registry maps providers to gateways. Plans without a provider use the default.
type Registry struct {
	gateways        map[vo.PaymentProvider]Gateway
	defaultProvider vo.PaymentProvider
}

func NewRegistry(defaultProvider vo.PaymentProvider, gateways ...Gateway) *Registry {
	r := &Registry{
		gateways:        make(map[vo.PaymentProvider]Gateway, len(gateways)),
		defaultProvider: defaultProvider,
	}
	for _, g := range gateways {
		r.gateways[g.Provider()] = g
	}
	return r
}

// Resolve returns the gateway for provider, or the default one when provider is nil.
func (r *Registry) Resolve(provider *vo.PaymentProvider) (Gateway, error) {
	p := r.defaultProvider
	if provider != nil {
		p = *provider
	}
	g, ok := r.gateways[p]
	if !ok {
		return nil, fmt.Errorf("no payment gateway configured for provider %q", p)
	}
	return g, nil
}
