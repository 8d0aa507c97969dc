package valueobjects

type PaymentProvider string

const (
	PaymentProviderStripe PaymentProvider = "stripe"
	PaymentProviderManual PaymentProvider = "manual"
)

var validPaymentProviders = map[PaymentProvider]bool{
	PaymentProviderStripe: true,
	PaymentProviderManual: true,
}

func (p PaymentProvider) IsValid() bool {
	return validPaymentProviders[p]
}

func (p PaymentProvider) String() string {
	return string(p)
}
