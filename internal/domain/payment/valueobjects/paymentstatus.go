package valueobjects

// PaymentStatus tracks a payment transaction. Confirmation is one-way.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusConfirmed
}

func (s PaymentStatus) IsConfirmed() bool {
	return s == PaymentStatusConfirmed
}

func (s PaymentStatus) String() string {
	return string(s)
}
