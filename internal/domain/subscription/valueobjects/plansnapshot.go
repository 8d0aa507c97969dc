package valueobjects

import (
	"fmt"
)

// PlanSnapshot is the copy of plan terms a subscription keeps. Later edits
// to the plan never reach an existing snapshot.
type PlanSnapshot struct {
	PlanID         uint
	Name           string
	Price          uint64 // minor currency units
	Currency       string
	MaxEntitlement int
	DurationDays   int
	IsTrial        bool
	Provider       *PaymentProvider
}

func (s PlanSnapshot) Validate() error {
	if s.PlanID == 0 {
		return fmt.Errorf("plan ID is required")
	}
	if s.MaxEntitlement < 1 {
		return fmt.Errorf("max entitlement must be at least 1")
	}
	if s.DurationDays < 1 {
		return fmt.Errorf("duration must be at least 1 day")
	}
	return nil
}

// IsPaid reports whether activating this plan requires a payment.
func (s PlanSnapshot) IsPaid() bool {
	return s.Price > 0
}

// SameTerms reports whether both plans grant the same entitlement at the same price.
func (s PlanSnapshot) SameTerms(other PlanSnapshot) bool {
	return s.MaxEntitlement == other.MaxEntitlement && s.Price == other.Price
}
