package valueobjects

// PlanChangeAction classifies a transition between two plans.
type PlanChangeAction string

const (
	ActionNew       PlanChangeAction = "NEW"
	ActionRenew     PlanChangeAction = "RENEW"
	ActionUpgrade   PlanChangeAction = "UPGRADE"
	ActionDowngrade PlanChangeAction = "DOWNGRADE"
)

func (a PlanChangeAction) String() string {
	return string(a)
}
