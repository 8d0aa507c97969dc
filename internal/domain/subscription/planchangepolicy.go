package subscription

import (
	"fmt"
	"strings"

	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/shared/money"
)

// PlanChangeDecision is the outcome of evaluating a transition between plans.
type PlanChangeDecision struct {
	Allowed bool
	Action  vo.PlanChangeAction
	Reason  string
}

// DecidePlanChange classifies moving from current (nil for none) to target
// given the tenant's live usage. A plan may never regress in entitlement or
// in price, and the target must hold every record already in use.
// Override and trial rules are applied by callers, never here.
func DecidePlanChange(current *vo.PlanSnapshot, usage int, target vo.PlanSnapshot) PlanChangeDecision {
	if current == nil {
		if target.MaxEntitlement < usage {
			return PlanChangeDecision{
				Action: vo.ActionNew,
				Reason: capacityReason(target, usage),
			}
		}
		return PlanChangeDecision{
			Allowed: true,
			Action:  vo.ActionNew,
			Reason:  fmt.Sprintf("new subscription to %s", target.Name),
		}
	}

	if regressions := regressedDimensions(*current, target); len(regressions) > 0 {
		reason := fmt.Sprintf("downgrade from %s to %s is not allowed: %s",
			current.Name, target.Name, strings.Join(regressions, " and "))
		if target.MaxEntitlement < usage {
			reason += "; " + capacityReason(target, usage)
		}
		return PlanChangeDecision{
			Action: vo.ActionDowngrade,
			Reason: reason,
		}
	}

	action := vo.ActionUpgrade
	verb := "upgrade"
	if current.SameTerms(target) {
		action = vo.ActionRenew
		verb = "renewal"
	}

	if target.MaxEntitlement < usage {
		return PlanChangeDecision{
			Action: action,
			Reason: capacityReason(target, usage),
		}
	}

	return PlanChangeDecision{
		Allowed: true,
		Action:  action,
		Reason:  fmt.Sprintf("%s from %s to %s", verb, current.Name, target.Name),
	}
}

func regressedDimensions(current, target vo.PlanSnapshot) []string {
	var out []string
	if target.MaxEntitlement < current.MaxEntitlement {
		out = append(out, fmt.Sprintf("entitlement would drop from %d to %d",
			current.MaxEntitlement, target.MaxEntitlement))
	}
	if target.Price < current.Price {
		out = append(out, fmt.Sprintf("price would drop from %s to %s",
			money.Format(current.Price, current.Currency), money.Format(target.Price, target.Currency)))
	}
	return out
}

func capacityReason(target vo.PlanSnapshot, usage int) string {
	return fmt.Sprintf("plan %s allows %d records but %d are in use", target.Name, target.MaxEntitlement, usage)
}
