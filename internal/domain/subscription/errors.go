package subscription

import (
	"errors"
	"fmt"
)

var (
	ErrSubscriptionNotFound    = errors.New("subscription not found")
	ErrNoActiveSubscription    = errors.New("no active subscription")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrPlanNotFound            = errors.New("subscription plan not found")
	ErrPlanInactive            = errors.New("subscription plan inactive")
	ErrPlanSlugExists          = errors.New("plan slug already exists")
	ErrTrialAlreadyUsed        = errors.New("trial already used")
	ErrEntitlementExceeded     = errors.New("entitlement exceeded")
	ErrActiveSlotTaken         = errors.New("tenant already has an active subscription")
)

func ErrInvalidTransition(from, to string) error {
	return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, from, to)
}

func ErrLimitExceeded(required, allowed int) error {
	return fmt.Errorf("%w: %d records in use, plan allows %d", ErrEntitlementExceeded, required, allowed)
}
