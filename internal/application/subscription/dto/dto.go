package dto

import "time"

type PlanDTO struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	Description     string `json:"description,omitempty"`
	Price           uint64 `json:"price"`
	Currency        string `json:"currency"`
	DisplayPrice    string `json:"display_price"`
	MaxEntitlement  int    `json:"max_entitlement"`
	DurationDays    int    `json:"duration_days"`
	IsTrial         bool   `json:"is_trial"`
	Status          string `json:"status"`
	PaymentProvider string `json:"payment_provider,omitempty"`
	SortOrder       int    `json:"sort_order"`
}

// PlanSnapshotDTO is the copy of plan terms stored on a subscription.
type PlanSnapshotDTO struct {
	PlanID         uint   `json:"plan_id"`
	Name           string `json:"name"`
	Price          uint64 `json:"price"`
	Currency       string `json:"currency"`
	DisplayPrice   string `json:"display_price"`
	MaxEntitlement int    `json:"max_entitlement"`
	DurationDays   int    `json:"duration_days"`
	IsTrial        bool   `json:"is_trial"`
}

type SubscriptionDTO struct {
	ID                   uint            `json:"id"`
	TenantID             uint            `json:"tenant_id"`
	Status               string          `json:"status"`
	Plan                 PlanSnapshotDTO `json:"plan"`
	StartDate            time.Time       `json:"start_date"`
	EndDate              time.Time       `json:"end_date"`
	DaysRemaining        int             `json:"days_remaining"`
	CustomEntitlement    *int            `json:"custom_entitlement,omitempty"`
	EffectiveEntitlement int             `json:"effective_entitlement"`
	ActivatedBy          string          `json:"activated_by"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

type SubscribeResultDTO struct {
	Message         string           `json:"message"`
	Action          string           `json:"action"`
	RequiresPayment bool             `json:"requires_payment"`
	CheckoutURL     string           `json:"checkout_url,omitempty"`
	Subscription    *SubscriptionDTO `json:"subscription"`
	PreviousPlan    *PlanSnapshotDTO `json:"previous_plan,omitempty"`
}

type ChangePlanResultDTO struct {
	Action       string           `json:"action"`
	OldPlan      PlanSnapshotDTO  `json:"old_plan"`
	NewPlan      PlanSnapshotDTO  `json:"new_plan"`
	Subscription *SubscriptionDTO `json:"subscription"`
}

type CancelResultDTO struct {
	CancelledCount int    `json:"cancelled_count"`
	TenantStatus   string `json:"tenant_status"`
}

type ExtendResultDTO struct {
	Subscription        *SubscriptionDTO `json:"subscription"`
	DaysRemainingBefore int              `json:"days_remaining_before"`
	DaysRemainingAfter  int              `json:"days_remaining_after"`
}

type ConfirmPaymentResultDTO struct {
	Activated        bool             `json:"activated"`
	AlreadyConfirmed bool             `json:"already_confirmed"`
	Subscription     *SubscriptionDTO `json:"subscription,omitempty"`
}

type PlanChangeValidationDTO struct {
	Allowed      bool             `json:"allowed"`
	Action       string           `json:"action"`
	Reason       string           `json:"reason"`
	CurrentUsage int              `json:"current_usage"`
	CurrentPlan  *PlanSnapshotDTO `json:"current_plan,omitempty"`
	TargetPlan   PlanSnapshotDTO  `json:"target_plan"`
}

type AllowanceDTO struct {
	MaxAllowed int  `json:"max_allowed"`
	Current    int  `json:"current"`
	Remaining  int  `json:"remaining"`
	CanAdd     bool `json:"can_add"`
}

type PlanListDTO struct {
	Plans []*PlanDTO `json:"plans"`
	Total int64      `json:"total"`
}
