package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/orris-inc/tenancy/internal/shared/constants"
)

// PlanSnapshotData is the JSON form of the plan terms copied onto a subscription.
type PlanSnapshotData struct {
	PlanID          uint    `json:"plan_id"`
	Name            string  `json:"name"`
	Price           uint64  `json:"price"`
	Currency        string  `json:"currency"`
	MaxEntitlement  int     `json:"max_entitlement"`
	DurationDays    int     `json:"duration_days"`
	IsTrial         bool    `json:"is_trial"`
	PaymentProvider *string `json:"payment_provider,omitempty"`
}

// SubscriptionModel represents the database persistence model for subscriptions.
// ActiveTenantID equals TenantID while the row is ACTIVE and is NULL
// otherwise; its unique index allows at most one ACTIVE row per tenant.
type SubscriptionModel struct {
	ID                uint                                 `gorm:"primarykey"`
	TenantID          uint                                 `gorm:"not null;index:idx_subscription_tenant_status,priority:1"`
	PlanID            uint                                 `gorm:"not null;index"`
	PlanIsTrial       bool                                 `gorm:"not null;default:false"`
	PlanSnapshot      datatypes.JSONType[PlanSnapshotData] `gorm:"not null"`
	Status            string                               `gorm:"not null;size:20;index:idx_subscription_tenant_status,priority:2"`
	ActiveTenantID    *uint                                `gorm:"uniqueIndex:uk_subscription_active_tenant"`
	StartDate         time.Time                            `gorm:"not null"`
	EndDate           time.Time                            `gorm:"not null;index:idx_subscription_end_date"`
	CustomEntitlement *int
	ActivatedByKind   string `gorm:"size:20"`
	ActivatedByID     uint
	Version           int `gorm:"not null;default:1"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}

// BeforeCreate hook for GORM
func (s *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
