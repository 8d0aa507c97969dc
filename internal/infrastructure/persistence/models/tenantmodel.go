package models

import (
	"time"

	"github.com/orris-inc/tenancy/internal/shared/constants"
)

// TenantModel carries the subscription projection next to the tenant's
// identity. The projection columns are written only with subscription rows.
type TenantModel struct {
	ID                 uint   `gorm:"primarykey"`
	Name               string `gorm:"not null;size:200"`
	ContactEmail       string `gorm:"size:255"`
	SubscriptionStatus string `gorm:"not null;size:20;default:inactive;index:idx_tenant_subscription_status"`
	CurrentPlanID      *uint
	SubscribedAt       *time.Time
	PaymentProvider    *string `gorm:"size:20"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName specifies the table name for GORM
func (TenantModel) TableName() string {
	return constants.TableTenants
}
