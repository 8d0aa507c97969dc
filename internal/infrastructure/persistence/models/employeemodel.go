package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/tenancy/internal/shared/constants"
)

// EmployeeModel is the managed record counted against a tenant's entitlement.
// Records are owned by another service; this side only counts them.
type EmployeeModel struct {
	ID        uint   `gorm:"primarykey"`
	TenantID  uint   `gorm:"not null;index"`
	Name      string `gorm:"size:200"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (EmployeeModel) TableName() string {
	return constants.TableEmployees
}
