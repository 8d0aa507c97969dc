package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/tenancy/internal/shared/constants"
)

type PlanModel struct {
	ID              uint    `gorm:"primarykey"`
	Name            string  `gorm:"not null;size:100"`
	Slug            string  `gorm:"uniqueIndex;not null;size:100"`
	Description     string  `gorm:"size:1000"`
	Price           uint64  `gorm:"not null;comment:price in minor currency units"`
	Currency        string  `gorm:"not null;size:3"`
	MaxEntitlement  int     `gorm:"not null"`
	DurationDays    int     `gorm:"not null"`
	IsTrial         bool    `gorm:"not null;default:false"`
	Status          string  `gorm:"not null;size:20;index:idx_plan_status"`
	PaymentProvider *string `gorm:"size:20"`
	SortOrder       int     `gorm:"not null;default:0"`
	Version         int     `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (PlanModel) TableName() string {
	return constants.TablePlans
}

// BeforeCreate hook for GORM
func (p *PlanModel) BeforeCreate(tx *gorm.DB) error {
	if p.Version == 0 {
		p.Version = 1
	}
	return nil
}
