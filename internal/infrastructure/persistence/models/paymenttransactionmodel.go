package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/orris-inc/tenancy/internal/shared/constants"
)

type PaymentTransactionModel struct {
	ID                    uint   `gorm:"primarykey"`
	Reference             string `gorm:"uniqueIndex;not null;size:36"`
	SubscriptionID        uint   `gorm:"not null;index"`
	TenantID              uint   `gorm:"not null;index"`
	Provider              string `gorm:"not null;size:20"`
	ExternalTransactionID string `gorm:"uniqueIndex:uk_payment_external_id;not null;size:255"`
	CheckoutURL           string `gorm:"size:2048"`
	Amount                uint64 `gorm:"not null"`
	Currency              string `gorm:"not null;size:3"`
	Status                string `gorm:"not null;size:20;index"`
	ConfirmedAt           *time.Time
	// Metadata keeps provider-specific fields for reconciliation.
	Metadata  datatypes.JSONMap
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (PaymentTransactionModel) TableName() string {
	return constants.TablePaymentTransactions
}
