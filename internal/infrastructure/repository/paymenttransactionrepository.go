package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/tenancy/internal/domain/payment"
	vo "github.com/orris-inc/tenancy/internal/domain/payment/valueobjects"
	"github.com/orris-inc/tenancy/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/tenancy/internal/infrastructure/persistence/models"
	"github.com/orris-inc/tenancy/internal/shared/db"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

type PaymentTransactionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PaymentTransactionMapper
	logger logger.Interface
}

func NewPaymentTransactionRepository(db *gorm.DB, logger logger.Interface) payment.TransactionRepository {
	return &PaymentTransactionRepositoryImpl{
		db:     db,
		mapper: mappers.NewPaymentTransactionMapper(),
		logger: logger,
	}
}

func (r *PaymentTransactionRepositoryImpl) Create(ctx context.Context, tx *payment.Transaction) error {
	model := r.mapper.ToModel(tx)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create payment transaction",
			"subscription_id", model.SubscriptionID,
			"external_transaction_id", model.ExternalTransactionID,
			"error", err,
		)
		return fmt.Errorf("failed to create payment transaction: %w", err)
	}
	return tx.SetID(model.ID)
}

func (r *PaymentTransactionRepositoryImpl) GetByExternalID(ctx context.Context, externalTransactionID string) (*payment.Transaction, error) {
	var model models.PaymentTransactionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("external_transaction_id = ?", externalTransactionID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get payment transaction", "external_transaction_id", externalTransactionID, "error", err)
		return nil, fmt.Errorf("failed to get payment transaction: %w", err)
	}

	tx, err := r.mapper.ToEntity(&model)
	if err != nil {
		return nil, fmt.Errorf("failed to map payment transaction: %w", err)
	}
	return tx, nil
}

func (r *PaymentTransactionRepositoryImpl) GetBySubscriptionID(ctx context.Context, subscriptionID uint) ([]*payment.Transaction, error) {
	var rows []*models.PaymentTransactionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ?", subscriptionID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to list payment transactions", "subscription_id", subscriptionID, "error", err)
		return nil, fmt.Errorf("failed to list payment transactions: %w", err)
	}
	return r.mapper.ToEntities(rows)
}

// ConfirmIfPending is a compare-and-set on the status column; the database
// decides which of several concurrent webhook deliveries wins.
func (r *PaymentTransactionRepositoryImpl) ConfirmIfPending(ctx context.Context, id uint, confirmedAt time.Time) (bool, error) {
	confirmedAt = confirmedAt.UTC()
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentTransactionModel{}).
		Where("id = ? AND status = ?", id, vo.PaymentStatusPending.String()).
		Updates(map[string]interface{}{
			"status":       vo.PaymentStatusConfirmed.String(),
			"confirmed_at": confirmedAt,
			"updated_at":   confirmedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to confirm payment transaction", "id", id, "error", result.Error)
		return false, fmt.Errorf("failed to confirm payment transaction: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}
