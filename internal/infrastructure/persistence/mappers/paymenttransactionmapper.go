package mappers

import (
	"github.com/orris-inc/tenancy/internal/domain/payment"
	paymentvo "github.com/orris-inc/tenancy/internal/domain/payment/valueobjects"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/infrastructure/persistence/models"
	"github.com/orris-inc/tenancy/internal/shared/mapper"
)

type PaymentTransactionMapper interface {
	ToEntity(model *models.PaymentTransactionModel) (*payment.Transaction, error)
	ToModel(entity *payment.Transaction) *models.PaymentTransactionModel
	ToEntities(rows []*models.PaymentTransactionModel) ([]*payment.Transaction, error)
}

type PaymentTransactionMapperImpl struct{}

func NewPaymentTransactionMapper() PaymentTransactionMapper {
	return &PaymentTransactionMapperImpl{}
}

func (m *PaymentTransactionMapperImpl) ToEntity(model *models.PaymentTransactionModel) (*payment.Transaction, error) {
	if model == nil {
		return nil, nil
	}
	return payment.ReconstructTransaction(
		model.ID,
		model.Reference,
		model.SubscriptionID,
		model.TenantID,
		vo.PaymentProvider(model.Provider),
		model.ExternalTransactionID,
		model.CheckoutURL,
		model.Amount,
		model.Currency,
		paymentvo.PaymentStatus(model.Status),
		model.ConfirmedAt,
		model.CreatedAt.UTC(),
		model.UpdatedAt.UTC(),
	)
}

func (m *PaymentTransactionMapperImpl) ToModel(entity *payment.Transaction) *models.PaymentTransactionModel {
	if entity == nil {
		return nil
	}
	return &models.PaymentTransactionModel{
		ID:                    entity.ID(),
		Reference:             entity.Reference(),
		SubscriptionID:        entity.SubscriptionID(),
		TenantID:              entity.TenantID(),
		Provider:              entity.Provider().String(),
		ExternalTransactionID: entity.ExternalTransactionID(),
		CheckoutURL:           entity.CheckoutURL(),
		Amount:                entity.Amount(),
		Currency:              entity.Currency(),
		Status:                entity.Status().String(),
		ConfirmedAt:           entity.ConfirmedAt(),
		CreatedAt:             entity.CreatedAt(),
		UpdatedAt:             entity.UpdatedAt(),
	}
}

func (m *PaymentTransactionMapperImpl) ToEntities(rows []*models.PaymentTransactionModel) ([]*payment.Transaction, error) {
	return mapper.MapSliceWithID(rows, m.ToEntity, func(model *models.PaymentTransactionModel) uint { return model.ID })
}
