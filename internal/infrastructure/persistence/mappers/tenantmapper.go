package mappers

import (
	"github.com/orris-inc/tenancy/internal/domain/tenant"
	"github.com/orris-inc/tenancy/internal/infrastructure/persistence/models"
)

type TenantMapper interface {
	ToEntity(model *models.TenantModel) (*tenant.Tenant, error)
	ToModel(entity *tenant.Tenant) *models.TenantModel
}

type TenantMapperImpl struct{}

func NewTenantMapper() TenantMapper {
	return &TenantMapperImpl{}
}

func (m *TenantMapperImpl) ToEntity(model *models.TenantModel) (*tenant.Tenant, error) {
	if model == nil {
		return nil, nil
	}
	var subscribedAt = model.SubscribedAt
	if subscribedAt != nil {
		utc := subscribedAt.UTC()
		subscribedAt = &utc
	}
	return tenant.ReconstructTenant(
		model.ID,
		model.Name,
		model.ContactEmail,
		tenant.ProjectionStatus(model.SubscriptionStatus),
		model.CurrentPlanID,
		subscribedAt,
		toProvider(model.PaymentProvider),
		model.CreatedAt.UTC(),
		model.UpdatedAt.UTC(),
	)
}

func (m *TenantMapperImpl) ToModel(entity *tenant.Tenant) *models.TenantModel {
	if entity == nil {
		return nil
	}
	return &models.TenantModel{
		ID:                 entity.ID(),
		Name:               entity.Name(),
		ContactEmail:       entity.ContactEmail(),
		SubscriptionStatus: string(entity.SubscriptionStatus()),
		CurrentPlanID:      entity.CurrentPlanID(),
		SubscribedAt:       entity.SubscribedAt(),
		PaymentProvider:    fromProvider(entity.PaymentProvider()),
		CreatedAt:          entity.CreatedAt(),
		UpdatedAt:          entity.UpdatedAt(),
	}
}
