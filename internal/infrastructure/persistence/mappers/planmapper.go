package mappers

import (
	"github.com/orris-inc/tenancy/internal/domain/subscription"
	"github.com/orris-inc/tenancy/internal/infrastructure/persistence/models"
	"github.com/orris-inc/tenancy/internal/shared/mapper"
)

type PlanMapper interface {
	ToEntity(model *models.PlanModel) (*subscription.Plan, error)
	ToModel(entity *subscription.Plan) *models.PlanModel
	ToEntities(rows []*models.PlanModel) ([]*subscription.Plan, error)
}

type PlanMapperImpl struct{}

func NewPlanMapper() PlanMapper {
	return &PlanMapperImpl{}
}

func (m *PlanMapperImpl) ToEntity(model *models.PlanModel) (*subscription.Plan, error) {
	if model == nil {
		return nil, nil
	}
	return subscription.ReconstructPlan(
		model.ID,
		model.Name,
		model.Slug,
		model.Description,
		model.Price,
		model.Currency,
		model.MaxEntitlement,
		model.DurationDays,
		model.IsTrial,
		subscription.PlanStatus(model.Status),
		toProvider(model.PaymentProvider),
		model.SortOrder,
		model.Version,
		model.CreatedAt.UTC(),
		model.UpdatedAt.UTC(),
	)
}

func (m *PlanMapperImpl) ToModel(entity *subscription.Plan) *models.PlanModel {
	if entity == nil {
		return nil
	}
	return &models.PlanModel{
		ID:              entity.ID(),
		Name:            entity.Name(),
		Slug:            entity.Slug(),
		Description:     entity.Description(),
		Price:           entity.Price(),
		Currency:        entity.Currency(),
		MaxEntitlement:  entity.MaxEntitlement(),
		DurationDays:    entity.DurationDays(),
		IsTrial:         entity.IsTrial(),
		Status:          string(entity.Status()),
		PaymentProvider: fromProvider(entity.PaymentProvider()),
		SortOrder:       entity.SortOrder(),
		Version:         entity.Version(),
		CreatedAt:       entity.CreatedAt(),
		UpdatedAt:       entity.UpdatedAt(),
	}
}

func (m *PlanMapperImpl) ToEntities(rows []*models.PlanModel) ([]*subscription.Plan, error) {
	return mapper.MapSliceWithID(rows, m.ToEntity, func(model *models.PlanModel) uint { return model.ID })
}
