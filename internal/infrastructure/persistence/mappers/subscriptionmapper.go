package mappers

import (
	"fmt"

	"gorm.io/datatypes"

	"github.com/orris-inc/tenancy/internal/domain/subscription"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/infrastructure/persistence/models"
	"github.com/orris-inc/tenancy/internal/shared/mapper"
)

type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) *models.SubscriptionModel
	ToEntities(rows []*models.SubscriptionModel) ([]*subscription.Subscription, error)
}

type SubscriptionMapperImpl struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &SubscriptionMapperImpl{}
}

func (m *SubscriptionMapperImpl) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	status := vo.SubscriptionStatus(model.Status)
	if !vo.ValidStatuses[status] {
		return nil, fmt.Errorf("invalid subscription status: %s", model.Status)
	}

	actor, err := vo.ParseActor(model.ActivatedByKind, model.ActivatedByID)
	if err != nil {
		return nil, fmt.Errorf("invalid activated_by: %w", err)
	}

	data := model.PlanSnapshot.Data()
	snapshot := vo.PlanSnapshot{
		PlanID:         data.PlanID,
		Name:           data.Name,
		Price:          data.Price,
		Currency:       data.Currency,
		MaxEntitlement: data.MaxEntitlement,
		DurationDays:   data.DurationDays,
		IsTrial:        data.IsTrial,
		Provider:       toProvider(data.PaymentProvider),
	}
	if snapshot.PlanID == 0 {
		snapshot.PlanID = model.PlanID
	}

	return subscription.ReconstructSubscription(
		model.ID,
		model.TenantID,
		snapshot,
		status,
		model.StartDate.UTC(),
		model.EndDate.UTC(),
		model.CustomEntitlement,
		actor,
		model.Version,
		model.CreatedAt.UTC(),
		model.UpdatedAt.UTC(),
	)
}

func (m *SubscriptionMapperImpl) ToModel(entity *subscription.Subscription) *models.SubscriptionModel {
	if entity == nil {
		return nil
	}

	plan := entity.Plan()
	actor := entity.ActivatedBy()
	return &models.SubscriptionModel{
		ID:          entity.ID(),
		TenantID:    entity.TenantID(),
		PlanID:      plan.PlanID,
		PlanIsTrial: plan.IsTrial,
		PlanSnapshot: datatypes.NewJSONType(models.PlanSnapshotData{
			PlanID:          plan.PlanID,
			Name:            plan.Name,
			Price:           plan.Price,
			Currency:        plan.Currency,
			MaxEntitlement:  plan.MaxEntitlement,
			DurationDays:    plan.DurationDays,
			IsTrial:         plan.IsTrial,
			PaymentProvider: fromProvider(plan.Provider),
		}),
		Status:            entity.Status().String(),
		ActiveTenantID:    entity.ActiveTenantSlot(),
		StartDate:         entity.StartDate(),
		EndDate:           entity.EndDate(),
		CustomEntitlement: entity.CustomEntitlement(),
		ActivatedByKind:   string(actor.Kind()),
		ActivatedByID:     actor.ID(),
		Version:           entity.Version(),
		CreatedAt:         entity.CreatedAt(),
		UpdatedAt:         entity.UpdatedAt(),
	}
}

func (m *SubscriptionMapperImpl) ToEntities(rows []*models.SubscriptionModel) ([]*subscription.Subscription, error) {
	return mapper.MapSliceWithID(rows, m.ToEntity, func(model *models.SubscriptionModel) uint { return model.ID })
}

func toProvider(p *string) *vo.PaymentProvider {
	if p == nil || *p == "" {
		return nil
	}
	provider := vo.PaymentProvider(*p)
	return &provider
}

func fromProvider(p *vo.PaymentProvider) *string {
	if p == nil {
		return nil
	}
	s := p.String()
	return &s
}
