package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/tenancy/internal/domain/tenant"
	"github.com/orris-inc/tenancy/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/tenancy/internal/infrastructure/persistence/models"
	"github.com/orris-inc/tenancy/internal/shared/db"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

type TenantRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.TenantMapper
	logger logger.Interface
}

func NewTenantRepository(db *gorm.DB, logger logger.Interface) tenant.Repository {
	return &TenantRepositoryImpl{
		db:     db,
		mapper: mappers.NewTenantMapper(),
		logger: logger,
	}
}

func (r *TenantRepositoryImpl) Create(ctx context.Context, t *tenant.Tenant) error {
	model := r.mapper.ToModel(t)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create tenant", "name", model.Name, "error", err)
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return t.SetID(model.ID)
}

func (r *TenantRepositoryImpl) GetByID(ctx context.Context, id uint) (*tenant.Tenant, error) {
	var model models.TenantModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get tenant by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	t, err := r.mapper.ToEntity(&model)
	if err != nil {
		return nil, fmt.Errorf("failed to map tenant: %w", err)
	}
	return t, nil
}

// UpdateProjection leaves name and contact columns alone so profile edits
// made elsewhere are never overwritten by a lifecycle change.
func (r *TenantRepositoryImpl) UpdateProjection(ctx context.Context, t *tenant.Tenant) error {
	model := r.mapper.ToModel(t)
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.TenantModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"subscription_status": model.SubscriptionStatus,
			"current_plan_id":     model.CurrentPlanID,
			"subscribed_at":       model.SubscribedAt,
			"payment_provider":    model.PaymentProvider,
			"updated_at":          model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update tenant projection", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update tenant projection: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}
