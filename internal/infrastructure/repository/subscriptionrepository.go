package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/tenancy/internal/domain/subscription"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/tenancy/internal/infrastructure/persistence/models"
	"github.com/orris-inc/tenancy/internal/shared/db"
	apperrors "github.com/orris-inc/tenancy/internal/shared/errors"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(db *gorm.DB, logger logger.Interface) subscription.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, entity *subscription.Subscription) error {
	model := r.mapper.ToModel(entity)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return subscription.ErrActiveSlotTaken
		}
		r.logger.Errorw("failed to create subscription in database", "tenant_id", model.TenantID, "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set subscription ID: %w", err)
	}
	entity.MarkPersisted()

	r.logger.Infow("subscription created", "id", model.ID, "tenant_id", model.TenantID, "plan_id", model.PlanID, "status", model.Status)
	return nil
}

// Update writes the full row only if storage still holds the version the
// entity was loaded at. Otherwise another writer got there first.
func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, entity *subscription.Subscription) error {
	model := r.mapper.ToModel(entity)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("id = ? AND version = ?", model.ID, entity.LoadedVersion()).
		Updates(map[string]interface{}{
			"plan_id":            model.PlanID,
			"plan_is_trial":      model.PlanIsTrial,
			"plan_snapshot":      model.PlanSnapshot,
			"status":             model.Status,
			"active_tenant_id":   model.ActiveTenantID,
			"start_date":         model.StartDate,
			"end_date":           model.EndDate,
			"custom_entitlement": model.CustomEntitlement,
			"activated_by_kind":  model.ActivatedByKind,
			"activated_by_id":    model.ActivatedByID,
			"version":            model.Version,
			"updated_at":         model.UpdatedAt,
		})
	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return subscription.ErrActiveSlotTaken
		}
		r.logger.Errorw("failed to update subscription", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewConflictError("subscription was modified concurrently", fmt.Sprintf("subscription_id=%d", model.ID))
	}
	entity.MarkPersisted()
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return r.toEntity(&model)
}

func (r *SubscriptionRepositoryImpl) GetActiveByTenantID(ctx context.Context, tenantID uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.ForTenant(tenantID), db.WithStatus(vo.StatusActive.String())).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get active subscription", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}
	return r.toEntity(&model)
}

func (r *SubscriptionRepositoryImpl) GetPendingByTenantID(ctx context.Context, tenantID uint) ([]*subscription.Subscription, error) {
	return r.find(ctx, "tenant_id = ? AND status = ?", tenantID, vo.StatusPending.String())
}

func (r *SubscriptionRepositoryImpl) ListByTenantID(ctx context.Context, tenantID uint) ([]*subscription.Subscription, error) {
	return r.find(ctx, "tenant_id = ?", tenantID)
}

// HasTrialHistory counts trial rows that were not cancelled before activation.
func (r *SubscriptionRepositoryImpl) HasTrialHistory(ctx context.Context, tenantID uint) (bool, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("tenant_id = ? AND plan_is_trial = ? AND status <> ?", tenantID, true, vo.StatusCancelled.String()).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to check trial history", "tenant_id", tenantID, "error", err)
		return false, fmt.Errorf("failed to check trial history: %w", err)
	}
	return count > 0, nil
}

func (r *SubscriptionRepositoryImpl) FindActive(ctx context.Context) ([]*subscription.Subscription, error) {
	return r.find(ctx, "status = ?", vo.StatusActive.String())
}

func (r *SubscriptionRepositoryImpl) FindLapsed(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	return r.find(ctx, "status = ? AND end_date <= ?", vo.StatusActive.String(), now.UTC())
}

func (r *SubscriptionRepositoryImpl) find(ctx context.Context, query string, args ...interface{}) ([]*subscription.Subscription, error) {
	var rows []*models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, args...).Order("id ASC").Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to query subscriptions", "query", query, "error", err)
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}

	entities, err := r.mapper.ToEntities(rows)
	if err != nil {
		r.logger.Errorw("failed to map subscription models to entities", "error", err)
		return nil, fmt.Errorf("failed to map subscriptions: %w", err)
	}
	return entities, nil
}

func (r *SubscriptionRepositoryImpl) toEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	entity, err := r.mapper.ToEntity(model)
	if err != nil {
		r.logger.Errorw("failed to map subscription model to entity", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to map subscription: %w", err)
	}
	return entity, nil
}
