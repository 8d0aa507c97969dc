package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/tenancy/internal/domain/subscription"
	"github.com/orris-inc/tenancy/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/tenancy/internal/infrastructure/persistence/models"
	"github.com/orris-inc/tenancy/internal/shared/db"
	apperrors "github.com/orris-inc/tenancy/internal/shared/errors"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

type PlanRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PlanMapper
	logger logger.Interface
}

func NewPlanRepository(db *gorm.DB, logger logger.Interface) subscription.PlanRepository {
	return &PlanRepositoryImpl{
		db:     db,
		mapper: mappers.NewPlanMapper(),
		logger: logger,
	}
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, plan *subscription.Plan) error {
	model := r.mapper.ToModel(plan)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return subscription.ErrPlanSlugExists
		}
		r.logger.Errorw("failed to create plan", "slug", model.Slug, "error", err)
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return plan.SetID(model.ID)
}

func (r *PlanRepositoryImpl) Update(ctx context.Context, plan *subscription.Plan) error {
	model := r.mapper.ToModel(plan)
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PlanModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":             model.Name,
			"description":      model.Description,
			"price":            model.Price,
			"currency":         model.Currency,
			"max_entitlement":  model.MaxEntitlement,
			"duration_days":    model.DurationDays,
			"is_trial":         model.IsTrial,
			"status":           model.Status,
			"payment_provider": model.PaymentProvider,
			"sort_order":       model.SortOrder,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update plan", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return subscription.ErrPlanNotFound
	}
	return nil
}

func (r *PlanRepositoryImpl) GetByID(ctx context.Context, id uint) (*subscription.Plan, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PlanRepositoryImpl) GetBySlug(ctx context.Context, slug string) (*subscription.Plan, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *PlanRepositoryImpl) List(ctx context.Context, filter subscription.PlanFilter) ([]*subscription.Plan, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.PlanModel{})
	if filter.Status != nil {
		query = query.Scopes(db.WithStatus(string(*filter.Status)))
	}
	if filter.IsTrial != nil {
		query = query.Where("is_trial = ?", *filter.IsTrial)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count plans", "error", err)
		return nil, 0, fmt.Errorf("failed to count plans: %w", err)
	}

	var rows []*models.PlanModel
	if err := query.Scopes(db.Paginate(filter.Page, filter.PageSize)).
		Order("sort_order ASC, price ASC, id ASC").
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list plans", "error", err)
		return nil, 0, fmt.Errorf("failed to list plans: %w", err)
	}

	plans, err := r.mapper.ToEntities(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to map plans: %w", err)
	}
	return plans, total, nil
}

func (r *PlanRepositoryImpl) first(ctx context.Context, query string, args ...interface{}) (*subscription.Plan, error) {
	var model models.PlanModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Errorw("failed to get plan", "query", query, "error", err)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	plan, err := r.mapper.ToEntity(&model)
	if err != nil {
		return nil, fmt.Errorf("failed to map plan: %w", err)
	}
	return plan, nil
}
