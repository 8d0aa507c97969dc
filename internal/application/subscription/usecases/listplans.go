package usecases

import (
	"context"
	"fmt"
	"sort"

	"github.com/orris-inc/tenancy/internal/domain/subscription"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

type ListPlansQuery struct {
	// IncludeInactive lists retired plans too. Admin only at the HTTP layer.
	IncludeInactive bool
	Page            int
	PageSize        int
}

type ListPlansResult struct {
	Plans []*subscription.Plan
	Total int64
}

type ListPlansUseCase struct {
	plans  subscription.PlanRepository
	logger logger.Interface
}

func NewListPlansUseCase(plans subscription.PlanRepository, log logger.Interface) *ListPlansUseCase {
	return &ListPlansUseCase{plans: plans, logger: log}
}

func (uc *ListPlansUseCase) Execute(ctx context.Context, query ListPlansQuery) (*ListPlansResult, error) {
	filter := subscription.PlanFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if !query.IncludeInactive {
		status := subscription.PlanStatusActive
		filter.Status = &status
	}

	plans, total, err := uc.plans.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list plans", "error", err)
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	sort.SliceStable(plans, func(i, j int) bool {
		if plans[i].SortOrder() != plans[j].SortOrder() {
			return plans[i].SortOrder() < plans[j].SortOrder()
		}
		return plans[i].Price() < plans[j].Price()
	})
	return &ListPlansResult{Plans: plans, Total: total}, nil
}
