package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/tenancy/internal/domain/subscription"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

// PlanDefinition is a catalog entry keyed by slug.
type PlanDefinition struct {
	Slug            string
	Name            string
	Description     string
	Price           uint64
	Currency        string
	MaxEntitlement  int
	DurationDays    int
	IsTrial         bool
	Active          bool
	SortOrder       int
	PaymentProvider *vo.PaymentProvider
}

type SyncPlansResult struct {
	Created int
	Updated int
}

// SyncPlansUseCase upserts the plan catalog by slug. Plans missing from the
// definitions are left alone; existing subscriptions keep their snapshots.
type SyncPlansUseCase struct {
	plans  subscription.PlanRepository
	logger logger.Interface
}

func NewSyncPlansUseCase(plans subscription.PlanRepository, log logger.Interface) *SyncPlansUseCase {
	return &SyncPlansUseCase{plans: plans, logger: log}
}

func (uc *SyncPlansUseCase) Execute(ctx context.Context, defs []PlanDefinition) (*SyncPlansResult, error) {
	result := &SyncPlansResult{}
	for _, def := range defs {
		existing, err := uc.plans.GetBySlug(ctx, def.Slug)
		if err != nil {
			return result, fmt.Errorf("failed to get plan %s: %w", def.Slug, err)
		}

		if existing == nil {
			plan, err := subscription.NewPlan(def.Name, def.Slug, def.Price, def.Currency,
				def.MaxEntitlement, def.DurationDays, def.IsTrial)
			if err != nil {
				return result, fmt.Errorf("invalid plan %s: %w", def.Slug, err)
			}
			if err := applyDefinition(plan, def); err != nil {
				return result, fmt.Errorf("invalid plan %s: %w", def.Slug, err)
			}
			if err := uc.plans.Create(ctx, plan); err != nil {
				return result, fmt.Errorf("failed to create plan %s: %w", def.Slug, err)
			}
			uc.logger.Infow("plan created", "slug", def.Slug, "plan_id", plan.ID())
			result.Created++
			continue
		}

		if err := existing.UpdateTerms(def.Name, def.Price, def.Currency,
			def.MaxEntitlement, def.DurationDays, def.IsTrial); err != nil {
			return result, fmt.Errorf("invalid plan %s: %w", def.Slug, err)
		}
		if err := applyDefinition(existing, def); err != nil {
			return result, fmt.Errorf("invalid plan %s: %w", def.Slug, err)
		}
		if err := uc.plans.Update(ctx, existing); err != nil {
			return result, fmt.Errorf("failed to update plan %s: %w", def.Slug, err)
		}
		uc.logger.Infow("plan updated", "slug", def.Slug, "plan_id", existing.ID())
		result.Updated++
	}
	return result, nil
}

func applyDefinition(plan *subscription.Plan, def PlanDefinition) error {
	plan.SetDescription(def.Description)
	plan.SetSortOrder(def.SortOrder)
	if err := plan.SetPaymentProvider(def.PaymentProvider); err != nil {
		return err
	}
	if def.Active {
		plan.Activate()
	} else {
		plan.Deactivate()
	}
	return nil
}
