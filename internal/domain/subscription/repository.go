package subscription

import (
	"context"
	"time"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *Subscription) error
	// Update persists state changes; a stale version yields a conflict.
	Update(ctx context.Context, subscription *Subscription) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)

	// GetActiveByTenantID returns the tenant's ACTIVE row, lapsed or not,
	// or nil when there is none.
	GetActiveByTenantID(ctx context.Context, tenantID uint) (*Subscription, error)
	GetPendingByTenantID(ctx context.Context, tenantID uint) ([]*Subscription, error)
	ListByTenantID(ctx context.Context, tenantID uint) ([]*Subscription, error)
	HasTrialHistory(ctx context.Context, tenantID uint) (bool, error)

	FindActive(ctx context.Context) ([]*Subscription, error)
	FindLapsed(ctx context.Context, now time.Time) ([]*Subscription, error)
}

type PlanRepository interface {
	Create(ctx context.Context, plan *Plan) error
	Update(ctx context.Context, plan *Plan) error
	GetByID(ctx context.Context, id uint) (*Plan, error)
	GetBySlug(ctx context.Context, slug string) (*Plan, error)
	List(ctx context.Context, filter PlanFilter) ([]*Plan, int64, error)
}

type PlanFilter struct {
	Status   *PlanStatus
	IsTrial  *bool
	Page     int
	PageSize int
}
