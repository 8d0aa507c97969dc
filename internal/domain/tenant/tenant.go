package tenant

import (
	"errors"
	"fmt"
	"time"

	subdomain "github.com/orris-inc/tenancy/internal/domain/subscription"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
)

var ErrTenantNotFound = errors.New("tenant not found")

// ProjectionStatus is the denormalized subscription state kept on the tenant row.
type ProjectionStatus string

const (
	ProjectionActive   ProjectionStatus = "active"
	ProjectionPending  ProjectionStatus = "pending"
	ProjectionInactive ProjectionStatus = "inactive"
)

// Tenant is a subscribing organization. Its subscription fields are a
// projection of the authoritative subscription rows and are only written
// alongside them.
type Tenant struct {
	id                 uint
	name               string
	contactEmail       string
	subscriptionStatus ProjectionStatus
	currentPlanID      *uint
	subscribedAt       *time.Time
	paymentProvider    *vo.PaymentProvider
	createdAt          time.Time
	updatedAt          time.Time
}

func NewTenant(name, contactEmail string, now time.Time) (*Tenant, error) {
	if name == "" {
		return nil, fmt.Errorf("tenant name is required")
	}
	now = now.UTC()
	return &Tenant{
		name:               name,
		contactEmail:       contactEmail,
		subscriptionStatus: ProjectionInactive,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

func ReconstructTenant(
	id uint,
	name, contactEmail string,
	subscriptionStatus ProjectionStatus,
	currentPlanID *uint,
	subscribedAt *time.Time,
	paymentProvider *vo.PaymentProvider,
	createdAt, updatedAt time.Time,
) (*Tenant, error) {
	if id == 0 {
		return nil, fmt.Errorf("tenant ID cannot be zero")
	}
	if subscriptionStatus == "" {
		subscriptionStatus = ProjectionInactive
	}
	return &Tenant{
		id:                 id,
		name:               name,
		contactEmail:       contactEmail,
		subscriptionStatus: subscriptionStatus,
		currentPlanID:      currentPlanID,
		subscribedAt:       subscribedAt,
		paymentProvider:    paymentProvider,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}, nil
}

func (t *Tenant) ID() uint {
	return t.id
}

func (t *Tenant) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("tenant ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("tenant ID cannot be zero")
	}
	t.id = id
	return nil
}

func (t *Tenant) Name() string {
	return t.name
}

func (t *Tenant) ContactEmail() string {
	return t.contactEmail
}

func (t *Tenant) SubscriptionStatus() ProjectionStatus {
	return t.subscriptionStatus
}

func (t *Tenant) CurrentPlanID() *uint {
	return t.currentPlanID
}

func (t *Tenant) SubscribedAt() *time.Time {
	return t.subscribedAt
}

func (t *Tenant) PaymentProvider() *vo.PaymentProvider {
	return t.paymentProvider
}

func (t *Tenant) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Tenant) UpdatedAt() time.Time {
	return t.updatedAt
}

// ProjectSubscription mirrors sub onto the tenant. Only ACTIVE and PENDING
// subscriptions are projected; anything else clears the projection.
func (t *Tenant) ProjectSubscription(sub *subdomain.Subscription, provider *vo.PaymentProvider, now time.Time) {
	if sub == nil {
		t.ClearSubscription(now)
		return
	}

	var status ProjectionStatus
	switch sub.Status() {
	case vo.StatusActive:
		status = ProjectionActive
	case vo.StatusPending:
		status = ProjectionPending
	default:
		t.ClearSubscription(now)
		return
	}

	planID := sub.PlanID()
	subscribedAt := sub.StartDate()
	t.subscriptionStatus = status
	t.currentPlanID = &planID
	t.subscribedAt = &subscribedAt
	t.paymentProvider = provider
	t.updatedAt = now.UTC()
}

// ClearSubscription marks the tenant as having no plan.
func (t *Tenant) ClearSubscription(now time.Time) {
	t.subscriptionStatus = ProjectionInactive
	t.currentPlanID = nil
	t.subscribedAt = nil
	t.paymentProvider = nil
	t.updatedAt = now.UTC()
}

// ProjectionMatches reports whether the projection already reflects sub,
// nil meaning no live subscription.
func (t *Tenant) ProjectionMatches(sub *subdomain.Subscription) bool {
	if sub == nil || sub.Status() != vo.StatusActive {
		return t.subscriptionStatus != ProjectionActive
	}
	return t.subscriptionStatus == ProjectionActive &&
		t.currentPlanID != nil && *t.currentPlanID == sub.PlanID()
}
