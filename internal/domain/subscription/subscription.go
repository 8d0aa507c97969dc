package subscription

import (
	"fmt"
	"time"

	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/shared/biztime"
)

// Subscription is a tenant's time-bounded binding to a plan snapshot.
// Rows are never deleted; superseded and cancelled ones stay for audit.
type Subscription struct {
	id                uint
	tenantID          uint
	plan              vo.PlanSnapshot
	status            vo.SubscriptionStatus
	startDate         time.Time
	endDate           time.Time
	customEntitlement *int
	activatedBy       vo.Actor
	version           int
	loadedVersion     int
	createdAt         time.Time
	updatedAt         time.Time
}

// NewActiveSubscription creates a subscription that grants access immediately.
func NewActiveSubscription(tenantID uint, plan vo.PlanSnapshot, actor vo.Actor, customEntitlement *int, now time.Time) (*Subscription, error) {
	return newSubscription(tenantID, plan, vo.StatusActive, actor, customEntitlement, now)
}

// NewPendingSubscription creates a subscription awaiting payment confirmation.
func NewPendingSubscription(tenantID uint, plan vo.PlanSnapshot, actor vo.Actor, now time.Time) (*Subscription, error) {
	return newSubscription(tenantID, plan, vo.StatusPending, actor, nil, now)
}

func newSubscription(tenantID uint, plan vo.PlanSnapshot, status vo.SubscriptionStatus, actor vo.Actor, customEntitlement *int, now time.Time) (*Subscription, error) {
	if tenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if customEntitlement != nil && *customEntitlement < 1 {
		return nil, fmt.Errorf("custom entitlement must be at least 1")
	}

	now = now.UTC()
	return &Subscription{
		tenantID:          tenantID,
		plan:              plan,
		status:            status,
		startDate:         now,
		endDate:           biztime.AddDays(now, plan.DurationDays),
		customEntitlement: customEntitlement,
		activatedBy:       actor,
		version:           1,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// ReconstructSubscription reconstructs a subscription from persistence
func ReconstructSubscription(
	id, tenantID uint,
	plan vo.PlanSnapshot,
	status vo.SubscriptionStatus,
	startDate, endDate time.Time,
	customEntitlement *int,
	activatedBy vo.Actor,
	version int,
	createdAt, updatedAt time.Time,
) (*Subscription, error) {
	if id == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if tenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if !vo.ValidStatuses[status] {
		return nil, fmt.Errorf("invalid subscription status: %s", status)
	}

	return &Subscription{
		id:                id,
		tenantID:          tenantID,
		plan:              plan,
		status:            status,
		startDate:         startDate,
		endDate:           endDate,
		customEntitlement: customEntitlement,
		activatedBy:       activatedBy,
		version:           version,
		loadedVersion:     version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}, nil
}

func (s *Subscription) ID() uint {
	return s.id
}

func (s *Subscription) TenantID() uint {
	return s.tenantID
}

// PlanID returns the catalog plan the snapshot was taken from
func (s *Subscription) PlanID() uint {
	return s.plan.PlanID
}

func (s *Subscription) Plan() vo.PlanSnapshot {
	return s.plan
}

func (s *Subscription) Status() vo.SubscriptionStatus {
	return s.status
}

func (s *Subscription) StartDate() time.Time {
	return s.startDate
}

func (s *Subscription) EndDate() time.Time {
	return s.endDate
}

func (s *Subscription) CustomEntitlement() *int {
	return s.customEntitlement
}

func (s *Subscription) ActivatedBy() vo.Actor {
	return s.activatedBy
}

// Version returns the aggregate version for optimistic locking
func (s *Subscription) Version() int {
	return s.version
}

func (s *Subscription) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Subscription) UpdatedAt() time.Time {
	return s.updatedAt
}

// LoadedVersion returns the version storage held when this entity was read or
// last saved. Zero for a subscription that was never persisted.
func (s *Subscription) LoadedVersion() int {
	return s.loadedVersion
}

// MarkPersisted records that storage now holds the current version (only for
// persistence layer use)
func (s *Subscription) MarkPersisted() {
	s.loadedVersion = s.version
}

// SetID sets the subscription ID (only for persistence layer use)
func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

// EffectiveEntitlement is the custom override when set, otherwise the plan cap.
func (s *Subscription) EffectiveEntitlement() int {
	if s.customEntitlement != nil {
		return *s.customEntitlement
	}
	return s.plan.MaxEntitlement
}

// IsLiveAt reports whether the subscription grants access at now.
func (s *Subscription) IsLiveAt(now time.Time) bool {
	return s.status == vo.StatusActive && s.endDate.After(now)
}

// IsLapsedAt reports an ACTIVE row whose end date has passed but which has
// not been marked expired yet.
func (s *Subscription) IsLapsedAt(now time.Time) bool {
	return s.status == vo.StatusActive && !s.endDate.After(now)
}

// DaysRemaining counts business calendar days from now until the end date, never negative.
func (s *Subscription) DaysRemaining(now time.Time) int {
	days := biztime.CalendarDaysBetween(now, s.endDate)
	if days < 0 {
		return 0
	}
	return days
}

// ActiveTenantSlot is the value of the storage uniqueness column: the tenant
// ID while ACTIVE, nil otherwise.
func (s *Subscription) ActiveTenantSlot() *uint {
	if s.status != vo.StatusActive {
		return nil
	}
	id := s.tenantID
	return &id
}

// Activate grants access to a PENDING subscription. The paid period starts
// at confirmation time. Activating an ACTIVE subscription is a no-op.
func (s *Subscription) Activate(now time.Time) error {
	if s.status == vo.StatusActive {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusActive) {
		return ErrInvalidTransition(s.status.String(), vo.StatusActive.String())
	}

	now = now.UTC()
	s.status = vo.StatusActive
	s.startDate = now
	s.endDate = biztime.AddDays(now, s.plan.DurationDays)
	s.touch(now)
	return nil
}

// Renew stacks the target plan's duration onto the current end date. The
// snapshot is refreshed to the target, whose terms are identical.
func (s *Subscription) Renew(target vo.PlanSnapshot, actor vo.Actor, now time.Time) error {
	if s.status != vo.StatusActive {
		return fmt.Errorf("cannot renew subscription with status %s", s.status)
	}
	if err := target.Validate(); err != nil {
		return err
	}
	if !s.plan.SameTerms(target) {
		return fmt.Errorf("renewal requires identical plan terms")
	}

	s.plan = target
	s.endDate = biztime.AddDays(s.endDate, target.DurationDays)
	if !actor.IsNone() {
		s.activatedBy = actor
	}
	s.touch(now)
	return nil
}

// Extend adds days to the current end date.
func (s *Subscription) Extend(days int, now time.Time) error {
	if days < 1 {
		return fmt.Errorf("extension must be at least 1 day")
	}
	if s.status != vo.StatusActive {
		return fmt.Errorf("cannot extend subscription with status %s", s.status)
	}

	s.endDate = biztime.AddDays(s.endDate, days)
	s.touch(now)
	return nil
}

// SetCustomEntitlement replaces the per-subscription cap; nil restores the plan cap.
func (s *Subscription) SetCustomEntitlement(custom *int, now time.Time) error {
	if custom != nil && *custom < 1 {
		return fmt.Errorf("custom entitlement must be at least 1")
	}
	s.customEntitlement = custom
	s.touch(now)
	return nil
}

// Expire ends an ACTIVE subscription, whether superseded, cancelled or lapsed.
func (s *Subscription) Expire(now time.Time) error {
	if s.status == vo.StatusExpired {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusExpired) {
		return ErrInvalidTransition(s.status.String(), vo.StatusExpired.String())
	}

	s.status = vo.StatusExpired
	s.touch(now)
	return nil
}

// Cancel abandons a PENDING subscription that was never paid.
func (s *Subscription) Cancel(now time.Time) error {
	if s.status == vo.StatusCancelled {
		return nil
	}
	if !s.status.CanTransitionTo(vo.StatusCancelled) {
		return ErrInvalidTransition(s.status.String(), vo.StatusCancelled.String())
	}

	s.status = vo.StatusCancelled
	s.touch(now)
	return nil
}

func (s *Subscription) touch(now time.Time) {
	s.updatedAt = now.UTC()
	s.version++
}
