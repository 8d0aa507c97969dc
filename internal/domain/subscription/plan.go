package subscription

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/currency"

	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/shared/biztime"
)

type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusInactive PlanStatus = "inactive"
)

// Plan is a priced tier granting a capped entitlement for a fixed number of days.
type Plan struct {
	id              uint
	name            string
	slug            string
	description     string
	price           uint64
	currency        string
	maxEntitlement  int
	durationDays    int
	isTrial         bool
	status          PlanStatus
	paymentProvider *vo.PaymentProvider
	sortOrder       int
	version         int
	createdAt       time.Time
	updatedAt       time.Time
}

func NewPlan(name, slug string, price uint64, currencyCode string, maxEntitlement, durationDays int, isTrial bool) (*Plan, error) {
	if name == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if slug == "" {
		return nil, fmt.Errorf("plan slug is required")
	}
	if len(name) > 100 {
		return nil, fmt.Errorf("plan name too long (max 100 characters)")
	}
	if len(slug) > 100 {
		return nil, fmt.Errorf("plan slug too long (max 100 characters)")
	}
	code, err := normalizeCurrency(currencyCode)
	if err != nil {
		return nil, err
	}
	if err := validateTerms(price, maxEntitlement, durationDays, isTrial); err != nil {
		return nil, err
	}

	now := biztime.NowUTC()
	return &Plan{
		name:           name,
		slug:           slug,
		price:          price,
		currency:       code,
		maxEntitlement: maxEntitlement,
		durationDays:   durationDays,
		isTrial:        isTrial,
		status:         PlanStatusActive,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructPlan rebuilds a plan from persistence
func ReconstructPlan(
	id uint,
	name, slug, description string,
	price uint64,
	currencyCode string,
	maxEntitlement, durationDays int,
	isTrial bool,
	status PlanStatus,
	paymentProvider *vo.PaymentProvider,
	sortOrder, version int,
	createdAt, updatedAt time.Time,
) (*Plan, error) {
	if id == 0 {
		return nil, fmt.Errorf("plan ID cannot be zero")
	}
	if status != PlanStatusActive && status != PlanStatusInactive {
		return nil, fmt.Errorf("invalid plan status: %s", status)
	}
	if paymentProvider != nil && !paymentProvider.IsValid() {
		return nil, fmt.Errorf("invalid payment provider: %s", *paymentProvider)
	}

	return &Plan{
		id:              id,
		name:            name,
		slug:            slug,
		description:     description,
		price:           price,
		currency:        currencyCode,
		maxEntitlement:  maxEntitlement,
		durationDays:    durationDays,
		isTrial:         isTrial,
		status:          status,
		paymentProvider: paymentProvider,
		sortOrder:       sortOrder,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}, nil
}

func normalizeCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return "", fmt.Errorf("invalid currency code: %s", code)
	}
	return unit.String(), nil
}

func validateTerms(price uint64, maxEntitlement, durationDays int, isTrial bool) error {
	if maxEntitlement < 1 {
		return fmt.Errorf("max entitlement must be at least 1")
	}
	if durationDays < 1 {
		return fmt.Errorf("duration must be at least 1 day")
	}
	if isTrial && price > 0 {
		return fmt.Errorf("trial plans must be free")
	}
	return nil
}

func (p *Plan) ID() uint {
	return p.id
}

func (p *Plan) Name() string {
	return p.name
}

func (p *Plan) Slug() string {
	return p.slug
}

func (p *Plan) Description() string {
	return p.description
}

// Price returns the price in minor currency units
func (p *Plan) Price() uint64 {
	return p.price
}

func (p *Plan) Currency() string {
	return p.currency
}

func (p *Plan) MaxEntitlement() int {
	return p.maxEntitlement
}

func (p *Plan) DurationDays() int {
	return p.durationDays
}

func (p *Plan) IsTrial() bool {
	return p.isTrial
}

func (p *Plan) Status() PlanStatus {
	return p.status
}

func (p *Plan) IsActive() bool {
	return p.status == PlanStatusActive
}

// PaymentProvider returns the plan's provider, nil meaning the configured default.
func (p *Plan) PaymentProvider() *vo.PaymentProvider {
	return p.paymentProvider
}

func (p *Plan) SortOrder() int {
	return p.sortOrder
}

func (p *Plan) Version() int {
	return p.version
}

func (p *Plan) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Plan) UpdatedAt() time.Time {
	return p.updatedAt
}

// SetID sets the plan ID (only for persistence layer use)
func (p *Plan) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("plan ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("plan ID cannot be zero")
	}
	p.id = id
	return nil
}

func (p *Plan) SetDescription(description string) {
	p.description = description
	p.touch()
}

func (p *Plan) SetSortOrder(order int) {
	p.sortOrder = order
	p.touch()
}

func (p *Plan) SetPaymentProvider(provider *vo.PaymentProvider) error {
	if provider != nil && !provider.IsValid() {
		return fmt.Errorf("invalid payment provider: %s", *provider)
	}
	p.paymentProvider = provider
	p.touch()
	return nil
}

// UpdateTerms replaces the commercial terms. Existing subscriptions keep
// their snapshot and are unaffected.
func (p *Plan) UpdateTerms(name string, price uint64, currencyCode string, maxEntitlement, durationDays int, isTrial bool) error {
	if name == "" {
		return fmt.Errorf("plan name is required")
	}
	code, err := normalizeCurrency(currencyCode)
	if err != nil {
		return err
	}
	if err := validateTerms(price, maxEntitlement, durationDays, isTrial); err != nil {
		return err
	}

	p.name = name
	p.price = price
	p.currency = code
	p.maxEntitlement = maxEntitlement
	p.durationDays = durationDays
	p.isTrial = isTrial
	p.touch()
	return nil
}

func (p *Plan) Activate() {
	if p.status == PlanStatusActive {
		return
	}
	p.status = PlanStatusActive
	p.touch()
}

func (p *Plan) Deactivate() {
	if p.status == PlanStatusInactive {
		return
	}
	p.status = PlanStatusInactive
	p.touch()
}

// Snapshot copies the plan terms for a subscription.
func (p *Plan) Snapshot() vo.PlanSnapshot {
	var provider *vo.PaymentProvider
	if p.paymentProvider != nil {
		pp := *p.paymentProvider
		provider = &pp
	}
	return vo.PlanSnapshot{
		PlanID:         p.id,
		Name:           p.name,
		Price:          p.price,
		Currency:       p.currency,
		MaxEntitlement: p.maxEntitlement,
		DurationDays:   p.durationDays,
		IsTrial:        p.isTrial,
		Provider:       provider,
	}
}

func (p *Plan) touch() {
	p.updatedAt = biztime.NowUTC()
	p.version++
}
