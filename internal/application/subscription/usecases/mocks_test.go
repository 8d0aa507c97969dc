package usecases

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/tenancy/internal/application/notification"
	"github.com/orris-inc/tenancy/internal/application/payment/paymentgateway"
	"github.com/orris-inc/tenancy/internal/domain/payment"
	paymentvo "github.com/orris-inc/tenancy/internal/domain/payment/valueobjects"
	"github.com/orris-inc/tenancy/internal/domain/subscription"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/tenancy/internal/domain/tenant"
	"github.com/orris-inc/tenancy/internal/shared/logger"
)

// fakeSubscriptionRepo keeps rows in memory and enforces the one-ACTIVE-row
// rule the way the unique active_tenant_id column does.
type fakeSubscriptionRepo struct {
	mu     sync.Mutex
	rows   map[uint]*subscription.Subscription
	nextID uint
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{rows: make(map[uint]*subscription.Subscription)}
}

func (r *fakeSubscriptionRepo) slotTaken(s *subscription.Subscription) bool {
	slot := s.ActiveTenantSlot()
	if slot == nil {
		return false
	}
	for id, row := range r.rows {
		if id == s.ID() {
			continue
		}
		if other := row.ActiveTenantSlot(); other != nil && *other == *slot {
			return true
		}
	}
	return false
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, s *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slotTaken(s) {
		return subscription.ErrActiveSlotTaken
	}
	r.nextID++
	if err := s.SetID(r.nextID); err != nil {
		return err
	}
	r.rows[s.ID()] = s
	return nil
}

func (r *fakeSubscriptionRepo) Update(_ context.Context, s *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[s.ID()]; !ok {
		return subscription.ErrSubscriptionNotFound
	}
	if r.slotTaken(s) {
		return subscription.ErrActiveSlotTaken
	}
	r.rows[s.ID()] = s
	return nil
}

func (r *fakeSubscriptionRepo) GetByID(_ context.Context, id uint) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id], nil
}

func (r *fakeSubscriptionRepo) GetActiveByTenantID(_ context.Context, tenantID uint) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.TenantID() == tenantID && s.Status() == vo.StatusActive {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) GetPendingByTenantID(_ context.Context, tenantID uint) ([]*subscription.Subscription, error) {
	return r.filter(func(s *subscription.Subscription) bool {
		return s.TenantID() == tenantID && s.Status() == vo.StatusPending
	}), nil
}

func (r *fakeSubscriptionRepo) ListByTenantID(_ context.Context, tenantID uint) ([]*subscription.Subscription, error) {
	return r.filter(func(s *subscription.Subscription) bool { return s.TenantID() == tenantID }), nil
}

func (r *fakeSubscriptionRepo) HasTrialHistory(_ context.Context, tenantID uint) (bool, error) {
	rows := r.filter(func(s *subscription.Subscription) bool {
		return s.TenantID() == tenantID && s.Plan().IsTrial && s.Status() != vo.StatusCancelled
	})
	return len(rows) > 0, nil
}

func (r *fakeSubscriptionRepo) FindActive(_ context.Context) ([]*subscription.Subscription, error) {
	return r.filter(func(s *subscription.Subscription) bool { return s.Status() == vo.StatusActive }), nil
}

func (r *fakeSubscriptionRepo) FindLapsed(_ context.Context, now time.Time) ([]*subscription.Subscription, error) {
	return r.filter(func(s *subscription.Subscription) bool { return s.IsLapsedAt(now) }), nil
}

func (r *fakeSubscriptionRepo) filter(keep func(*subscription.Subscription) bool) []*subscription.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*subscription.Subscription
	for _, s := range r.rows {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (r *fakeSubscriptionRepo) count(status vo.SubscriptionStatus) int {
	return len(r.filter(func(s *subscription.Subscription) bool { return s.Status() == status }))
}

type fakePlanRepo struct {
	plans map[uint]*subscription.Plan
}

func (r *fakePlanRepo) Create(_ context.Context, p *subscription.Plan) error {
	if p.ID() == 0 {
		if err := p.SetID(uint(len(r.plans) + 1000)); err != nil {
			return err
		}
	}
	r.plans[p.ID()] = p
	return nil
}

func (r *fakePlanRepo) Update(_ context.Context, p *subscription.Plan) error {
	r.plans[p.ID()] = p
	return nil
}

func (r *fakePlanRepo) GetByID(_ context.Context, id uint) (*subscription.Plan, error) {
	return r.plans[id], nil
}

func (r *fakePlanRepo) GetBySlug(_ context.Context, slug string) (*subscription.Plan, error) {
	for _, p := range r.plans {
		if p.Slug() == slug {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) List(_ context.Context, _ subscription.PlanFilter) ([]*subscription.Plan, int64, error) {
	out := make([]*subscription.Plan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

type fakeTenantRepo struct {
	tenants map[uint]*tenant.Tenant
	writes  int
}

func (r *fakeTenantRepo) Create(_ context.Context, t *tenant.Tenant) error {
	r.tenants[t.ID()] = t
	return nil
}

func (r *fakeTenantRepo) GetByID(_ context.Context, id uint) (*tenant.Tenant, error) {
	return r.tenants[id], nil
}

func (r *fakeTenantRepo) UpdateProjection(_ context.Context, t *tenant.Tenant) error {
	r.writes++
	r.tenants[t.ID()] = t
	return nil
}

type fakeTransactionRepo struct {
	mu     sync.Mutex
	rows   map[uint]*payment.Transaction
	nextID uint
}

func (r *fakeTransactionRepo) Create(_ context.Context, tx *payment.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	if err := tx.SetID(r.nextID); err != nil {
		return err
	}
	r.rows[tx.ID()] = tx
	return nil
}

func (r *fakeTransactionRepo) GetByExternalID(_ context.Context, externalID string) (*payment.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.rows {
		if tx.ExternalTransactionID() == externalID {
			return tx, nil
		}
	}
	return nil, nil
}

func (r *fakeTransactionRepo) GetBySubscriptionID(_ context.Context, subscriptionID uint) ([]*payment.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*payment.Transaction
	for _, tx := range r.rows {
		if tx.SubscriptionID() == subscriptionID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) ConfirmIfPending(_ context.Context, id uint, confirmedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.rows[id]
	if !ok || tx.Status() != paymentvo.PaymentStatusPending {
		return false, nil
	}
	return tx.MarkConfirmed(confirmedAt), nil
}

type fakeEmployeeCounter struct {
	counts map[uint]int
}

func (c *fakeEmployeeCounter) Count(_ context.Context, tenantID uint) (int, error) {
	return c.counts[tenantID], nil
}

type fakeLocker struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
	fail  bool
}

func (l *fakeLocker) Lock(_ context.Context, tenantID uint) (func(), error) {
	if l.fail {
		return nil, errors.New("lock busy")
	}
	l.mu.Lock()
	m, ok := l.locks[tenantID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[tenantID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock, nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockGateway struct {
	mock.Mock
}

func (g *mockGateway) Provider() vo.PaymentProvider {
	return vo.PaymentProviderManual
}

func (g *mockGateway) CreateCheckout(ctx context.Context, req paymentgateway.CheckoutRequest) (*paymentgateway.Checkout, error) {
	args := g.Called(ctx, req)
	if c := args.Get(0); c != nil {
		return c.(*paymentgateway.Checkout), args.Error(1)
	}
	return nil, args.Error(1)
}

type recordingPort struct {
	mu   sync.Mutex
	sent []notification.Notification
	fail bool
}

func (p *recordingPort) Notify(_ context.Context, _ uint, n notification.Notification) error {
	if p.fail {
		return errors.New("smtp down")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	return nil
}

func (p *recordingPort) kinds() []notification.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notification.Kind, 0, len(p.sent))
	for _, n := range p.sent {
		out = append(out, n.Kind)
	}
	return out
}

type recordingMetrics struct {
	mu            sync.Mutex
	transitions   []string
	confirmations []string
	reminders     []int
	expired       int
}

func (m *recordingMetrics) RecordTransition(action vo.PlanChangeAction, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, string(action)+":"+outcome)
}

func (m *recordingMetrics) RecordConfirmation(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmations = append(m.confirmations, outcome)
}

func (m *recordingMetrics) RecordReminder(days int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders = append(m.reminders, days)
}

func (m *recordingMetrics) RecordExpired(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expired += count
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) advanceDays(days int) { c.now = c.now.AddDate(0, 0, days) }

// harness wires the use cases to in-memory collaborators.
type harness struct {
	t            *testing.T
	subs         *fakeSubscriptionRepo
	plans        *fakePlanRepo
	tenants      *fakeTenantRepo
	transactions *fakeTransactionRepo
	employees    *fakeEmployeeCounter
	locker       *fakeLocker
	gateway      *mockGateway
	port         *recordingPort
	metrics      *recordingMetrics
	clock        *clock
	deps         Deps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:            t,
		subs:         newFakeSubscriptionRepo(),
		plans:        &fakePlanRepo{plans: make(map[uint]*subscription.Plan)},
		tenants:      &fakeTenantRepo{tenants: make(map[uint]*tenant.Tenant)},
		transactions: &fakeTransactionRepo{rows: make(map[uint]*payment.Transaction)},
		employees:    &fakeEmployeeCounter{counts: make(map[uint]int)},
		locker:       &fakeLocker{locks: make(map[uint]*sync.Mutex)},
		gateway:      new(mockGateway),
		port:         &recordingPort{},
		metrics:      &recordingMetrics{},
		clock:        &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	log := logger.NewNopLogger()
	h.deps = Deps{
		Subscriptions: h.subs,
		Plans:         h.plans,
		Tenants:       h.tenants,
		Transactions:  h.transactions,
		Employees:     h.employees,
		Gateways:      paymentgateway.NewRegistry(vo.PaymentProviderManual, h.gateway),
		Locker:        h.locker,
		TxManager:     fakeTxManager{},
		Notifier:      notification.NewInlineDispatcher(h.port, log),
		Metrics:       h.metrics,
		Logger:        log,
		Now:           h.clock.Now,
	}
	return h
}

func (h *harness) addTenant(id uint) *tenant.Tenant {
	h.t.Helper()
	created := h.clock.now
	tn, err := tenant.ReconstructTenant(id, "Acme", "billing@acme.test", tenant.ProjectionInactive, nil, nil, nil, created, created)
	require.NoError(h.t, err)
	h.tenants.tenants[id] = tn
	return tn
}

func (h *harness) addPlan(id uint, name string, price uint64, maxEntitlement, durationDays int, isTrial bool) *subscription.Plan {
	h.t.Helper()
	p, err := subscription.NewPlan(name, name, price, "USD", maxEntitlement, durationDays, isTrial)
	require.NoError(h.t, err)
	require.NoError(h.t, p.SetID(id))
	h.plans.plans[id] = p
	return p
}

func (h *harness) subscribe() *SubscribeUseCase { return NewSubscribeUseCase(h.deps) }

func (h *harness) mustSubscribe(tenantID, planID uint, actor vo.Actor) *SubscribeResult {
	h.t.Helper()
	res, err := h.subscribe().Execute(context.Background(), SubscribeCommand{
		TenantID: tenantID,
		PlanID:   planID,
		Actor:    actor,
	})
	require.NoError(h.t, err)
	return res
}

func intPtr(v int) *int { return &v }
