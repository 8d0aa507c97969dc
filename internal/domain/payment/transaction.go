package payment

import (
	"fmt"
	"time"

	vo "github.com/orris-inc/tenancy/internal/domain/payment/valueobjects"
	subvo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
)

// Transaction records one checkout handed to a payment provider and its
// confirmation. The external transaction ID is unique per provider session,
// which is what makes webhook replays harmless.
type Transaction struct {
	id                    uint
	reference             string
	subscriptionID        uint
	tenantID              uint
	provider              subvo.PaymentProvider
	externalTransactionID string
	checkoutURL           string
	amount                uint64
	currency              string
	status                vo.PaymentStatus
	confirmedAt           *time.Time
	createdAt             time.Time
	updatedAt             time.Time
}

func NewTransaction(
	reference string,
	subscriptionID, tenantID uint,
	provider subvo.PaymentProvider,
	externalTransactionID, checkoutURL string,
	amount uint64,
	currency string,
	now time.Time,
) (*Transaction, error) {
	if reference == "" {
		return nil, fmt.Errorf("reference is required")
	}
	if subscriptionID == 0 {
		return nil, fmt.Errorf("subscription ID is required")
	}
	if tenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if !provider.IsValid() {
		return nil, fmt.Errorf("invalid payment provider: %s", provider)
	}
	if externalTransactionID == "" {
		return nil, fmt.Errorf("external transaction ID is required")
	}
	if amount == 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	now = now.UTC()
	return &Transaction{
		reference:             reference,
		subscriptionID:        subscriptionID,
		tenantID:              tenantID,
		provider:              provider,
		externalTransactionID: externalTransactionID,
		checkoutURL:           checkoutURL,
		amount:                amount,
		currency:              currency,
		status:                vo.PaymentStatusPending,
		createdAt:             now,
		updatedAt:             now,
	}, nil
}

func ReconstructTransaction(
	id uint,
	reference string,
	subscriptionID, tenantID uint,
	provider subvo.PaymentProvider,
	externalTransactionID, checkoutURL string,
	amount uint64,
	currency string,
	status vo.PaymentStatus,
	confirmedAt *time.Time,
	createdAt, updatedAt time.Time,
) (*Transaction, error) {
	if id == 0 {
		return nil, fmt.Errorf("transaction ID cannot be zero")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", status)
	}

	return &Transaction{
		id:                    id,
		reference:             reference,
		subscriptionID:        subscriptionID,
		tenantID:              tenantID,
		provider:              provider,
		externalTransactionID: externalTransactionID,
		checkoutURL:           checkoutURL,
		amount:                amount,
		currency:              currency,
		status:                status,
		confirmedAt:           confirmedAt,
		createdAt:             createdAt,
		updatedAt:             updatedAt,
	}, nil
}

// MarkConfirmed records the confirmation. It returns false when the
// transaction was already confirmed.
func (t *Transaction) MarkConfirmed(now time.Time) bool {
	if t.status.IsConfirmed() {
		return false
	}
	now = now.UTC()
	t.status = vo.PaymentStatusConfirmed
	t.confirmedAt = &now
	t.updatedAt = now
	return true
}

func (t *Transaction) ID() uint {
	return t.id
}

func (t *Transaction) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("transaction ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("transaction ID cannot be zero")
	}
	t.id = id
	return nil
}

func (t *Transaction) Reference() string {
	return t.reference
}

func (t *Transaction) SubscriptionID() uint {
	return t.subscriptionID
}

func (t *Transaction) TenantID() uint {
	return t.tenantID
}

func (t *Transaction) Provider() subvo.PaymentProvider {
	return t.provider
}

func (t *Transaction) ExternalTransactionID() string {
	return t.externalTransactionID
}

func (t *Transaction) CheckoutURL() string {
	return t.checkoutURL
}

func (t *Transaction) Amount() uint64 {
	return t.amount
}

func (t *Transaction) Currency() string {
	return t.currency
}

func (t *Transaction) Status() vo.PaymentStatus {
	return t.status
}

func (t *Transaction) ConfirmedAt() *time.Time {
	return t.confirmedAt
}

func (t *Transaction) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Transaction) UpdatedAt() time.Time {
	return t.updatedAt
}
