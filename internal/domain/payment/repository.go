package payment

import (
	"context"
	"time"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByExternalID(ctx context.Context, externalTransactionID string) (*Transaction, error)
	GetBySubscriptionID(ctx context.Context, subscriptionID uint) ([]*Transaction, error)
	// ConfirmIfPending flips a pending transaction to confirmed and reports
	// whether this call did it. Concurrent callers see exactly one true.
	ConfirmIfPending(ctx context.Context, id uint, confirmedAt time.Time) (bool, error)
}
