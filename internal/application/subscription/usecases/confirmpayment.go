package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orris-inc/tenancy/internal/application/notification"
	"github.com/orris-inc/tenancy/internal/domain/payment"
	"github.com/orris-inc/tenancy/internal/domain/subscription"
	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
	apperrors "github.com/orris-inc/tenancy/internal/shared/errors"
)

type ConfirmPaymentResult struct {
	Subscription *subscription.Subscription
	Transaction  *payment.Transaction
	// AlreadyConfirmed is set on replays; nothing changed.
	AlreadyConfirmed bool
	Activated        bool
}

// ConfirmPaymentUseCase applies a provider confirmation. Replays of the same
// external transaction ID are detected by a compare-and-set on the
// transaction row and change nothing.
type ConfirmPaymentUseCase struct {
	lifecycle
}

func NewConfirmPaymentUseCase(deps Deps) *ConfirmPaymentUseCase {
	return &ConfirmPaymentUseCase{lifecycle: newLifecycle(deps)}
}

func (uc *ConfirmPaymentUseCase) Execute(ctx context.Context, externalTransactionID string) (*ConfirmPaymentResult, error) {
	externalTransactionID = strings.TrimSpace(externalTransactionID)
	if externalTransactionID == "" {
		return nil, apperrors.NewValidationError("transaction ID is required")
	}

	ptx, err := uc.Transactions.GetByExternalID(ctx, externalTransactionID)
	if err != nil {
		uc.Logger.Errorw("failed to get payment transaction", "external_transaction_id", externalTransactionID, "error", err)
		return nil, fmt.Errorf("failed to get payment transaction: %w", err)
	}
	if ptx == nil {
		return nil, apperrors.NewNotFoundError("payment transaction not found")
	}

	unlock, err := uc.lockTenant(ctx, ptx.TenantID())
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := uc.now()
	result := &ConfirmPaymentResult{Transaction: ptx}

	err = uc.TxManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		applied, err := uc.Transactions.ConfirmIfPending(txCtx, ptx.ID(), now)
		if err != nil {
			return fmt.Errorf("failed to confirm payment transaction: %w", err)
		}

		sub, err := uc.Subscriptions.GetByID(txCtx, ptx.SubscriptionID())
		if err != nil {
			return fmt.Errorf("failed to get subscription: %w", err)
		}
		if sub == nil {
			return apperrors.NewNotFoundError("subscription for payment not found")
		}
		result.Subscription = sub

		if !applied {
			result.AlreadyConfirmed = true
			return nil
		}
		ptx.MarkConfirmed(now)

		if sub.Status() != vo.StatusPending {
			// Paid after the checkout was superseded or cancelled. The money
			// is recorded; access is not granted from a terminal row.
			uc.Logger.Warnw("payment confirmed for non-pending subscription",
				"subscription_id", sub.ID(),
				"status", sub.Status(),
				"external_transaction_id", externalTransactionID,
			)
			return nil
		}

		if err := uc.activate(txCtx, sub, ptx, now); err != nil {
			return err
		}
		result.Activated = true
		return nil
	})
	if err != nil {
		uc.Metrics.RecordConfirmation(OutcomeFailed)
		uc.Logger.Errorw("failed to confirm payment",
			"external_transaction_id", externalTransactionID,
			"error", err,
		)
		return nil, mapWriteError(err)
	}

	switch {
	case result.AlreadyConfirmed:
		uc.Metrics.RecordConfirmation(OutcomeReplayed)
		uc.Logger.Infow("payment confirmation replayed", "external_transaction_id", externalTransactionID)
	case result.Activated:
		uc.Metrics.RecordConfirmation(OutcomeActivated)
		sub := result.Subscription
		uc.Logger.Infow("subscription activated by payment",
			"subscription_id", sub.ID(),
			"tenant_id", sub.TenantID(),
			"external_transaction_id", externalTransactionID,
		)
		uc.notify(ctx, sub.TenantID(), notification.KindSubscriptionActivated,
			"Payment received",
			fmt.Sprintf("Thanks for your payment. Your **%s** subscription is active until %s.",
				sub.Plan().Name, sub.EndDate().Format("2006-01-02")))
	default:
		uc.Metrics.RecordConfirmation(OutcomeIgnored)
	}

	return result, nil
}

func (uc *ConfirmPaymentUseCase) activate(ctx context.Context, sub *subscription.Subscription, ptx *payment.Transaction, now time.Time) error {
	current, err := uc.Subscriptions.GetActiveByTenantID(ctx, sub.TenantID())
	if err != nil {
		return fmt.Errorf("failed to get active subscription: %w", err)
	}
	if current != nil && current.ID() != sub.ID() {
		if err := current.Expire(now); err != nil {
			return err
		}
		if err := uc.Subscriptions.Update(ctx, current); err != nil {
			return fmt.Errorf("failed to supersede subscription: %w", err)
		}
	}

	if _, err := uc.cancelPending(ctx, sub.TenantID(), sub.ID(), now); err != nil {
		return err
	}

	if err := sub.Activate(now); err != nil {
		return err
	}
	if err := uc.Subscriptions.Update(ctx, sub); err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}

	t, err := uc.loadTenant(ctx, sub.TenantID())
	if err != nil {
		return err
	}
	provider := ptx.Provider()
	t.ProjectSubscription(sub, &provider, now)
	return uc.saveProjection(ctx, t)
}
