package repositories

import (
	"context"
	"errors"

	"clinicpay/internal/domain/payment"
)

// ErrNotFound is returned when no intent matches the lookup key.
var ErrNotFound = errors.New("payment intent not found")

// IntentStore defines the contract for payment intent data access.
type IntentStore interface {
	FindByOrderCode(ctx context.Context, orderCode string) (*payment.Intent, error)
	Create(ctx context.Context, intent *payment.Intent) error

	// MarkPaid applies the PENDING->PAID transition as a single atomic
	// conditional update: it must only write when the current status is not
	// already PAID, and must set transaction id and description together with
	// the status. Returns whether the transition applied.
	MarkPaid(ctx context.Context, orderCode, transactionID, description string) (bool, error)

	// ListPending returns up to limit pending intents, oldest first, for the
	// background reconciliation sweep.
	ListPending(ctx context.Context, limit int) ([]*payment.Intent, error)
}
