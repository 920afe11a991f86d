package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Intent represents a bank-transfer payment intent awaiting reconciliation.
type Intent struct {
	ID            string
	OrderCode     string
	Amount        int64
	Status        Status
	TransactionID *string
	Description   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Status represents payment intent status
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusFailed  Status = "FAILED"
)

// Domain errors surfaced to the create path.
var (
	ErrEmptyOrderCode = DomainError{Code: "EMPTY_ORDER_CODE", Message: "order code is required"}
	ErrInvalidAmount  = DomainError{Code: "INVALID_AMOUNT", Message: "amount must be positive"}
)

// NewIntent creates a new pending intent with validation.
func NewIntent(orderCode string, amount int64) (*Intent, error) {
	orderCode = strings.TrimSpace(orderCode)
	if orderCode == "" {
		return nil, ErrEmptyOrderCode
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	return &Intent{
		ID:        uuid.NewString(),
		OrderCode: orderCode,
		Amount:    amount,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsPaid checks if the intent already settled.
func (i *Intent) IsPaid() bool {
	return i.Status == StatusPaid
}

// MarkPaid applies the settlement transition in memory. It is a no-op on an
// already-paid intent: transaction_id and description never change once set.
func (i *Intent) MarkPaid(transactionID, description string) bool {
	if i.IsPaid() {
		return false
	}
	i.Status = StatusPaid
	i.TransactionID = &transactionID
	if description != "" {
		i.Description = &description
	}
	i.UpdatedAt = time.Now()
	return true
}

// FallbackTransactionID generates a token for webhook deliveries that omit
// the aggregator's transaction id.
func FallbackTransactionID() string {
	return "TX_" + uuid.NewString()
}

// DomainError represents a domain-level error
type DomainError struct {
	Code    string
	Message string
}

func (e DomainError) Error() string {
	return fmt.Sprintf("domain error [%s]: %s", e.Code, e.Message)
}
