package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Credentials is the untrusted (account id, session token) pair presented by a caller.
// Both values arrive as raw strings from request metadata.
type Credentials struct {
	AccountID    string // Decimal account identifier as sent by the client
	SessionToken string // Opaque session token, compared for exact equality
}

// AuthenticatedAccount is the handle produced by a successful authentication.
// Balance is the snapshot read by the same statement that verified the session.
type AuthenticatedAccount struct {
	ID      int64
	Balance decimal.Decimal
}

// DepositCompleted is emitted after a deposit has been committed.
type DepositCompleted struct {
	EventID   uuid.UUID
	AccountID int64
	Amount    decimal.Decimal // Deposited amount
	Balance   decimal.Decimal // Balance after the increment was committed
	Timestamp time.Time
}

// NewDepositCompleted creates a DepositCompleted event with a fresh identifier.
func NewDepositCompleted(accountID int64, amount, balance decimal.Decimal) *DepositCompleted {
	return &DepositCompleted{
		EventID:   uuid.New(),
		AccountID: accountID,
		Amount:    amount,
		Balance:   balance,
		Timestamp: time.Now().UTC(),
	}
}
