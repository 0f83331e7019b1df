package domain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// publishTimeout bounds a single best-effort event publication.
const publishTimeout = 5 * time.Second

// Ledger reads and increments account balances.
type Ledger struct {
	accountRepo AccountRepository
	txManager   TransactionManager
	// Optional event publisher to emit DepositCompleted after commit
	eventPublisher EventPublisher
	maxDeposit     decimal.Decimal
}

// NewLedger creates a new Ledger.
// Pass nil for eventPublisher if no events should be emitted.
// A zero maxDeposit disables the upper bound on single deposits.
func NewLedger(
	accountRepo AccountRepository,
	txManager TransactionManager,
	eventPublisher EventPublisher,
	maxDeposit decimal.Decimal,
) *Ledger {
	return &Ledger{
		accountRepo:    accountRepo,
		txManager:      txManager,
		eventPublisher: eventPublisher,
		maxDeposit:     maxDeposit,
	}
}

// ReadBalance returns the balance snapshot taken when the account was authenticated.
func (l *Ledger) ReadBalance(account *AuthenticatedAccount) decimal.Decimal {
	return account.Balance
}

// Deposit atomically adds amount to the account balance and returns the committed result.
//
// The amount is validated before the store is touched. The increment and the read of the
// new balance are one UPDATE ... RETURNING statement, and the value is only returned once
// the surrounding transaction has committed.
func (l *Ledger) Deposit(ctx context.Context, account *AuthenticatedAccount, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateDepositAmount(amount, l.maxDeposit); err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err := l.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		balance, err = l.accountRepo.IncrementBalance(txCtx, account.ID, amount)
		return err
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to deposit: %w", err)
	}

	if l.eventPublisher != nil {
		go l.publish(NewDepositCompleted(account.ID, amount, balance))
	}

	return balance, nil
}

// publish delivers the event without affecting the already committed deposit.
func (l *Ledger) publish(event *DepositCompleted) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := l.eventPublisher.PublishDepositCompleted(ctx, event); err != nil {
		slog.Warn("failed to publish deposit completed event",
			"event_id", event.EventID,
			"account_id", event.AccountID,
			"error", err,
		)
	}
}
