package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// AccountRepository defines the data access operations the balance core depends on.
// Implementations must pass every argument through parameter binding.
type AccountRepository interface {
	// FindBySession returns the account whose id AND session token both match,
	// in a single lookup. Returns ErrInvalidSession when no row matches.
	FindBySession(ctx context.Context, id int64, sessionToken string) (*AuthenticatedAccount, error)

	// IncrementBalance atomically adds amount to the stored balance and returns
	// the post-update value produced by the same statement.
	// Returns ErrAccountNotFound if the row no longer exists.
	IncrementBalance(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error)
}

// TransactionManager scopes persistence work to a connection or a transaction.
type TransactionManager interface {
	// WithConnection acquires a single connection for the duration of fn and
	// releases it on every exit path.
	WithConnection(ctx context.Context, fn func(ctx context.Context) error) error

	// WithTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// Otherwise, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher publishes domain events to external systems (e.g. RabbitMQ).
type EventPublisher interface {
	PublishDepositCompleted(ctx context.Context, event *DepositCompleted) error
}
