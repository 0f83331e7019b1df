package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spbu-ds-practicum-2025/balance-service/internal/domain"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL.
// Balances are exchanged with the server as text so they never pass through float64.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		pool: pool,
	}
}

// FindBySession looks up the account matching both id and session token.
func (r *AccountRepository) FindBySession(ctx context.Context, id int64, sessionToken string) (*domain.AuthenticatedAccount, error) {
	query := `
		SELECT id, balance::text
		FROM users
		WHERE id = $1 AND session_token = $2
	`

	var (
		account domain.AuthenticatedAccount
		balance string
	)
	err := querierFor(ctx, r.pool).QueryRow(ctx, query, id, sessionToken).Scan(&account.ID, &balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidSession
		}
		return nil, storeError("failed to find account", err)
	}

	account.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance %q: %w", balance, err)
	}

	return &account, nil
}

// IncrementBalance adds amount to the stored balance and returns the new value
// from the same statement.
func (r *AccountRepository) IncrementBalance(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE users
		SET balance = balance + $2::numeric,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING balance::text
	`

	var balance string
	err := querierFor(ctx, r.pool).QueryRow(ctx, query, id, amount.String()).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrAccountNotFound
		}
		return decimal.Zero, storeError("failed to increment balance", err)
	}

	newBalance, err := decimal.NewFromString(balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse balance %q: %w", balance, err)
	}

	return newBalance, nil
}
