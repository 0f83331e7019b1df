package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spbu-ds-practicum-2025/balance-service/internal/domain"
)

// txKey is the key type for storing a transaction in context.
type txKey struct{}

// connKey is the key type for storing a request-scoped connection in context.
type connKey struct{}

// querier is the subset of pgx shared by pools, pooled connections and transactions.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// TransactionManager implements domain.TransactionManager using PostgreSQL.
type TransactionManager struct {
	pool *pgxpool.Pool
}

// NewTransactionManager creates a new TransactionManager.
func NewTransactionManager(pool *pgxpool.Pool) *TransactionManager {
	return &TransactionManager{
		pool: pool,
	}
}

// WithConnection acquires one pooled connection, exposes it to fn through the context
// and releases it when fn returns, whatever the outcome.
func (tm *TransactionManager) WithConnection(ctx context.Context, fn func(ctx context.Context) error) error {
	if getConn(ctx) != nil || getTx(ctx) != nil {
		return fn(ctx)
	}

	conn, err := tm.pool.Acquire(ctx)
	if err != nil {
		return storeError("failed to acquire connection", err)
	}
	defer conn.Release()

	return fn(context.WithValue(ctx, connKey{}, conn))
}

// WithTransaction executes the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// Otherwise, the transaction is committed.
// The transaction runs on the request-scoped connection when there is one.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if getTx(ctx) != nil {
		return fn(ctx)
	}

	var (
		tx  pgx.Tx
		err error
	)
	if conn := getConn(ctx); conn != nil {
		tx, err = conn.Begin(ctx)
	} else {
		tx, err = tm.pool.Begin(ctx)
	}
	if err != nil {
		return storeError("failed to begin transaction", err)
	}

	// Ensure transaction is closed, even if ctx was cancelled
	defer func() {
		if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storeError("failed to commit transaction", err)
	}

	return nil
}

// getTx retrieves the transaction from context.
// If no transaction is found, returns nil.
func getTx(ctx context.Context) pgx.Tx {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return nil
}

// getConn retrieves the request-scoped connection from context.
func getConn(ctx context.Context) *pgxpool.Conn {
	if conn, ok := ctx.Value(connKey{}).(*pgxpool.Conn); ok {
		return conn
	}
	return nil
}

// querierFor picks the innermost scope: transaction, then connection, then pool.
func querierFor(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx := getTx(ctx); tx != nil {
		return tx
	}
	if conn := getConn(ctx); conn != nil {
		return conn
	}
	return pool
}

// numericValueOutOfRange is the SQLSTATE raised when a value does not fit its NUMERIC column.
const numericValueOutOfRange = "22003"

// storeError marks err as a transient store failure. A numeric overflow is not transient
// and is reported as an invalid amount instead.
func storeError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == numericValueOutOfRange {
			return fmt.Errorf("%w: resulting balance exceeds the storable range", domain.ErrInvalidAmount)
		}
		return fmt.Errorf("%w: %s: %s (SQLSTATE %s)", domain.ErrStoreUnavailable, msg, pgErr.Message, pgErr.Code)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, msg, err)
}
