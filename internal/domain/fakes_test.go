package domain_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/spbu-ds-practicum-2025/balance-service/internal/domain"
)

type storedAccount struct {
	token   string
	balance decimal.Decimal
}

// memoryRepository is an in-memory AccountRepository. Its mutex plays the role of the
// store's row lock so the ledger can be exercised concurrently.
type memoryRepository struct {
	mu         sync.Mutex
	accounts   map[int64]*storedAccount
	increments int
	findErr    error
	incErr     error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{accounts: make(map[int64]*storedAccount)}
}

func (r *memoryRepository) add(id int64, token, balance string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[id] = &storedAccount{token: token, balance: decimal.RequireFromString(balance)}
}

func (r *memoryRepository) balance(id int64) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[id].balance
}

func (r *memoryRepository) incrementCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.increments
}

func (r *memoryRepository) FindBySession(_ context.Context, id int64, token string) (*domain.AuthenticatedAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	acc, ok := r.accounts[id]
	if !ok || acc.token != token {
		return nil, domain.ErrInvalidSession
	}
	return &domain.AuthenticatedAccount{ID: id, Balance: acc.balance}, nil
}

func (r *memoryRepository) IncrementBalance(_ context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.increments++
	if r.incErr != nil {
		return decimal.Zero, r.incErr
	}
	acc, ok := r.accounts[id]
	if !ok {
		return decimal.Zero, domain.ErrAccountNotFound
	}
	acc.balance = acc.balance.Add(amount)
	return acc.balance, nil
}

// fakeTxManager runs callbacks inline. commitErr simulates a failed COMMIT.
type fakeTxManager struct {
	repo      *memoryRepository
	commitErr error
	conns     int
}

func (m *fakeTxManager) WithConnection(ctx context.Context, fn func(ctx context.Context) error) error {
	m.conns++
	return fn(ctx)
}

func (m *fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.commitErr == nil {
		return fn(ctx)
	}

	// Roll back: restore balances as they were before fn ran
	m.repo.mu.Lock()
	saved := make(map[int64]decimal.Decimal, len(m.repo.accounts))
	for id, acc := range m.repo.accounts {
		saved[id] = acc.balance
	}
	m.repo.mu.Unlock()

	if err := fn(ctx); err != nil {
		return err
	}

	m.repo.mu.Lock()
	for id, b := range saved {
		m.repo.accounts[id].balance = b
	}
	m.repo.mu.Unlock()
	return fmt.Errorf("%w: failed to commit transaction: %w", domain.ErrStoreUnavailable, m.commitErr)
}

type recordingPublisher struct {
	events chan *domain.DepositCompleted
	err    error
}

func newRecordingPublisher(err error) *recordingPublisher {
	return &recordingPublisher{events: make(chan *domain.DepositCompleted, 16), err: err}
}

func (p *recordingPublisher) PublishDepositCompleted(_ context.Context, event *domain.DepositCompleted) error {
	p.events <- event
	return p.err
}

var errConnectionReset = errors.New("connection reset by peer")
