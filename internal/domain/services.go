package domain

import "context"

// BalanceService composes authentication and ledger operations for one request.
type BalanceService struct {
	authenticator *Authenticator
	ledger        *Ledger
	txManager     TransactionManager
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(authenticator *Authenticator, ledger *Ledger, txManager TransactionManager) *BalanceService {
	return &BalanceService{
		authenticator: authenticator,
		ledger:        ledger,
		txManager:     txManager,
	}
}

// Ledger returns the ledger operations available to an authenticated request.
func (s *BalanceService) Ledger() *Ledger {
	return s.ledger
}

// WithAccount runs fn for an authenticated account on a single request-scoped connection.
// Credentials are checked first. fn is never called for an unauthenticated caller.
func (s *BalanceService) WithAccount(
	ctx context.Context,
	creds Credentials,
	fn func(ctx context.Context, account *AuthenticatedAccount) error,
) error {
	// Reject missing or malformed credentials before acquiring a connection
	if creds.SessionToken == "" {
		return ErrMissingCredentials
	}
	if _, err := ParseAccountID(creds.AccountID); err != nil {
		return err
	}

	return s.txManager.WithConnection(ctx, func(connCtx context.Context) error {
		account, err := s.authenticator.Authenticate(connCtx, creds)
		if err != nil {
			return err
		}
		return fn(connCtx, account)
	})
}

// GetBalance authenticates the caller and returns the balance snapshot.
func (s *BalanceService) GetBalance(ctx context.Context, creds Credentials) (*AuthenticatedAccount, error) {
	var result *AuthenticatedAccount
	err := s.WithAccount(ctx, creds, func(_ context.Context, account *AuthenticatedAccount) error {
		result = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
