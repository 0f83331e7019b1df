package domain

import (
	"context"
	"errors"
	"log/slog"
)

// Authenticator verifies a caller's (account id, session token) pair against persisted state.
type Authenticator struct {
	accountRepo AccountRepository
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(accountRepo AccountRepository) *Authenticator {
	return &Authenticator{
		accountRepo: accountRepo,
	}
}

// Authenticate validates the credentials and returns a handle carrying the account id and
// a snapshot of its balance.
//
// Every failure wraps ErrUnauthorized. The wrapped cause (missing, malformed, no match)
// is kept for diagnostics only; "no such account" and "wrong token" are the same
// ErrInvalidSession because the store checks both in one predicate.
func (a *Authenticator) Authenticate(ctx context.Context, creds Credentials) (*AuthenticatedAccount, error) {
	if creds.SessionToken == "" {
		return nil, ErrMissingCredentials
	}

	id, err := ParseAccountID(creds.AccountID)
	if err != nil {
		return nil, err
	}

	account, err := a.accountRepo.FindBySession(ctx, id, creds.SessionToken)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			slog.DebugContext(ctx, "session rejected", "account_id", id)
		}
		return nil, err
	}

	return account, nil
}
