package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is the single externally visible authentication failure.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMissingCredentials is returned when the account id or session token is absent.
	ErrMissingCredentials = fmt.Errorf("%w: missing credentials", ErrUnauthorized)

	// ErrMalformedAccountID is returned when the account id is not a positive integer.
	ErrMalformedAccountID = fmt.Errorf("%w: malformed account id", ErrUnauthorized)

	// ErrInvalidSession is returned when no account matches the (id, token) pair.
	ErrInvalidSession = fmt.Errorf("%w: invalid session", ErrUnauthorized)

	// ErrInvalidAmount is returned when a deposit amount is rejected or would overflow the balance.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAccountNotFound is returned when the account row disappeared after authentication.
	ErrAccountNotFound = errors.New("account not found")

	// ErrStoreUnavailable wraps connectivity, query and commit failures of the store.
	ErrStoreUnavailable = errors.New("store unavailable")
)
