package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits a monetary amount may carry.
// It matches the NUMERIC(15,2) balance column.
const AmountScale = 2

// MaxIntegerDigits is the number of integer digits the balance column can hold.
const MaxIntegerDigits = 13

// maxInputScale bounds the exponent of an amount before any arithmetic on it.
// Trailing zeros such as 1.500 stay valid.
const maxInputScale = AmountScale + 16

// DefaultMaxDeposit is the largest single deposit accepted unless configured otherwise.
var DefaultMaxDeposit = decimal.NewFromInt(1_000_000_000)

// ParseAccountID parses an untrusted account identifier.
// Only a positive base-10 integer is accepted; signs, spaces and other noise are rejected.
func ParseAccountID(raw string) (int64, error) {
	if raw == "" {
		return 0, ErrMissingCredentials
	}
	if strings.TrimSpace(raw) != raw || strings.HasPrefix(raw, "+") {
		return 0, ErrMalformedAccountID
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrMalformedAccountID
	}

	return id, nil
}

// ParseAmount parses a decimal amount string without going through float64.
func ParseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrInvalidAmount)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, raw)
	}

	return amount, nil
}

// ValidateDepositAmount checks that amount is strictly positive, carries at most
// AmountScale fractional digits and does not exceed limit. A zero limit disables the bound.
func ValidateDepositAmount(amount, limit decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}

	// Exponent and coefficient length only: no rescaling before the shape is bounded.
	if int(amount.Exponent()) < -maxInputScale {
		return fmt.Errorf("%w: at most %d decimal places allowed", ErrInvalidAmount, AmountScale)
	}
	if amount.NumDigits()+int(amount.Exponent()) > MaxIntegerDigits {
		return fmt.Errorf("%w: at most %d integer digits allowed", ErrInvalidAmount, MaxIntegerDigits)
	}

	if !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: at most %d decimal places allowed", ErrInvalidAmount, AmountScale)
	}

	if limit.IsPositive() && amount.GreaterThan(limit) {
		return fmt.Errorf("%w: must not exceed %s", ErrInvalidAmount, limit.StringFixed(AmountScale))
	}

	return nil
}
