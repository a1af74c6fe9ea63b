package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidOperation is returned when deducting tokens from a business
	// that has no issuance record
	ErrInvalidOperation = errors.New("cannot deduct tokens from a business with no issued tokens")

	// ErrNoTokensIssued is returned when a dividend distribution is attempted
	// for a business with zero or absent issuance
	ErrNoTokensIssued = errors.New("business has not issued tokens")

	// ErrAlreadyExists is returned when registering an identity that is already taken
	ErrAlreadyExists = errors.New("user already exists")

	// ErrInvalidIdentity is returned when an identity string is malformed
	ErrInvalidIdentity = errors.New("invalid email format")

	// ErrNotFound is returned when a business or issuance does not exist
	ErrNotFound = errors.New("business not found")

	// ErrNegativeBalance is returned when a holding mutation would drive the
	// balance below zero
	ErrNegativeBalance = errors.New("holding balance cannot go negative")

	// ErrLookupFailed is returned when the company-registry lookup fails for
	// any reason (network, HTTP, parse, or remote business logic)
	ErrLookupFailed = errors.New("company lookup failed")
)

// InsufficientSupplyError is returned when a deduction would drive the
// outstanding supply negative. Remaining carries the current supply for
// diagnostics.
type InsufficientSupplyError struct {
	TaxID     string
	Remaining decimal.Decimal
}

func (e *InsufficientSupplyError) Error() string {
	return fmt.Sprintf("insufficient tokens to deduct, remaining: %s", e.Remaining.String())
}
