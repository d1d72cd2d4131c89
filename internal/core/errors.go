package core

import (
	"errors"
	"fmt"
)

// Error taxonomy. Validation failures wrap ErrValidation so callers can map
// the whole class with errors.Is while still matching specific sentinels.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrCategoryInUse = errors.New("category is referenced by transactions")

	ErrInvalidAmount       = validationErr("invalid amount")
	ErrInvalidType         = validationErr("invalid transaction type")
	ErrInvalidAccountType  = validationErr("invalid account type")
	ErrInvalidDate         = validationErr("invalid date")
	ErrInvalidDayOfMonth   = validationErr("day of month must be between 1 and 31")
	ErrInvalidInstallments = validationErr("installment count must be at least 1")
	ErrEmptyDescription    = validationErr("empty description")
	ErrDescriptionTooLong  = validationErr("description too long (max 200 characters)")
	ErrEmptyName           = validationErr("empty name")
	ErrMissingAccount      = validationErr("account is required")
	ErrMissingCategory     = validationErr("category is required")
	ErrNotCreditCard       = validationErr("account is not a credit card")
	ErrSameAccount         = validationErr("source and destination accounts must differ")
	ErrEmptyTicker         = validationErr("empty ticker")
	ErrInvalidShares       = validationErr("shares must be positive")
)

func validationErr(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
