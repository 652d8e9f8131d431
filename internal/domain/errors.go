package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrNotReversible   = errors.New("entry cannot be reversed")
	ErrMissingIdemKey  = errors.New("idempotency key is required")
	ErrUnknownCategory = errors.New("unknown category")
)

// InsufficientBalanceError reports a debit that exceeds the available
// balance. Shortfall is how much is missing, so the caller can prompt a
// top-up. Not retryable without user action.
type InsufficientBalanceError struct {
	Available int64
	Requested int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, need %d (short %d)", e.Available, e.Requested, e.Shortfall())
}

func (e *InsufficientBalanceError) Shortfall() int64 {
	return e.Requested - e.Available
}

// DuplicateTransactionError reports an idempotency key reuse with different
// parameters, which indicates a client bug. A reuse with identical
// parameters is collapsed to a no-op and never surfaces this error.
type DuplicateTransactionError struct {
	Key string
}

func (e *DuplicateTransactionError) Error() string {
	return fmt.Sprintf("idempotency key %q already used with different parameters", e.Key)
}
