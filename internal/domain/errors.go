package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is the class of every validation failure.
	ErrInvalidInput = errors.New("invalid input")

	// Not found errors
	ErrCaseNotFound    = errors.New("case not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrExpenseNotFound = errors.New("expense not found")

	// Write path errors
	ErrCaseLocked         = errors.New("financial fields cannot change once the case has payments")
	ErrHardDeleteDisabled = errors.New("hard delete is disabled")

	// ErrInconsistentAllocation means the per-payment replay disagrees with the
	// engine totals for the same payment set. It is a defect, never a data error.
	ErrInconsistentAllocation = errors.New("allocation replay does not match engine totals")

	ErrUnsortedPayments = errors.New("payments must be ordered by date")
)

// ValidationError names the offending field of a rejected input.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

// Is makes every ValidationError match ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
