/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Eligibility blocks are NOT errors; they are business outcomes carried
  by the tagged Result type (result.go). Errors here are system-level:
  missing rows, bad input, storage failures.

ERROR CATEGORIES:
  1. NotFound    - referenced agent/invoice/payout does not exist
  2. Validation  - malformed or missing required input
  3. Storage     - underlying persistence failure

SEE ALSO:
  - result.go: Blocked outcomes for the eligibility gate
  - store/sqlite: wraps driver errors into these
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAgentNotFound is returned when a referenced agent doesn't exist.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrInvoiceNotFound is returned when a referenced invoice doesn't exist.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrPayoutNotFound is returned when a referenced payout doesn't exist.
	ErrPayoutNotFound = errors.New("payout not found")

	// ErrDuplicatePayout is returned by the store when a payout for the
	// same (agent, period, installment) already landed. The uniqueness
	// index is the last line of defense behind the eligibility gate.
	ErrDuplicatePayout = errors.New("payout already recorded for this period")

	// ErrDuplicatePhone is returned when an agent's phone is already taken.
	ErrDuplicatePhone = errors.New("phone number already registered")

	// ErrDuplicateAgentID is returned when a caller-supplied agent ID is taken.
	ErrDuplicateAgentID = errors.New("agent id already registered")

	// ErrInvalidInput is returned for malformed or missing required fields.
	ErrInvalidInput = errors.New("invalid input")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAgentNotFound) ||
		errors.Is(err, ErrInvoiceNotFound) ||
		errors.Is(err, ErrPayoutNotFound)
}

// IsClientError reports whether the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDuplicatePhone) ||
		errors.Is(err, ErrDuplicateAgentID) ||
		errors.Is(err, ErrDuplicatePayout)
}
