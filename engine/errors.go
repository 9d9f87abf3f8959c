/*
errors.go - Centralized error types for the calculation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The engine distinguishes two classes of outcome:

  1. Input validation failures - non-positive price or income, an
     unrecognized category or residency class. These fail fast with a
     ValidationError naming the offending field.
  2. Business outcomes - a zero loan, a breached ratio, zero cash-out.
     These are VALID RESULTS carrying reason codes, never errors.

USAGE:
  Callers branch on the class, not the message:

    if engine.IsValidationError(err) {
        // reject the form input
    }

SEE ALSO:
  - eligibility.go / compliance.go / refinance.go: validate before computing
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is the root of every validation failure.
	ErrInvalidInput = errors.New("invalid input")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the field that failed validation and why. It wraps
// ErrInvalidInput so callers can classify without string matching.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s (%s)", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func validationErr(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidationError reports whether err is an input validation failure,
// as opposed to an infrastructure error from a caller's own plumbing.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
