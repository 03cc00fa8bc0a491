/*
errors.go - Centralized error types for the marketplace core

PURPOSE:
  All error types in one place for consistency and discoverability.
  The API layer maps these onto HTTP statuses; the core only classifies.

ERROR CATEGORIES:
  1. Validation errors - bad input shape or range, identifies the field
  2. State errors - claim conflicts (missing record, already claimed)
  3. Policy errors - self-claim, cross-user history access

USAGE:
  if errors.Is(err, donation.ErrAlreadyClaimed) { ... }

  var verr *donation.ValidationError
  if errors.As(err, &verr) {
      // verr.Field names the offending input
  }

SEE ALSO:
  - ledger.go: Returns these errors
  - api/handlers.go: Maps them to HTTP statuses
*/
package donation

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDonationNotFound is returned when a referenced donation doesn't exist.
	ErrDonationNotFound = errors.New("donation not found")

	// ErrAlreadyClaimed is returned when claiming a donation that has already
	// transitioned to the claimed state. The transition fires exactly once.
	ErrAlreadyClaimed = errors.New("donation already claimed")

	// ErrSelfClaim is returned when a donor attempts to claim their own
	// donation, whether via the payload receiver id or the authenticated
	// caller identity.
	ErrSelfClaim = errors.New("cannot claim own donation")

	// ErrForbidden is returned when a caller requests another user's history.
	ErrForbidden = errors.New("not authorized for this user's data")

	// ErrDuplicateID is returned by stores when inserting an id that already
	// exists. With uuid-generated ids this indicates a programming error.
	ErrDuplicateID = errors.New("duplicate donation id")

	// ErrInvalidInput is the sentinel behind every ValidationError.
	ErrInvalidInput = errors.New("invalid input")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError identifies which input field failed and why.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is the caller's fault and safe to
// report in detail. Anything else is treated as internal.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDonationNotFound) ||
		errors.Is(err, ErrAlreadyClaimed) ||
		errors.Is(err, ErrSelfClaim) ||
		errors.Is(err, ErrForbidden)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDonationNotFound)
}
