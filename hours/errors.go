/*
errors.go - Centralized error types for the hours engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers branch on these with errors.Is; the API layer maps them to
  HTTP statuses through the helpers at the bottom.

ERROR CATEGORIES:
  1. Session errors - Clock-in/clock-out rule violations
  2. Lookup errors - Unknown directory or entry references
  3. Store errors - Persistence-level failures

SEE ALSO:
  - clock.go: Session errors
  - store.go: Store contract that surfaces these
*/
package hours

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAlreadyClockedIn is returned when a volunteer with an open session
	// tries to clock in again.
	ErrAlreadyClockedIn = errors.New("volunteer already clocked in")

	// ErrNoActiveSession is returned when clocking out a volunteer who has
	// no open session.
	ErrNoActiveSession = errors.New("no active session")

	// ErrUnknownVolunteer is returned when a volunteer id does not resolve
	// in the directory.
	ErrUnknownVolunteer = errors.New("volunteer not found")

	// ErrUnknownCommittee is returned when a committee id does not resolve
	// in the directory.
	ErrUnknownCommittee = errors.New("committee not found")

	// ErrEntryNotFound is returned when a referenced time entry doesn't exist.
	ErrEntryNotFound = errors.New("time entry not found")

	// ErrInvalidTimeRange is returned by manual edits where the clock-out
	// would not be after the clock-in.
	ErrInvalidTimeRange = errors.New("clock out must be after clock in")

	// ErrInvalidStatus is returned when a transition targets a status
	// outside the three known states.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrOpenEntryExists is returned by stores that enforce the
	// single-open-session constraint when an insert would violate it.
	// The clock controller maps it to ErrAlreadyClockedIn.
	ErrOpenEntryExists = errors.New("open entry already exists for volunteer")

	// ErrStoreUnavailable wraps transient persistence failures. Background
	// cycles retry it; user-initiated calls surface it directly.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidTimeRangeError reports the offending pair of timestamps.
type InvalidTimeRangeError struct {
	ClockIn  time.Time
	ClockOut time.Time
}

func (e *InvalidTimeRangeError) Error() string {
	return fmt.Sprintf("invalid time range: clock out %s not after clock in %s",
		e.ClockOut.Format(time.RFC3339), e.ClockIn.Format(time.RFC3339))
}

func (e *InvalidTimeRangeError) Unwrap() error {
	return ErrInvalidTimeRange
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// or a business-rule violation rather than a system fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrAlreadyClockedIn) ||
		errors.Is(err, ErrNoActiveSession) ||
		errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrInvalidStatus)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownVolunteer) ||
		errors.Is(err, ErrUnknownCommittee) ||
		errors.Is(err, ErrEntryNotFound)
}

// IsRetryable returns true if the operation might succeed on a later cycle.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
