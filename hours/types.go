/*
Package hours provides the volunteer time entry lifecycle and aggregation engine.

PURPOSE:
  This package contains the core domain for recording volunteer work
  sessions against committees: the clock-in/clock-out state machine, the
  automatic closure of forgotten sessions, the approve/reject workflow,
  and the period-bounded aggregation behind year-to-date totals and
  grant reports.

KEY CONCEPTS IN THIS FILE (types.go):
  - TimeEntry: One clock-in/clock-out record with approval status
  - Status: Closed three-variant approval state (Pending/Approved/Rejected)
  - Volunteer/Committee: Directory snapshots captured at clock-in
  - Entry/Volunteer/Committee IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Snapshot stability: Volunteer and committee names are copied onto the
     entry at clock-in and never re-resolved, so historical reports survive
     directory renames and deletions.
  2. Precision: decimal.Decimal for hour sums and dollar values.
  3. Type Safety: Strong typing for IDs prevents mixing volunteer/committee
     identifiers.

SEE ALSO:
  - clock.go: Session creation and closure
  - sweep.go: Forced closure of stale sessions
  - approval.go: Status transitions
  - aggregate.go: Duration and hour totals
*/
package hours

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EntryID string
type VolunteerID string
type CommitteeID string

// NewEntryID returns a fresh unique entry identifier.
func NewEntryID() EntryID {
	return EntryID(uuid.NewString())
}

// NewVolunteerID returns a fresh unique volunteer identifier, used when
// roster records are created without a caller-supplied id.
func NewVolunteerID() VolunteerID {
	return VolunteerID(uuid.NewString())
}

// =============================================================================
// STATUS - Approval state of a closed entry
// =============================================================================

// Status is the approval state of a time entry. It is only meaningful once
// the entry has a clock-out; open sessions are always Pending.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ParseStatus converts a wire string into a Status.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// =============================================================================
// DIRECTORY ENTITIES - Owned by the directory collaborator
// =============================================================================

// Volunteer is the directory record read once at clock-in.
type Volunteer struct {
	ID     VolunteerID
	Name   string
	Number string
}

// Committee is the organizational unit a session is attributed to.
type Committee struct {
	ID    CommitteeID
	Name  string
	Chair string
}

// =============================================================================
// TIME ENTRY - One work session
// =============================================================================

// TimeEntry is one clock-in/clock-out record. The volunteer and committee
// fields are snapshots taken at clock-in; they are never refreshed from the
// directory, so totals stay stable if the directory record is later renamed
// or deleted.
type TimeEntry struct {
	ID EntryID

	VolunteerID     VolunteerID
	VolunteerName   string
	VolunteerNumber string

	CommitteeID   CommitteeID
	CommitteeName string

	ClockIn  time.Time
	ClockOut *time.Time // nil while the session is open

	Status   Status
	Notes    string
	PhotoRef string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open reports whether the session has not been clocked out yet.
func (e *TimeEntry) Open() bool {
	return e.ClockOut == nil
}

// =============================================================================
// NOTES - Free text with appended audit annotations
// =============================================================================

// NotesDelimiter joins volunteer-authored notes and appended annotations.
const NotesDelimiter = " | "

// AutoClockOutNote is the audit marker appended when the sweeper force-closes
// a session. It is opaque free text; nothing parses it back out.
const AutoClockOutNote = "[Auto clocked out after 12 hours]"

// Sanitize strips characters that could be misinterpreted downstream from
// free-text input. Applied to every free-text field the engine accepts.
func Sanitize(raw string) string {
	return strings.Map(func(r rune) rune {
		if r == '<' || r == '>' {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
}

// AppendNote appends an annotation to existing notes using NotesDelimiter.
// Empty existing notes yield the annotation alone.
func AppendNote(notes, annotation string) string {
	if notes == "" {
		return annotation
	}
	return notes + NotesDelimiter + annotation
}
