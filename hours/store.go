/*
store.go - Persistence interfaces for time entries and the directory

PURPOSE:
  Defines the boundary between the engine and the record store. The engine
  never talks to a database directly; it calls these interfaces. Two
  implementations exist: store/sqlite (production) and hours/store
  (in-memory, for tests and dev).

CONTRACT NOTES:
  - Update is a partial update: only the non-nil fields of EntryUpdate are
    written. This is how the sweeper closes an entry without clobbering a
    concurrent edit to other fields.
  - Deletion is explicit and never issued by the engine on its own;
    DeleteByVolunteer exists for the directory's volunteer-removal flow.
  - Implementations that enforce the single-open-session invariant return
    ErrOpenEntryExists from Create when it would be violated.
  - Transient I/O failures wrap ErrStoreUnavailable.

SEE ALSO:
  - store/sqlite/sqlite.go: Production implementation
  - hours/store/memory.go: In-memory implementation
*/
package hours

import (
	"context"
	"time"
)

// =============================================================================
// ENTRY STORE
// =============================================================================

// EntryFilter narrows List results. Zero-value fields are not applied.
type EntryFilter struct {
	VolunteerID     VolunteerID
	VolunteerNumber string
	CommitteeID     CommitteeID

	// Status filters on approval state when non-nil.
	Status *Status

	// ClockedOut filters on session closure: true selects only closed
	// entries, false only open ones.
	ClockedOut *bool

	// Window selects entries whose ClockIn lies inside the period.
	Window *Period
}

// EntryUpdate is a partial update; nil fields are left untouched.
// ClearClockOut reopens a session (admin edit removing the clock-out).
type EntryUpdate struct {
	ClockIn       *time.Time
	ClockOut      *time.Time
	ClearClockOut bool
	Status        *Status
	Notes         *string
	PhotoRef      *string
}

// EntryStore persists time entries.
type EntryStore interface {
	// Create inserts a new entry. Returns ErrOpenEntryExists if the store
	// enforces open-entry uniqueness and the volunteer already has one.
	Create(ctx context.Context, entry TimeEntry) error

	// Get returns the entry or nil if it does not exist.
	Get(ctx context.Context, id EntryID) (*TimeEntry, error)

	// Update applies the non-nil fields of upd. Returns ErrEntryNotFound
	// for unknown ids.
	Update(ctx context.Context, id EntryID, upd EntryUpdate) error

	// Delete removes an entry permanently. Never called automatically.
	Delete(ctx context.Context, id EntryID) error

	// DeleteByVolunteer removes every entry for a volunteer and returns the
	// count. Used by the directory's volunteer-removal flow.
	DeleteByVolunteer(ctx context.Context, id VolunteerID) (int, error)

	// List returns entries matching the filter, ordered by ClockIn ascending.
	List(ctx context.Context, f EntryFilter) ([]TimeEntry, error)

	// OpenEntry returns the volunteer's open entry, or nil if none. If the
	// uniqueness invariant were ever violated, the entry with the latest
	// ClockIn is returned.
	OpenEntry(ctx context.Context, id VolunteerID) (*TimeEntry, error)

	// ListOpen returns every open entry, across all volunteers.
	ListOpen(ctx context.Context) ([]TimeEntry, error)
}

// =============================================================================
// DIRECTORY - External collaborator, read at clock-in only
// =============================================================================

// Directory resolves volunteer and committee ids. The engine reads it
// exactly once per clock-in to snapshot names onto the new entry; existing
// entries are never re-resolved.
type Directory interface {
	// Volunteer returns the record or nil if the id does not resolve.
	Volunteer(ctx context.Context, id VolunteerID) (*Volunteer, error)

	// Committee returns the record or nil if the id does not resolve.
	Committee(ctx context.Context, id CommitteeID) (*Committee, error)
}
