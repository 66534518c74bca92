/*
clock.go - Clock session controller

PURPOSE:
  Enforces the single-open-session rule and creates/closes time entries.
  This is the only component that writes new entries.

SESSION FLOW:
  ClockIn  -> new entry, status Pending, ClockOut absent
  ClockOut -> sets ClockOut and sanitized notes on the open entry

SINGLE-OPEN-SESSION RULE:
  At most one open entry per volunteer. Two mechanisms close the
  check-then-insert race between independent kiosks:
  1. All clock-ins serialize through the controller mutex.
  2. The SQLite store carries a partial unique index on open entries and
     returns ErrOpenEntryExists, which maps to ErrAlreadyClockedIn here.

SNAPSHOTS:
  Volunteer name/number and committee name are copied from the directory
  onto the entry at clock-in and never refreshed afterward.

SEE ALSO:
  - sweep.go: Forced closure of sessions left open past the cutoff
  - store.go: EntryStore and Directory contracts
*/
package hours

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ClockController creates and closes work sessions.
type ClockController struct {
	Entries   EntryStore
	Directory Directory

	mu sync.Mutex // serializes clock-ins; check+insert is not atomic at the store
}

// ClockIn starts a new session for the volunteer against the committee.
// Fails with ErrAlreadyClockedIn if the volunteer has an open session,
// ErrUnknownVolunteer/ErrUnknownCommittee if the directory lookup fails.
func (c *ClockController) ClockIn(ctx context.Context, volunteerID VolunteerID, committeeID CommitteeID, now time.Time) (*TimeEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	open, err := c.Entries.OpenEntry(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("check open session: %w", err)
	}
	if open != nil {
		return nil, ErrAlreadyClockedIn
	}

	vol, err := c.Directory.Volunteer(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("resolve volunteer: %w", err)
	}
	if vol == nil {
		return nil, ErrUnknownVolunteer
	}

	com, err := c.Directory.Committee(ctx, committeeID)
	if err != nil {
		return nil, fmt.Errorf("resolve committee: %w", err)
	}
	if com == nil {
		return nil, ErrUnknownCommittee
	}

	entry := TimeEntry{
		ID:              NewEntryID(),
		VolunteerID:     vol.ID,
		VolunteerName:   vol.Name,
		VolunteerNumber: vol.Number,
		CommitteeID:     com.ID,
		CommitteeName:   com.Name,
		ClockIn:         now,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := c.Entries.Create(ctx, entry); err != nil {
		if errors.Is(err, ErrOpenEntryExists) {
			return nil, ErrAlreadyClockedIn
		}
		return nil, fmt.Errorf("create entry: %w", err)
	}
	return &entry, nil
}

// ClockOut closes the volunteer's open session, recording the sanitized
// notes. Fails with ErrNoActiveSession if no open entry exists, and with
// an invalid-time-range error if now is not after the session's clock-in
// (a skewed kiosk clock can otherwise produce a zero-length session). If
// more than one open entry exists (invariant violated by an out-of-band
// write), the one with the latest ClockIn is closed.
func (c *ClockController) ClockOut(ctx context.Context, volunteerID VolunteerID, rawNotes string, now time.Time) (*TimeEntry, error) {
	open, err := c.Entries.OpenEntry(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("find open session: %w", err)
	}
	if open == nil {
		return nil, ErrNoActiveSession
	}
	if !now.After(open.ClockIn) {
		return nil, &InvalidTimeRangeError{ClockIn: open.ClockIn, ClockOut: now}
	}

	notes := Sanitize(rawNotes)
	upd := EntryUpdate{
		ClockOut: &now,
		Notes:    &notes,
	}
	if err := c.Entries.Update(ctx, open.ID, upd); err != nil {
		return nil, fmt.Errorf("close entry: %w", err)
	}

	open.ClockOut = &now
	open.Notes = notes
	open.UpdatedAt = now
	return open, nil
}

// Edit applies an authorized manual edit to an entry, validating that the
// resulting clock-out (if any) stays after the resulting clock-in. Notes
// are sanitized like all free text.
func (c *ClockController) Edit(ctx context.Context, id EntryID, upd EntryUpdate) (*TimeEntry, error) {
	entry, err := c.Entries.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load entry: %w", err)
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}

	clockIn := entry.ClockIn
	if upd.ClockIn != nil {
		clockIn = *upd.ClockIn
	}
	clockOut := entry.ClockOut
	if upd.ClearClockOut {
		clockOut = nil
	} else if upd.ClockOut != nil {
		clockOut = upd.ClockOut
	}
	if clockOut != nil && !clockOut.After(clockIn) {
		return nil, &InvalidTimeRangeError{ClockIn: clockIn, ClockOut: *clockOut}
	}

	if upd.Notes != nil {
		clean := Sanitize(*upd.Notes)
		upd.Notes = &clean
	}

	if err := c.Entries.Update(ctx, id, upd); err != nil {
		return nil, fmt.Errorf("save entry: %w", err)
	}
	return c.Entries.Get(ctx, id)
}
