package hours_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clubops/volunteer-hours/hours"
	"github.com/clubops/volunteer-hours/hours/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestClock(t *testing.T) (*hours.ClockController, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()

	if err := mem.SaveVolunteer(ctx, hours.Volunteer{ID: "vol-1", Name: "Pat Field", Number: "1042"}); err != nil {
		t.Fatal(err)
	}
	if err := mem.SaveVolunteer(ctx, hours.Volunteer{ID: "vol-2", Name: "Sam Rowe", Number: "2071"}); err != nil {
		t.Fatal(err)
	}
	if err := mem.SaveCommittee(ctx, hours.Committee{ID: "com-1", Name: "Grounds", Chair: "Lee"}); err != nil {
		t.Fatal(err)
	}

	return &hours.ClockController{Entries: mem, Directory: mem}, mem
}

func countEntries(t *testing.T, mem *store.Memory) int {
	t.Helper()
	entries, err := mem.List(context.Background(), hours.EntryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

// =============================================================================
// CLOCK-IN TESTS
// =============================================================================

func TestClockIn_CreatesPendingOpenEntry(t *testing.T) {
	// GIVEN: A volunteer with no open session
	// WHEN: They clock in
	// THEN: A pending, open entry exists with directory snapshots

	clock, _ := newTestClock(t)
	ctx := context.Background()
	now := time.Date(2025, time.July, 10, 9, 0, 0, 0, time.UTC)

	entry, err := clock.ClockIn(ctx, "vol-1", "com-1", now)
	if err != nil {
		t.Fatalf("ClockIn: %v", err)
	}

	if entry.Status != hours.StatusPending {
		t.Errorf("status = %s, want pending", entry.Status)
	}
	if !entry.Open() {
		t.Error("entry should be open")
	}
	if entry.VolunteerName != "Pat Field" || entry.VolunteerNumber != "1042" {
		t.Errorf("volunteer snapshot = %q/%q", entry.VolunteerName, entry.VolunteerNumber)
	}
	if entry.CommitteeName != "Grounds" {
		t.Errorf("committee snapshot = %q", entry.CommitteeName)
	}
	if !entry.ClockIn.Equal(now) {
		t.Errorf("clock in = %v, want %v", entry.ClockIn, now)
	}
}

func TestClockIn_SecondSessionRejected(t *testing.T) {
	// GIVEN: A volunteer already clocked in
	// WHEN: They clock in again
	// THEN: ErrAlreadyClockedIn and no new entry

	clock, mem := newTestClock(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := clock.ClockIn(ctx, "vol-1", "com-1", now); err != nil {
		t.Fatal(err)
	}

	_, err := clock.ClockIn(ctx, "vol-1", "com-1", now.Add(time.Minute))
	if !errors.Is(err, hours.ErrAlreadyClockedIn) {
		t.Fatalf("err = %v, want ErrAlreadyClockedIn", err)
	}
	if n := countEntries(t, mem); n != 1 {
		t.Errorf("entry count = %d, want 1", n)
	}
}

func TestClockIn_IndependentVolunteers(t *testing.T) {
	// Two different volunteers can both have open sessions
	clock, _ := newTestClock(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := clock.ClockIn(ctx, "vol-1", "com-1", now); err != nil {
		t.Fatal(err)
	}
	if _, err := clock.ClockIn(ctx, "vol-2", "com-1", now); err != nil {
		t.Fatalf("second volunteer should clock in: %v", err)
	}
}

func TestClockIn_UnknownDirectoryReferences(t *testing.T) {
	clock, mem := newTestClock(t)
	ctx := context.Background()

	_, err := clock.ClockIn(ctx, "nobody", "com-1", time.Now())
	if !errors.Is(err, hours.ErrUnknownVolunteer) {
		t.Errorf("err = %v, want ErrUnknownVolunteer", err)
	}

	_, err = clock.ClockIn(ctx, "vol-1", "no-committee", time.Now())
	if !errors.Is(err, hours.ErrUnknownCommittee) {
		t.Errorf("err = %v, want ErrUnknownCommittee", err)
	}

	if n := countEntries(t, mem); n != 0 {
		t.Errorf("entry count = %d, want 0", n)
	}
}

// =============================================================================
// CLOCK-OUT TESTS
// =============================================================================

func TestClockOut_ClosesSessionWithSanitizedNotes(t *testing.T) {
	// GIVEN: An open session
	// WHEN: The volunteer clocks out with notes containing angle brackets
	// THEN: The entry is closed and the notes are stripped

	clock, _ := newTestClock(t)
	ctx := context.Background()
	in := time.Date(2025, time.July, 10, 9, 0, 0, 0, time.UTC)
	out := in.Add(3 * time.Hour)

	if _, err := clock.ClockIn(ctx, "vol-1", "com-1", in); err != nil {
		t.Fatal(err)
	}

	entry, err := clock.ClockOut(ctx, "vol-1", "  trimmed <script>weeds</script>  ", out)
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}

	if entry.Open() {
		t.Error("entry should be closed")
	}
	if !entry.ClockOut.Equal(out) {
		t.Errorf("clock out = %v, want %v", entry.ClockOut, out)
	}
	if entry.Notes != "trimmed scriptweeds/script" {
		t.Errorf("notes = %q", entry.Notes)
	}
	if entry.Status != hours.StatusPending {
		t.Errorf("status = %s, clock-out must not change status", entry.Status)
	}
}

func TestClockOut_RejectsNonPositiveDuration(t *testing.T) {
	// GIVEN: An open session
	// WHEN: Clock-out lands at or before the clock-in (skewed kiosk clock)
	// THEN: ErrInvalidTimeRange and the session stays open

	clock, mem := newTestClock(t)
	ctx := context.Background()
	in := time.Date(2025, time.July, 10, 9, 0, 0, 0, time.UTC)

	if _, err := clock.ClockIn(ctx, "vol-1", "com-1", in); err != nil {
		t.Fatal(err)
	}

	_, err := clock.ClockOut(ctx, "vol-1", "", in)
	if !errors.Is(err, hours.ErrInvalidTimeRange) {
		t.Fatalf("err = %v, want ErrInvalidTimeRange for equal times", err)
	}

	_, err = clock.ClockOut(ctx, "vol-1", "", in.Add(-time.Minute))
	if !errors.Is(err, hours.ErrInvalidTimeRange) {
		t.Fatalf("err = %v, want ErrInvalidTimeRange for earlier clock-out", err)
	}

	open, err := mem.OpenEntry(ctx, "vol-1")
	if err != nil {
		t.Fatal(err)
	}
	if open == nil {
		t.Fatal("session should still be open after rejected clock-outs")
	}
}

func TestClockOut_NoActiveSession(t *testing.T) {
	clock, _ := newTestClock(t)

	_, err := clock.ClockOut(context.Background(), "vol-1", "", time.Now())
	if !errors.Is(err, hours.ErrNoActiveSession) {
		t.Fatalf("err = %v, want ErrNoActiveSession", err)
	}
}

func TestClockOut_ThenClockInAgain(t *testing.T) {
	// A closed session no longer blocks the next clock-in
	clock, mem := newTestClock(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := clock.ClockIn(ctx, "vol-1", "com-1", now); err != nil {
		t.Fatal(err)
	}
	if _, err := clock.ClockOut(ctx, "vol-1", "", now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := clock.ClockIn(ctx, "vol-1", "com-1", now.Add(2*time.Hour)); err != nil {
		t.Fatalf("re-clock-in after close: %v", err)
	}
	if n := countEntries(t, mem); n != 2 {
		t.Errorf("entry count = %d, want 2", n)
	}
}

// =============================================================================
// MANUAL EDIT TESTS
// =============================================================================

func TestEdit_RejectsInvertedTimeRange(t *testing.T) {
	// GIVEN: A closed entry
	// WHEN: An edit would put clock-out at or before clock-in
	// THEN: ErrInvalidTimeRange and nothing is written

	clock, _ := newTestClock(t)
	ctx := context.Background()
	in := time.Date(2025, time.July, 10, 9, 0, 0, 0, time.UTC)

	entry, err := clock.ClockIn(ctx, "vol-1", "com-1", in)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := clock.ClockOut(ctx, "vol-1", "", in.Add(2*time.Hour)); err != nil {
		t.Fatal(err)
	}

	badOut := in.Add(-time.Hour)
	_, err = clock.Edit(ctx, entry.ID, hours.EntryUpdate{ClockOut: &badOut})
	if !errors.Is(err, hours.ErrInvalidTimeRange) {
		t.Fatalf("err = %v, want ErrInvalidTimeRange", err)
	}

	// Equal timestamps are invalid too
	_, err = clock.Edit(ctx, entry.ID, hours.EntryUpdate{ClockOut: &in})
	if !errors.Is(err, hours.ErrInvalidTimeRange) {
		t.Fatalf("err = %v, want ErrInvalidTimeRange for equal times", err)
	}
}

func TestEdit_ValidatesAgainstEffectiveTimes(t *testing.T) {
	// Moving clock-in later must be checked against the stored clock-out
	clock, _ := newTestClock(t)
	ctx := context.Background()
	in := time.Date(2025, time.July, 10, 9, 0, 0, 0, time.UTC)

	entry, err := clock.ClockIn(ctx, "vol-1", "com-1", in)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := clock.ClockOut(ctx, "vol-1", "", in.Add(2*time.Hour)); err != nil {
		t.Fatal(err)
	}

	lateIn := in.Add(5 * time.Hour)
	_, err = clock.Edit(ctx, entry.ID, hours.EntryUpdate{ClockIn: &lateIn})
	if !errors.Is(err, hours.ErrInvalidTimeRange) {
		t.Fatalf("err = %v, want ErrInvalidTimeRange", err)
	}
}

func TestEdit_ReopenAndSanitize(t *testing.T) {
	clock, _ := newTestClock(t)
	ctx := context.Background()
	in := time.Date(2025, time.July, 10, 9, 0, 0, 0, time.UTC)

	entry, err := clock.ClockIn(ctx, "vol-1", "com-1", in)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := clock.ClockOut(ctx, "vol-1", "", in.Add(2*time.Hour)); err != nil {
		t.Fatal(err)
	}

	notes := "<b>fixed</b>"
	got, err := clock.Edit(ctx, entry.ID, hours.EntryUpdate{
		ClearClockOut: true,
		Notes:         &notes,
	})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}

	if !got.Open() {
		t.Error("ClearClockOut should reopen the entry")
	}
	if got.Notes != "bfixed/b" {
		t.Errorf("notes = %q", got.Notes)
	}
}

func TestEdit_MissingEntry(t *testing.T) {
	clock, _ := newTestClock(t)

	_, err := clock.Edit(context.Background(), "missing", hours.EntryUpdate{})
	if !errors.Is(err, hours.ErrEntryNotFound) {
		t.Fatalf("err = %v, want ErrEntryNotFound", err)
	}
}
