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

func openEntry(t *testing.T, mem *store.Memory, id hours.EntryID, volunteer hours.VolunteerID, clockIn time.Time, notes string) {
	t.Helper()
	err := mem.Create(context.Background(), hours.TimeEntry{
		ID:            id,
		VolunteerID:   volunteer,
		VolunteerName: "Volunteer " + string(volunteer),
		CommitteeID:   "com-1",
		CommitteeName: "Grounds",
		ClockIn:       clockIn,
		Status:        hours.StatusPending,
		Notes:         notes,
	})
	if err != nil {
		t.Fatal(err)
	}
}

// failingStore wraps the memory store and fails updates for one entry,
// to verify per-entry isolation.
type failingStore struct {
	*store.Memory
	failID hours.EntryID
}

func (f *failingStore) Update(ctx context.Context, id hours.EntryID, upd hours.EntryUpdate) error {
	if id == f.failID {
		return hours.ErrStoreUnavailable
	}
	return f.Memory.Update(ctx, id, upd)
}

// =============================================================================
// SWEEP TESTS
// =============================================================================

func TestSweep_ClosesAtCutoffNotSweepTime(t *testing.T) {
	// GIVEN: A session open for 13 hours
	// WHEN: The sweep runs
	// THEN: The entry is closed at exactly ClockIn + 12h with the audit note

	mem := store.NewMemory()
	ctx := context.Background()
	clockIn := time.Date(2025, time.July, 10, 8, 0, 0, 0, time.UTC)
	openEntry(t, mem, "e1", "vol-1", clockIn, "")

	sweeper := &hours.Sweeper{Entries: mem}
	res, err := sweeper.Sweep(ctx, clockIn.Add(13*time.Hour))
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	if res.Scanned != 1 || res.Closed != 1 || res.Failed != 0 {
		t.Errorf("result = %+v, want 1 scanned, 1 closed", res)
	}

	entry, _ := mem.Get(ctx, "e1")
	if entry.Open() {
		t.Fatal("entry should be closed")
	}
	wantClose := clockIn.Add(12 * time.Hour)
	if !entry.ClockOut.Equal(wantClose) {
		t.Errorf("clock out = %v, want %v (fixed cutoff)", entry.ClockOut, wantClose)
	}
	if entry.Notes != hours.AutoClockOutNote {
		t.Errorf("notes = %q, want audit marker", entry.Notes)
	}
	if entry.Status != hours.StatusPending {
		t.Errorf("status = %s, sweep must not change status", entry.Status)
	}
}

func TestSweep_ExactCutoffCloses(t *testing.T) {
	// Elapsed == cutoff is already expired
	mem := store.NewMemory()
	clockIn := time.Date(2025, time.July, 10, 8, 0, 0, 0, time.UTC)
	openEntry(t, mem, "e1", "vol-1", clockIn, "")

	sweeper := &hours.Sweeper{Entries: mem}
	res, err := sweeper.Sweep(context.Background(), clockIn.Add(12*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if res.Closed != 1 {
		t.Errorf("closed = %d, want 1", res.Closed)
	}
}

func TestSweep_YoungSessionUntouched(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	clockIn := time.Date(2025, time.July, 10, 8, 0, 0, 0, time.UTC)
	openEntry(t, mem, "e1", "vol-1", clockIn, "")

	sweeper := &hours.Sweeper{Entries: mem}
	res, err := sweeper.Sweep(ctx, clockIn.Add(11*time.Hour+59*time.Minute))
	if err != nil {
		t.Fatal(err)
	}

	if res.Closed != 0 {
		t.Errorf("closed = %d, want 0", res.Closed)
	}
	entry, _ := mem.Get(ctx, "e1")
	if !entry.Open() {
		t.Error("entry should still be open")
	}
}

func TestSweep_AppendsToExistingNotes(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	clockIn := time.Date(2025, time.July, 10, 8, 0, 0, 0, time.UTC)
	openEntry(t, mem, "e1", "vol-1", clockIn, "mowing")

	sweeper := &hours.Sweeper{Entries: mem}
	if _, err := sweeper.Sweep(ctx, clockIn.Add(13*time.Hour)); err != nil {
		t.Fatal(err)
	}

	entry, _ := mem.Get(ctx, "e1")
	want := "mowing" + hours.NotesDelimiter + hours.AutoClockOutNote
	if entry.Notes != want {
		t.Errorf("notes = %q, want %q", entry.Notes, want)
	}
}

func TestSweep_Idempotent(t *testing.T) {
	// A second pass finds nothing open and changes nothing
	mem := store.NewMemory()
	ctx := context.Background()
	clockIn := time.Date(2025, time.July, 10, 8, 0, 0, 0, time.UTC)
	openEntry(t, mem, "e1", "vol-1", clockIn, "")

	sweeper := &hours.Sweeper{Entries: mem}
	now := clockIn.Add(13 * time.Hour)
	if _, err := sweeper.Sweep(ctx, now); err != nil {
		t.Fatal(err)
	}

	res, err := sweeper.Sweep(ctx, now.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if res.Scanned != 0 || res.Closed != 0 {
		t.Errorf("second pass = %+v, want nothing to do", res)
	}

	entry, _ := mem.Get(ctx, "e1")
	if entry.Notes != hours.AutoClockOutNote {
		t.Errorf("notes = %q, marker must not be duplicated", entry.Notes)
	}
}

func TestSweep_FailureIsolation(t *testing.T) {
	// GIVEN: Two expired sessions, one of which cannot be written
	// WHEN: The sweep runs
	// THEN: The other is still closed and counts reflect both

	mem := store.NewMemory()
	ctx := context.Background()
	clockIn := time.Date(2025, time.July, 10, 8, 0, 0, 0, time.UTC)
	openEntry(t, mem, "bad", "vol-1", clockIn, "")
	openEntry(t, mem, "good", "vol-2", clockIn, "")

	sweeper := &hours.Sweeper{Entries: &failingStore{Memory: mem, failID: "bad"}}
	res, err := sweeper.Sweep(ctx, clockIn.Add(13*time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	if res.Scanned != 2 || res.Closed != 1 || res.Failed != 1 {
		t.Errorf("result = %+v, want 2 scanned, 1 closed, 1 failed", res)
	}

	good, _ := mem.Get(ctx, "good")
	if good.Open() {
		t.Error("unaffected entry should be closed")
	}
	bad, _ := mem.Get(ctx, "bad")
	if !bad.Open() {
		t.Error("failed entry should remain open for the next pass")
	}
}

func TestSweep_ListFailureAborts(t *testing.T) {
	broken := &brokenListStore{Memory: store.NewMemory()}
	sweeper := &hours.Sweeper{Entries: broken}

	_, err := sweeper.Sweep(context.Background(), time.Now())
	if !errors.Is(err, hours.ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
}

type brokenListStore struct {
	*store.Memory
}

func (b *brokenListStore) ListOpen(context.Context) ([]hours.TimeEntry, error) {
	return nil, hours.ErrStoreUnavailable
}

func TestSweep_CustomCutoff(t *testing.T) {
	mem := store.NewMemory()
	clockIn := time.Date(2025, time.July, 10, 8, 0, 0, 0, time.UTC)
	openEntry(t, mem, "e1", "vol-1", clockIn, "")

	sweeper := &hours.Sweeper{Entries: mem, Cutoff: 2 * time.Hour}
	res, err := sweeper.Sweep(context.Background(), clockIn.Add(3*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if res.Closed != 1 {
		t.Fatalf("closed = %d, want 1", res.Closed)
	}

	entry, _ := mem.Get(context.Background(), "e1")
	if !entry.ClockOut.Equal(clockIn.Add(2 * time.Hour)) {
		t.Errorf("clock out = %v, want clockIn+2h", entry.ClockOut)
	}
}
