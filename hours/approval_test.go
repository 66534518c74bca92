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

func closedEntry(t *testing.T, mem *store.Memory, id hours.EntryID, volunteer hours.VolunteerID, committee hours.CommitteeID, clockIn time.Time, dur time.Duration) {
	t.Helper()
	out := clockIn.Add(dur)
	err := mem.Create(context.Background(), hours.TimeEntry{
		ID:            id,
		VolunteerID:   volunteer,
		VolunteerName: "Volunteer " + string(volunteer),
		CommitteeID:   committee,
		CommitteeName: "Committee " + string(committee),
		ClockIn:       clockIn,
		ClockOut:      &out,
		Status:        hours.StatusPending,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func entryStatus(t *testing.T, mem *store.Memory, id hours.EntryID) hours.Status {
	t.Helper()
	entry, err := mem.Get(context.Background(), id)
	if err != nil || entry == nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return entry.Status
}

// =============================================================================
// SINGLE TRANSITION TESTS
// =============================================================================

func TestApprove_PendingClosedEntry(t *testing.T) {
	mem := store.NewMemory()
	engine := &hours.ApprovalEngine{Entries: mem}
	closedEntry(t, mem, "e1", "vol-1", "com-1", time.Now().Add(-3*time.Hour), 2*time.Hour)

	if err := engine.Approve(context.Background(), "e1"); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if s := entryStatus(t, mem, "e1"); s != hours.StatusApproved {
		t.Errorf("status = %s, want approved", s)
	}
}

func TestApprove_ThenReject_Overwrites(t *testing.T) {
	// GIVEN: An already-approved entry
	// WHEN: A chair rejects it (mis-click correction)
	// THEN: The status silently becomes rejected

	mem := store.NewMemory()
	engine := &hours.ApprovalEngine{Entries: mem}
	ctx := context.Background()
	closedEntry(t, mem, "e1", "vol-1", "com-1", time.Now().Add(-3*time.Hour), 2*time.Hour)

	if err := engine.Approve(ctx, "e1"); err != nil {
		t.Fatal(err)
	}
	if err := engine.Reject(ctx, "e1"); err != nil {
		t.Fatalf("Reject after Approve: %v", err)
	}
	if s := entryStatus(t, mem, "e1"); s != hours.StatusRejected {
		t.Errorf("status = %s, want rejected", s)
	}
}

func TestApprove_OpenEntryIsNoOp(t *testing.T) {
	mem := store.NewMemory()
	engine := &hours.ApprovalEngine{Entries: mem}
	openEntry(t, mem, "e1", "vol-1", time.Now().Add(-time.Hour), "")

	if err := engine.Approve(context.Background(), "e1"); err != nil {
		t.Fatalf("open entry should no-op, got %v", err)
	}
	if s := entryStatus(t, mem, "e1"); s != hours.StatusPending {
		t.Errorf("status = %s, want pending unchanged", s)
	}
}

func TestApprove_MissingEntry(t *testing.T) {
	engine := &hours.ApprovalEngine{Entries: store.NewMemory()}

	err := engine.Approve(context.Background(), "nope")
	if !errors.Is(err, hours.ErrEntryNotFound) {
		t.Fatalf("err = %v, want ErrEntryNotFound", err)
	}
}

// =============================================================================
// WINDOW APPROVAL TESTS
// =============================================================================

func TestApproveAllInWindow_FiltersAndCounts(t *testing.T) {
	// GIVEN: Entries in and out of the window, open and closed, two committees
	// WHEN: Approving the window restricted to committee com-1
	// THEN: Only pending, closed, in-window, in-committee entries flip

	mem := store.NewMemory()
	engine := &hours.ApprovalEngine{Entries: mem}
	ctx := context.Background()

	in := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	closedEntry(t, mem, "in-window", "vol-1", "com-1", in, 2*time.Hour)
	closedEntry(t, mem, "other-committee", "vol-2", "com-2", in, 2*time.Hour)
	closedEntry(t, mem, "before-window", "vol-3", "com-1", in.AddDate(0, -2, 0), 2*time.Hour)
	openEntry(t, mem, "still-open", "vol-4", in, "")

	window := hours.CustomRange(
		time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
	)
	committee := hours.CommitteeID("com-1")
	res, err := engine.ApproveAllInWindow(ctx, window, &committee)
	if err != nil {
		t.Fatalf("ApproveAllInWindow: %v", err)
	}

	if res.Succeeded != 1 || res.Failed != 0 {
		t.Errorf("result = %+v, want 1 succeeded", res)
	}
	if s := entryStatus(t, mem, "in-window"); s != hours.StatusApproved {
		t.Errorf("in-window status = %s, want approved", s)
	}
	for _, id := range []hours.EntryID{"other-committee", "before-window", "still-open"} {
		if s := entryStatus(t, mem, id); s != hours.StatusPending {
			t.Errorf("%s status = %s, want pending", id, s)
		}
	}
}

func TestApproveAllInWindow_AllCommittees(t *testing.T) {
	mem := store.NewMemory()
	engine := &hours.ApprovalEngine{Entries: mem}

	in := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	closedEntry(t, mem, "a", "vol-1", "com-1", in, time.Hour)
	closedEntry(t, mem, "b", "vol-2", "com-2", in, time.Hour)

	window := hours.CustomRange(in.AddDate(0, 0, -1), in.AddDate(0, 0, 1))
	res, err := engine.ApproveAllInWindow(context.Background(), window, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Succeeded != 2 {
		t.Errorf("succeeded = %d, want 2", res.Succeeded)
	}
}

// =============================================================================
// BULK TRANSITION TESTS
// =============================================================================

func TestBulkTransition_MixedOutcomes(t *testing.T) {
	// GIVEN: One closed entry, one open entry, one missing id
	// WHEN: Bulk-rejecting all three
	// THEN: One succeeds, two fail, processing continues past failures

	mem := store.NewMemory()
	engine := &hours.ApprovalEngine{Entries: mem}

	closedEntry(t, mem, "ok", "vol-1", "com-1", time.Now().Add(-3*time.Hour), time.Hour)
	openEntry(t, mem, "open", "vol-2", time.Now().Add(-time.Hour), "")

	res, err := engine.BulkTransition(context.Background(),
		[]hours.EntryID{"ok", "open", "missing"}, hours.StatusRejected)
	if err != nil {
		t.Fatalf("BulkTransition: %v", err)
	}

	if res.Succeeded != 1 || res.Failed != 2 {
		t.Errorf("result = %+v, want 1 succeeded, 2 failed", res)
	}
	if s := entryStatus(t, mem, "ok"); s != hours.StatusRejected {
		t.Errorf("status = %s, want rejected", s)
	}
}

func TestBulkTransition_InvalidTarget(t *testing.T) {
	engine := &hours.ApprovalEngine{Entries: store.NewMemory()}

	_, err := engine.BulkTransition(context.Background(), []hours.EntryID{"e1"}, hours.Status("bogus"))
	if !errors.Is(err, hours.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}
