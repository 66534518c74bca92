/*
approval.go - Approval workflow engine

PURPOSE:
  Status transitions for closed time entries: single approve/reject,
  window-scoped bulk approval, and explicit-id bulk transitions.

STATE MACHINE:
  Pending -> Approved
  Pending -> Rejected

  Transitions are unconditional overwrites: re-approving or re-rejecting
  an already-decided entry silently replaces the status (no history).
  Chairs use this to correct mis-clicks; the grant report only reads the
  final state.

  Entries without a clock-out are never transitioned; status is only
  meaningful once the session is closed.

BULK SEMANTICS:
  Sequential, at-least-once. A failure partway through leaves prior writes
  intact; the caller receives success/failure counts, never an
  all-or-nothing error.

AUTHORIZATION:
  Not enforced here. The caller supplies an already-validated role and
  committee scope.
*/
package hours

import (
	"context"
	"fmt"
	"log"
)

// ApprovalEngine mutates entry status on chair/admin action.
type ApprovalEngine struct {
	Entries EntryStore
}

// BulkResult reports the outcome of a bulk transition.
type BulkResult struct {
	Succeeded int
	Failed    int
}

// Approve marks a closed entry approved. No-ops on open entries.
func (a *ApprovalEngine) Approve(ctx context.Context, id EntryID) error {
	return a.transition(ctx, id, StatusApproved)
}

// Reject marks a closed entry rejected. No-ops on open entries.
func (a *ApprovalEngine) Reject(ctx context.Context, id EntryID) error {
	return a.transition(ctx, id, StatusRejected)
}

func (a *ApprovalEngine) transition(ctx context.Context, id EntryID, target Status) error {
	if !target.Valid() {
		return ErrInvalidStatus
	}

	entry, err := a.Entries.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load entry: %w", err)
	}
	if entry == nil {
		return ErrEntryNotFound
	}
	if entry.Open() {
		// Status is only acted on once the session is closed.
		return nil
	}

	upd := EntryUpdate{Status: &target}
	if err := a.Entries.Update(ctx, id, upd); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	return nil
}

// ApproveAllInWindow approves every pending, closed entry whose ClockIn
// lies inside the window, optionally restricted to one committee. Continues
// past individual failures and returns the counts.
func (a *ApprovalEngine) ApproveAllInWindow(ctx context.Context, window Period, committeeID *CommitteeID) (BulkResult, error) {
	pending := StatusPending
	closed := true
	f := EntryFilter{
		Status:     &pending,
		ClockedOut: &closed,
		Window:     &window,
	}
	if committeeID != nil {
		f.CommitteeID = *committeeID
	}

	entries, err := a.Entries.List(ctx, f)
	if err != nil {
		return BulkResult{}, fmt.Errorf("list pending entries: %w", err)
	}

	var res BulkResult
	approved := StatusApproved
	for _, entry := range entries {
		if err := a.Entries.Update(ctx, entry.ID, EntryUpdate{Status: &approved}); err != nil {
			log.Printf("[Approval] Failed to approve entry %s: %v", entry.ID, err)
			res.Failed++
			continue
		}
		res.Succeeded++
	}
	return res, nil
}

// BulkTransition applies the target status to an explicit id set (the
// multi-select path). Open and missing entries count as failures; the
// remaining ids are still processed.
func (a *ApprovalEngine) BulkTransition(ctx context.Context, ids []EntryID, target Status) (BulkResult, error) {
	if !target.Valid() {
		return BulkResult{}, ErrInvalidStatus
	}

	var res BulkResult
	for _, id := range ids {
		entry, err := a.Entries.Get(ctx, id)
		if err != nil || entry == nil || entry.Open() {
			if err != nil {
				log.Printf("[Approval] Failed to load entry %s: %v", id, err)
			}
			res.Failed++
			continue
		}
		if err := a.Entries.Update(ctx, id, EntryUpdate{Status: &target}); err != nil {
			log.Printf("[Approval] Failed to transition entry %s to %s: %v", id, target, err)
			res.Failed++
			continue
		}
		res.Succeeded++
	}
	return res, nil
}
