/*
sweep.go - Auto-expiry sweeper

PURPOSE:
  Force-closes sessions whose volunteers never clocked out. Runs once per
  data refresh cycle. A session open for 12 hours or more is closed at
  exactly ClockIn + 12h (the fixed cutoff, not the sweep time), keeping
  closure deterministic regardless of when the sweep happens to execute,
  and an audit marker is appended to its notes.

GUARANTEES:
  - Idempotent: already-closed entries are skipped on later passes.
  - Per-entry isolation: one entry's write failure is logged and does not
    stop the rest of the sweep.

RATIONALE:
  Bounds a forgotten clock-out to a generous single-shift duration so
  year-to-date totals are never inflated by an indefinitely open session.

SEE ALSO:
  - api/refresh.go: Calls Sweep on every refresh cycle
*/
package hours

import (
	"context"
	"log"
	"time"
)

// DefaultSweepCutoff is how long a session may stay open before the
// sweeper closes it.
const DefaultSweepCutoff = 12 * time.Hour

// Sweeper reconciles open entries on each refresh cycle.
type Sweeper struct {
	Entries EntryStore

	// Cutoff defaults to DefaultSweepCutoff when zero.
	Cutoff time.Duration
}

// SweepResult reports what one pass did.
type SweepResult struct {
	Scanned int
	Closed  int
	Failed  int
}

// Sweep closes every open entry whose elapsed time has reached the cutoff.
// A per-entry write failure is logged and counted; the sweep continues.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	cutoff := s.Cutoff
	if cutoff <= 0 {
		cutoff = DefaultSweepCutoff
	}

	open, err := s.Entries.ListOpen(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	var res SweepResult
	res.Scanned = len(open)

	for _, entry := range open {
		if now.Sub(entry.ClockIn) < cutoff {
			continue
		}

		// Close at the fixed cutoff time, not the sweep time.
		closeAt := entry.ClockIn.Add(cutoff)
		notes := AppendNote(entry.Notes, AutoClockOutNote)
		upd := EntryUpdate{
			ClockOut: &closeAt,
			Notes:    &notes,
		}

		if err := s.Entries.Update(ctx, entry.ID, upd); err != nil {
			log.Printf("[Sweeper] Failed to close entry %s for volunteer %s: %v",
				entry.ID, entry.VolunteerID, err)
			res.Failed++
			continue
		}
		res.Closed++
	}

	if res.Closed > 0 || res.Failed > 0 {
		log.Printf("[Sweeper] Completed: %d scanned, %d closed, %d failed",
			res.Scanned, res.Closed, res.Failed)
	}
	return res, nil
}
