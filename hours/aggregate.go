/*
aggregate.go - Hours aggregator

PURPOSE:
  Pure read-side math over time entries: session durations, year-to-date
  approved totals, and grouped sums per committee or per volunteer with
  percentage-of-total and in-kind dollar value.

PRECISION:
  All sums use decimal.Decimal. Committee subtotals and volunteer
  subtotals must each equal the grand total exactly, which float64
  accumulation cannot guarantee.

SNAPSHOT RULE:
  Grouping keys are the denormalized name/number fields captured at
  clock-in, never a live directory join, so a renamed or deleted
  volunteer/committee cannot corrupt historical totals.
*/
package hours

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultHourlyRate is the fixed dollar-per-hour rate used to express
// volunteer time as an in-kind value on grant documentation.
var DefaultHourlyRate = decimal.NewFromFloat(33.49)

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// Duration returns the entry's length in fractional hours, zero while the
// session is still open.
func Duration(e TimeEntry) decimal.Decimal {
	if e.ClockOut == nil {
		return decimal.Zero
	}
	nanos := decimal.NewFromInt(int64(e.ClockOut.Sub(e.ClockIn)))
	return nanos.Div(nanosPerHour)
}

// SumHours totals the durations of a set of entries.
func SumHours(entries []TimeEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(Duration(e))
	}
	return total
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator computes hour totals. HourlyRate defaults to DefaultHourlyRate
// when zero.
type Aggregator struct {
	Entries    EntryStore
	HourlyRate decimal.Decimal
}

func (a *Aggregator) rate() decimal.Decimal {
	if a.HourlyRate.IsZero() {
		return DefaultHourlyRate
	}
	return a.HourlyRate
}

// YTDApprovedHours sums approved, closed entries for the volunteer whose
// ClockIn falls inside the current fiscal year.
func (a *Aggregator) YTDApprovedHours(ctx context.Context, id VolunteerID, ref time.Time) (decimal.Decimal, error) {
	return a.ytd(ctx, EntryFilter{VolunteerID: id}, ref)
}

// YTDApprovedHoursByNumber is YTDApprovedHours keyed by member number,
// for kiosks that identify volunteers by number.
func (a *Aggregator) YTDApprovedHoursByNumber(ctx context.Context, number string, ref time.Time) (decimal.Decimal, error) {
	return a.ytd(ctx, EntryFilter{VolunteerNumber: number}, ref)
}

func (a *Aggregator) ytd(ctx context.Context, f EntryFilter, ref time.Time) (decimal.Decimal, error) {
	fy := FiscalYear(ref)
	approved := StatusApproved
	closed := true
	f.Status = &approved
	f.ClockedOut = &closed
	f.Window = &fy

	entries, err := a.Entries.List(ctx, f)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list approved entries: %w", err)
	}
	return SumHours(entries), nil
}

// =============================================================================
// GROUP TOTALS
// =============================================================================

// GroupTotal is one row of a per-committee or per-volunteer breakdown.
type GroupTotal struct {
	// Name is the committee name or volunteer name snapshot.
	Name string
	// Number is the volunteer member number; empty for committee groups.
	Number string

	Hours decimal.Decimal
	// Percent is this group's share of the grand total, 0-100.
	Percent decimal.Decimal
	// InKindValue is Hours multiplied by the configured hourly rate.
	InKindValue decimal.Decimal
	Entries     int
}

// ByCommittee groups entries by denormalized committee name, summing
// durations. Groups are sorted by name.
func (a *Aggregator) ByCommittee(entries []TimeEntry) []GroupTotal {
	return a.group(entries, func(e TimeEntry) (string, string) {
		return e.CommitteeName, ""
	})
}

// ByVolunteer groups entries by the (name, number) snapshot pair.
func (a *Aggregator) ByVolunteer(entries []TimeEntry) []GroupTotal {
	return a.group(entries, func(e TimeEntry) (string, string) {
		return e.VolunteerName, e.VolunteerNumber
	})
}

func (a *Aggregator) group(entries []TimeEntry, keyOf func(TimeEntry) (string, string)) []GroupTotal {
	type groupKey struct{ name, number string }

	sums := make(map[groupKey]*GroupTotal)
	grand := decimal.Zero

	for _, e := range entries {
		d := Duration(e)
		grand = grand.Add(d)

		name, number := keyOf(e)
		k := groupKey{name, number}
		g, ok := sums[k]
		if !ok {
			g = &GroupTotal{Name: name, Number: number, Hours: decimal.Zero}
			sums[k] = g
		}
		g.Hours = g.Hours.Add(d)
		g.Entries++
	}

	hundred := decimal.NewFromInt(100)
	rate := a.rate()

	groups := make([]GroupTotal, 0, len(sums))
	for _, g := range sums {
		if !grand.IsZero() {
			g.Percent = g.Hours.Mul(hundred).Div(grand)
		}
		g.InKindValue = g.Hours.Mul(rate)
		groups = append(groups, *g)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Name != groups[j].Name {
			return groups[i].Name < groups[j].Name
		}
		return groups[i].Number < groups[j].Number
	})
	return groups
}
