/*
report.go - Report assembler

PURPOSE:
  Shapes entries into the exportable groupings behind the club's reports:
  - Range reports (weekly/monthly/quarterly/custom): every closed entry
    clocked in inside the window, regardless of status, grouped per
    committee plus a combined listing.
  - The fiscal-year grant report: Approved entries only - the one mode
    where status filtering is mandatory, because it represents verified,
    audit-ready volunteer hours for funding documentation.

  This package computes what goes into each group; rendering the rows to
  a spreadsheet file is the export collaborator's job (see export/).
*/
package hours

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROWS AND SECTIONS
// =============================================================================

// EntryRow is one exportable line of a report, formatted the way the
// club's spreadsheets have always shown it.
type EntryRow struct {
	VolunteerNumber string
	VolunteerName   string
	CommitteeName   string
	Date            string // clock-in date, YYYY-MM-DD
	ClockIn         string // HH:MM:SS
	ClockOut        string
	Hours           string // 2 decimal places
	Status          Status
	Notes           string
}

// CommitteeSection is one committee's slice of a range report.
type CommitteeSection struct {
	CommitteeID   CommitteeID
	CommitteeName string
	Rows          []EntryRow
	TotalHours    decimal.Decimal
}

// RangeReport is the general report: all statuses, one window.
type RangeReport struct {
	Window     Period
	Committees []CommitteeSection
	// Combined lists every row across committees, for the master sheet.
	Combined   []EntryRow
	TotalHours decimal.Decimal
}

// GrantSummary heads the fiscal-year grant report.
type GrantSummary struct {
	TotalHours     decimal.Decimal
	InKindValue    decimal.Decimal
	VolunteerCount int
	CommitteeCount int
	EntryCount     int
}

// GrantReport is the approved-only fiscal-year aggregation used for
// external funding documentation.
type GrantReport struct {
	FiscalYear  Period
	Summary     GrantSummary
	ByCommittee []GroupTotal
	ByVolunteer []GroupTotal
	Entries     []EntryRow
}

// =============================================================================
// ASSEMBLER
// =============================================================================

// Assembler builds report structures from stored entries.
type Assembler struct {
	Entries    EntryStore
	Aggregator *Aggregator
}

// NewAssembler wires an assembler and its aggregator over one store.
func NewAssembler(entries EntryStore, hourlyRate decimal.Decimal) *Assembler {
	return &Assembler{
		Entries:    entries,
		Aggregator: &Aggregator{Entries: entries, HourlyRate: hourlyRate},
	}
}

// BuildRange assembles a general report for the window, optionally scoped
// to one committee. Includes every closed entry regardless of status.
func (a *Assembler) BuildRange(ctx context.Context, window Period, committeeID *CommitteeID) (*RangeReport, error) {
	if !window.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimeRange, window)
	}

	closed := true
	f := EntryFilter{ClockedOut: &closed, Window: &window}
	if committeeID != nil {
		f.CommitteeID = *committeeID
	}

	entries, err := a.Entries.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	report := &RangeReport{Window: window, TotalHours: SumHours(entries)}

	byCommittee := make(map[CommitteeID]*CommitteeSection)
	var order []CommitteeID
	for _, e := range entries {
		row := rowFor(e)
		report.Combined = append(report.Combined, row)

		sec, ok := byCommittee[e.CommitteeID]
		if !ok {
			sec = &CommitteeSection{
				CommitteeID:   e.CommitteeID,
				CommitteeName: e.CommitteeName,
				TotalHours:    decimal.Zero,
			}
			byCommittee[e.CommitteeID] = sec
			order = append(order, e.CommitteeID)
		}
		sec.Rows = append(sec.Rows, row)
		sec.TotalHours = sec.TotalHours.Add(Duration(e))
	}

	for _, id := range order {
		report.Committees = append(report.Committees, *byCommittee[id])
	}
	sort.Slice(report.Committees, func(i, j int) bool {
		return report.Committees[i].CommitteeName < report.Committees[j].CommitteeName
	})
	return report, nil
}

// BuildGrant assembles the fiscal-year grant report for the year containing
// ref: Approved closed entries only, with summary, per-committee and
// per-volunteer breakdowns, and the full entry listing. The breakdown
// subtotals each sum exactly to the grand total.
func (a *Assembler) BuildGrant(ctx context.Context, ref time.Time) (*GrantReport, error) {
	fy := FiscalYear(ref)
	approved := StatusApproved
	closed := true

	entries, err := a.Entries.List(ctx, EntryFilter{
		Status:     &approved,
		ClockedOut: &closed,
		Window:     &fy,
	})
	if err != nil {
		return nil, fmt.Errorf("list approved entries: %w", err)
	}

	byCommittee := a.Aggregator.ByCommittee(entries)
	byVolunteer := a.Aggregator.ByVolunteer(entries)
	total := SumHours(entries)

	report := &GrantReport{
		FiscalYear: fy,
		Summary: GrantSummary{
			TotalHours:     total,
			InKindValue:    total.Mul(a.Aggregator.rate()),
			VolunteerCount: len(byVolunteer),
			CommitteeCount: len(byCommittee),
			EntryCount:     len(entries),
		},
		ByCommittee: byCommittee,
		ByVolunteer: byVolunteer,
	}
	for _, e := range entries {
		report.Entries = append(report.Entries, rowFor(e))
	}
	return report, nil
}

func rowFor(e TimeEntry) EntryRow {
	row := EntryRow{
		VolunteerNumber: e.VolunteerNumber,
		VolunteerName:   e.VolunteerName,
		CommitteeName:   e.CommitteeName,
		Date:            e.ClockIn.Format("2006-01-02"),
		ClockIn:         e.ClockIn.Format("15:04:05"),
		Hours:           Duration(e).StringFixed(2),
		Status:          e.Status,
		Notes:           e.Notes,
	}
	if e.ClockOut != nil {
		row.ClockOut = e.ClockOut.Format("15:04:05")
	}
	return row
}
