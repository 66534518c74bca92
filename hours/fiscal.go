package hours

import "time"

// =============================================================================
// PERIOD - Date window for aggregation and reports
// =============================================================================

// Period is a closed time window [Start, End]. Hour totals and reports are
// always computed for a period, never at a point in time.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains returns true if t is within the period [Start, End].
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Valid reports whether the window end is not before its start.
func (p Period) Valid() bool {
	return !p.End.Before(p.Start)
}

func (p Period) String() string {
	return "[" + p.Start.Format("2006-01-02") + ", " + p.End.Format("2006-01-02") + "]"
}

// =============================================================================
// FISCAL PERIOD CALCULATOR
// =============================================================================

// The club's fiscal year runs March 1 through February 28 of the following
// year. The end boundary is fixed at Feb 28 23:59:59 regardless of leap
// year, so a Feb 29 clock-in falls outside both adjacent fiscal years.
// Historical grant filings were produced with this boundary; it is kept
// for consistency with them.

// FiscalYear returns the fiscal year containing ref.
func FiscalYear(ref time.Time) Period {
	year := ref.Year()
	if ref.Month() < time.March {
		year--
	}
	loc := ref.Location()
	return Period{
		Start: time.Date(year, time.March, 1, 0, 0, 0, 0, loc),
		End:   time.Date(year+1, time.February, 28, 23, 59, 59, 0, loc),
	}
}

// Week returns the Sunday-through-Saturday week containing ref.
func Week(ref time.Time) Period {
	loc := ref.Location()
	sunday := time.Date(ref.Year(), ref.Month(), ref.Day()-int(ref.Weekday()), 0, 0, 0, 0, loc)
	return Period{
		Start: sunday,
		End:   time.Date(sunday.Year(), sunday.Month(), sunday.Day()+6, 23, 59, 59, 0, loc),
	}
}

// Month returns the calendar month containing ref.
func Month(ref time.Time) Period {
	loc := ref.Location()
	return Period{
		Start: time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc),
		// Day zero of the next month is the last day of this one.
		End: time.Date(ref.Year(), ref.Month()+1, 0, 23, 59, 59, 0, loc),
	}
}

// Quarter returns the calendar quarter containing ref. Quarters are 3-month
// blocks starting in January.
func Quarter(ref time.Time) Period {
	loc := ref.Location()
	q := (int(ref.Month()) - 1) / 3
	start := time.Month(q*3 + 1)
	return Period{
		Start: time.Date(ref.Year(), start, 1, 0, 0, 0, 0, loc),
		End:   time.Date(ref.Year(), start+3, 0, 23, 59, 59, 0, loc),
	}
}

// CustomRange returns an explicit window spanning whole days: startDay at
// midnight through endDay at 23:59:59.
func CustomRange(startDay, endDay time.Time) Period {
	return Period{
		Start: time.Date(startDay.Year(), startDay.Month(), startDay.Day(), 0, 0, 0, 0, startDay.Location()),
		End:   time.Date(endDay.Year(), endDay.Month(), endDay.Day(), 23, 59, 59, 0, endDay.Location()),
	}
}
