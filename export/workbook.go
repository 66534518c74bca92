/*
Package export renders reports as Excel workbooks.

PURPOSE:
  Turns the assembled report structures from the hours package into
  .xlsx workbooks for committee chairs and grant writers. Rendering is
  separated from report assembly so the same report can feed JSON
  responses and spreadsheet downloads.

WORKBOOKS:
  RangeWorkbook: One sheet per committee plus an "All Committees"
                 master sheet listing every entry in the window.
  GrantWorkbook: Summary, By Committee, By Volunteer, and Entries
                 sheets for a fiscal year.

SHEET NAMES:
  Excel caps sheet names at 31 characters and rejects a handful of
  punctuation characters. Committee names are sanitized and truncated
  before use.

SEE ALSO:
  - hours/report.go: Report assembly
*/
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/clubops/volunteer-hours/hours"
)

const masterSheet = "All Committees"

var entryHeader = []string{
	"Employee Number", "Employee Name", "Committee", "Date",
	"Clock In", "Clock Out", "Hours", "Status", "Notes",
}

// RangeWorkbook writes a date-range report as an Excel workbook.
// The master sheet comes first, followed by one sheet per committee.
func RangeWorkbook(report *hours.RangeReport, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", masterSheet)
	if err := writeEntrySheet(f, masterSheet, report.Combined, report.TotalHours.StringFixed(2)); err != nil {
		return err
	}

	used := map[string]bool{masterSheet: true}
	for _, section := range report.Committees {
		name := uniqueSheetName(sheetName(section.CommitteeName), used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
		if err := writeEntrySheet(f, name, section.Rows, section.TotalHours.StringFixed(2)); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	return write(f, w)
}

// GrantWorkbook writes a fiscal-year grant report as an Excel workbook.
func GrantWorkbook(report *hours.GrantReport, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "Summary")
	if err := writeSummarySheet(f, report); err != nil {
		return err
	}

	if err := writeGroupSheet(f, "By Committee", "Committee", report.ByCommittee); err != nil {
		return err
	}
	if err := writeGroupSheet(f, "By Volunteer", "Volunteer", report.ByVolunteer); err != nil {
		return err
	}

	if _, err := f.NewSheet("Entries"); err != nil {
		return err
	}
	if err := writeEntrySheet(f, "Entries", report.Entries, report.Summary.TotalHours.StringFixed(2)); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return write(f, w)
}

func writeEntrySheet(f *excelize.File, sheet string, rows []hours.EntryRow, totalHours string) error {
	for col, h := range entryHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for i, r := range rows {
		values := []any{
			r.VolunteerNumber, r.VolunteerName, r.CommitteeName, r.Date,
			r.ClockIn, r.ClockOut, r.Hours, r.Status, r.Notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	// Total row sits one blank row below the listing
	totalRow := len(rows) + 3
	labelCell, _ := excelize.CoordinatesToCellName(6, totalRow)
	hoursCell, _ := excelize.CoordinatesToCellName(7, totalRow)
	if err := f.SetCellValue(sheet, labelCell, "Total"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, hoursCell, totalHours); err != nil {
		return err
	}

	f.SetColWidth(sheet, "A", "B", 18)
	f.SetColWidth(sheet, "C", "C", 24)
	f.SetColWidth(sheet, "I", "I", 40)
	return nil
}

func writeSummarySheet(f *excelize.File, report *hours.GrantReport) error {
	lines := [][2]any{
		{"Fiscal Year", report.FiscalYear.String()},
		{"Total Approved Hours", report.Summary.TotalHours.StringFixed(2)},
		{"In-Kind Value", report.Summary.InKindValue.StringFixed(2)},
		{"Volunteers", report.Summary.VolunteerCount},
		{"Committees", report.Summary.CommitteeCount},
		{"Entries", report.Summary.EntryCount},
	}

	for i, line := range lines {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := f.SetCellValue("Summary", labelCell, line[0]); err != nil {
			return err
		}
		if err := f.SetCellValue("Summary", valueCell, line[1]); err != nil {
			return err
		}
	}

	f.SetColWidth("Summary", "A", "A", 24)
	f.SetColWidth("Summary", "B", "B", 32)
	return nil
}

func writeGroupSheet(f *excelize.File, sheet, label string, groups []hours.GroupTotal) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []string{label, "Number", "Hours", "Percent", "In-Kind Value", "Entries"}
	for col, h := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for i, g := range groups {
		values := []any{
			g.Name, g.Number,
			g.Hours.StringFixed(2),
			g.Percent.StringFixed(1),
			g.InKindValue.StringFixed(2),
			g.Entries,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	f.SetColWidth(sheet, "A", "A", 28)
	return nil
}

func write(f *excelize.File, w io.Writer) error {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("failed to render workbook: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// sheetName makes a committee name safe for use as an Excel sheet name.
// Excel forbids : \ / ? * [ ] and names longer than 31 characters; the
// cap counts characters, so truncation happens on runes, not bytes.
func sheetName(name string) string {
	replacer := strings.NewReplacer(
		":", "", "\\", "", "/", "", "?", "", "*", "", "[", "", "]", "",
	)
	name = strings.TrimSpace(replacer.Replace(name))
	if name == "" {
		name = "Committee"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}

// uniqueSheetName resolves collisions between sanitized names, including
// with the master sheet, by appending a numeric suffix. Without this, two
// committees identical in their first 31 characters would share one sheet
// and the second would overwrite the first's rows.
func uniqueSheetName(name string, used map[string]bool) string {
	if !used[name] {
		used[name] = true
		return name
	}
	runes := []rune(name)
	for i := 2; ; i++ {
		suffix := fmt.Sprintf(" %d", i)
		keep := 31 - len(suffix)
		candidate := name
		if len(runes) > keep {
			candidate = string(runes[:keep])
		}
		candidate += suffix
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}
