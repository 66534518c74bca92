/*
roster.go - Roster workbook import

PURPOSE:
  Parses volunteer rows out of an uploaded .xlsx roster so admins can
  load the membership list in one step instead of keying records in.
  Parsing lives here with the other spreadsheet code; duplicate
  handling against the stored roster is the caller's job.

COLUMN MATCHING:
  The first sheet is read. Header cells pick the columns: "Name" (or
  "name") and "Employee Number" (or "Number"/"number"). Rows missing
  either value are skipped. A "Last, First" name is flipped to
  "First Last".

SEE ALSO:
  - api/handlers.go: The import endpoint
*/
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RosterRow is one volunteer parsed from an imported workbook.
type RosterRow struct {
	Name   string
	Number string
}

// ReadRoster parses volunteer rows from the first sheet of an xlsx
// workbook.
func ReadRoster(r io.Reader) ([]RosterRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	nameCol, numberCol := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case "Name", "name":
			nameCol = i
		case "Employee Number", "Number", "number":
			numberCol = i
		}
	}
	if nameCol < 0 || numberCol < 0 {
		return nil, fmt.Errorf("missing Name or Employee Number column")
	}

	var out []RosterRow
	for _, row := range rows[1:] {
		name := cellAt(row, nameCol)
		number := cellAt(row, numberCol)
		if name == "" || number == "" {
			continue
		}
		out = append(out, RosterRow{Name: flipName(name), Number: number})
	}
	return out, nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// flipName turns "Last, First" into "First Last". Names with zero or
// more than one comma pass through unchanged.
func flipName(name string) string {
	parts := strings.Split(name, ",")
	if len(parts) != 2 {
		return name
	}
	return strings.TrimSpace(parts[1]) + " " + strings.TrimSpace(parts[0])
}
