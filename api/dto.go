/*
dto.go - Request/response data structures for the HTTP API

PURPOSE:
  JSON shapes exchanged with clients. Kept separate from the domain
  types so wire format changes don't leak into the hours package.

CONVENTIONS:
  - Timestamps are RFC3339 strings
  - Dates are YYYY-MM-DD strings
  - Hours and money are fixed-point decimal strings

SEE ALSO:
  - handlers.go: Handler implementations using these DTOs
*/
package api

import (
	"time"

	"github.com/clubops/volunteer-hours/hours"
)

// =============================================================================
// REQUESTS
// =============================================================================

// ClockInRequest starts a session from the kiosk.
type ClockInRequest struct {
	VolunteerID string `json:"volunteer_id"`
	CommitteeID string `json:"committee_id"`
}

// ClockOutRequest ends the volunteer's open session.
type ClockOutRequest struct {
	VolunteerID string `json:"volunteer_id"`
	Notes       string `json:"notes"`
}

// EditEntryRequest is a partial update of a time entry. Omitted fields
// are left unchanged. Setting clear_clock_out reopens the entry.
type EditEntryRequest struct {
	ClockIn       *string `json:"clock_in,omitempty"`
	ClockOut      *string `json:"clock_out,omitempty"`
	ClearClockOut bool    `json:"clear_clock_out,omitempty"`
	Status        *string `json:"status,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	PhotoRef      *string `json:"photo_ref,omitempty"`
}

// BulkDecisionRequest applies one decision to many entries.
type BulkDecisionRequest struct {
	IDs    []string `json:"ids"`
	Action string   `json:"action"` // "approve" or "reject"
}

// WindowApprovalRequest approves every pending, closed entry in a window.
type WindowApprovalRequest struct {
	Start       string `json:"start"` // YYYY-MM-DD
	End         string `json:"end"`   // YYYY-MM-DD
	CommitteeID string `json:"committee_id,omitempty"`
}

// SaveVolunteerRequest creates or updates a roster record.
type SaveVolunteerRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// SaveCommitteeRequest creates or updates a committee record.
type SaveCommitteeRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Chair string `json:"chair"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// EntryDTO is the wire form of a time entry.
type EntryDTO struct {
	ID              string  `json:"id"`
	VolunteerID     string  `json:"volunteer_id"`
	VolunteerName   string  `json:"volunteer_name"`
	VolunteerNumber string  `json:"volunteer_number"`
	CommitteeID     string  `json:"committee_id"`
	CommitteeName   string  `json:"committee_name"`
	ClockIn         string  `json:"clock_in"`
	ClockOut        *string `json:"clock_out"`
	Hours           string  `json:"hours"`
	Status          string  `json:"status"`
	Notes           string  `json:"notes"`
	PhotoRef        string  `json:"photo_ref,omitempty"`
}

// VolunteerDTO is the wire form of a roster record.
type VolunteerDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// CommitteeDTO is the wire form of a committee record.
type CommitteeDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Chair string `json:"chair"`
}

// StatusDTO reports whether a volunteer is currently clocked in.
type StatusDTO struct {
	ClockedIn bool      `json:"clocked_in"`
	Entry     *EntryDTO `json:"entry,omitempty"`
}

// BulkResultDTO reports per-entry outcomes of a bulk operation.
type BulkResultDTO struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// YTDDTO is the fiscal year-to-date summary for one volunteer, keyed by
// id or by member number depending on the lookup.
type YTDDTO struct {
	VolunteerID     string `json:"volunteer_id,omitempty"`
	VolunteerNumber string `json:"volunteer_number,omitempty"`
	FiscalYear      string `json:"fiscal_year"`
	Hours           string `json:"hours"`
}

// ImportResultDTO reports the outcome of a roster workbook import.
type ImportResultDTO struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// SweepResultDTO reports a manual sweep run.
type SweepResultDTO struct {
	Scanned int `json:"scanned"`
	Closed  int `json:"closed"`
	Failed  int `json:"failed"`
}

// ErrorResponse is the standard error shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEntryDTO(e hours.TimeEntry) EntryDTO {
	dto := EntryDTO{
		ID:              string(e.ID),
		VolunteerID:     string(e.VolunteerID),
		VolunteerName:   e.VolunteerName,
		VolunteerNumber: e.VolunteerNumber,
		CommitteeID:     string(e.CommitteeID),
		CommitteeName:   e.CommitteeName,
		ClockIn:         e.ClockIn.Format(time.RFC3339),
		Hours:           hours.Duration(e).StringFixed(2),
		Status:          string(e.Status),
		Notes:           e.Notes,
		PhotoRef:        e.PhotoRef,
	}
	if e.ClockOut != nil {
		s := e.ClockOut.Format(time.RFC3339)
		dto.ClockOut = &s
	}
	return dto
}

func toEntryDTOs(entries []hours.TimeEntry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	return dtos
}
