/*
handlers.go - HTTP API handlers for the volunteer hours engine

PURPOSE:
  Exposes the clock, approval, aggregation, and reporting engines via
  REST API. Handles HTTP request/response, JSON serialization, and
  delegates to domain logic.

ENDPOINTS:
  Kiosk:
    POST   /api/kiosk/clock-in           Start a session
    POST   /api/kiosk/clock-out          End the open session
    GET    /api/kiosk/status/{id}        Is the volunteer clocked in?
    GET    /api/kiosk/ytd/{number}       YTD hours by member number

  Entries:
    GET    /api/entries                  List with filters
    PUT    /api/entries/{id}             Manual edit
    DELETE /api/entries/{id}             Remove an entry
    POST   /api/entries/{id}/approve     Approve one
    POST   /api/entries/{id}/reject      Reject one
    POST   /api/entries/bulk             Approve/reject many by ID
    POST   /api/entries/approve-window   Approve all pending in a window

  Volunteers / Committees:
    CRUD over the roster, plus GET /api/volunteers/{id}/ytd and
    POST /api/volunteers/import for xlsx roster uploads

  Reports:
    GET    /api/reports/range            Date-range report (json or xlsx)
    GET    /api/reports/grant            Fiscal-year grant report

  Admin:
    POST   /api/admin/sweep              Run the auto-close sweep now
    POST   /api/admin/refresh/pause      Pause the background cycle
    POST   /api/admin/refresh/resume     Resume it

ERROR HANDLING:
  Domain errors map to HTTP statuses:
  - 400: Invalid input, bad time range, bad status
  - 404: Unknown volunteer, committee, or entry
  - 409: Already clocked in / no active session
  - 503: Store unavailable
  - 500: Everything else

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - refresh.go: Background refresh cycle
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/clubops/volunteer-hours/export"
	"github.com/clubops/volunteer-hours/hours"
)

// Store is the persistence surface the handlers need. Both the SQLite
// store and the in-memory store satisfy it.
type Store interface {
	hours.EntryStore
	hours.Directory

	SaveVolunteer(ctx context.Context, v hours.Volunteer) error
	ListVolunteers(ctx context.Context) ([]hours.Volunteer, error)
	DeleteVolunteer(ctx context.Context, id hours.VolunteerID) (int, error)
	SaveCommittee(ctx context.Context, c hours.Committee) error
	ListCommittees(ctx context.Context) ([]hours.Committee, error)
	DeleteCommittee(ctx context.Context, id hours.CommitteeID) error
}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       Store
	Clock       *hours.ClockController
	Approvals   *hours.ApprovalEngine
	Aggregator  *hours.Aggregator
	Reports     *hours.Assembler
	Sweeper     *hours.Sweeper
	Refresh     *RefreshScheduler
	SweepCutoff time.Duration
}

// NewHandler creates a handler and wires the domain engines to the store.
func NewHandler(store Store, hourlyRate decimal.Decimal, sweepCutoff time.Duration) *Handler {
	if sweepCutoff <= 0 {
		sweepCutoff = hours.DefaultSweepCutoff
	}
	return &Handler{
		Store:       store,
		Clock:       &hours.ClockController{Entries: store, Directory: store},
		Approvals:   &hours.ApprovalEngine{Entries: store},
		Aggregator:  &hours.Aggregator{Entries: store, HourlyRate: hourlyRate},
		Reports:     hours.NewAssembler(store, hourlyRate),
		Sweeper:     &hours.Sweeper{Entries: store, Cutoff: sweepCutoff},
		SweepCutoff: sweepCutoff,
	}
}

// =============================================================================
// KIOSK HANDLERS
// =============================================================================

// ClockIn starts a session for a volunteer.
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	var req ClockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.VolunteerID == "" || req.CommitteeID == "" {
		writeError(w, http.StatusBadRequest, "volunteer_id and committee_id are required", nil)
		return
	}

	entry, err := h.Clock.ClockIn(r.Context(),
		hours.VolunteerID(req.VolunteerID), hours.CommitteeID(req.CommitteeID), time.Now())
	if err != nil {
		writeDomainError(w, "Failed to clock in", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryDTO(*entry))
}

// ClockOut ends the volunteer's open session.
func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	var req ClockOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.VolunteerID == "" {
		writeError(w, http.StatusBadRequest, "volunteer_id is required", nil)
		return
	}

	entry, err := h.Clock.ClockOut(r.Context(),
		hours.VolunteerID(req.VolunteerID), req.Notes, time.Now())
	if err != nil {
		writeDomainError(w, "Failed to clock out", err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryDTO(*entry))
}

// KioskStatus reports whether a volunteer has an open session.
func (h *Handler) KioskStatus(w http.ResponseWriter, r *http.Request) {
	id := hours.VolunteerID(chi.URLParam(r, "id"))

	entry, err := h.Store.OpenEntry(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check status", err)
		return
	}

	status := StatusDTO{ClockedIn: entry != nil}
	if entry != nil {
		dto := toEntryDTO(*entry)
		status.Entry = &dto
	}
	writeJSON(w, http.StatusOK, status)
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns entries matching the query filters.
// Supported: status, committee_id, volunteer_id, volunteer_number,
// start, end (YYYY-MM-DD), open (true/false).
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f hours.EntryFilter

	f.VolunteerID = hours.VolunteerID(q.Get("volunteer_id"))
	f.VolunteerNumber = q.Get("volunteer_number")
	f.CommitteeID = hours.CommitteeID(q.Get("committee_id"))

	if raw := q.Get("status"); raw != "" {
		status, ok := hours.ParseStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown status %q", raw), nil)
			return
		}
		f.Status = &status
	}
	if raw := q.Get("open"); raw != "" {
		closed := raw != "true"
		f.ClockedOut = &closed
	}
	if q.Get("start") != "" || q.Get("end") != "" {
		window, err := parseWindow(q.Get("start"), q.Get("end"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date range (use YYYY-MM-DD)", err)
			return
		}
		f.Window = &window
	}

	entries, err := h.Store.List(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// EditEntry applies a manual correction to an entry.
func (h *Handler) EditEntry(w http.ResponseWriter, r *http.Request) {
	id := hours.EntryID(chi.URLParam(r, "id"))

	var req EditEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	upd := hours.EntryUpdate{
		ClearClockOut: req.ClearClockOut,
		Notes:         req.Notes,
		PhotoRef:      req.PhotoRef,
	}
	if req.ClockIn != nil {
		t, err := time.Parse(time.RFC3339, *req.ClockIn)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid clock_in (use RFC3339)", err)
			return
		}
		upd.ClockIn = &t
	}
	if req.ClockOut != nil {
		t, err := time.Parse(time.RFC3339, *req.ClockOut)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid clock_out (use RFC3339)", err)
			return
		}
		upd.ClockOut = &t
	}
	if req.Status != nil {
		status, ok := hours.ParseStatus(*req.Status)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown status %q", *req.Status), nil)
			return
		}
		upd.Status = &status
	}

	entry, err := h.Clock.Edit(r.Context(), id, upd)
	if err != nil {
		writeDomainError(w, "Failed to edit entry", err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryDTO(*entry))
}

// DeleteEntry removes an entry.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := hours.EntryID(chi.URLParam(r, "id"))

	if err := h.Store.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// APPROVAL HANDLERS
// =============================================================================

// ApproveEntry marks one entry approved.
func (h *Handler) ApproveEntry(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, hours.StatusApproved)
}

// RejectEntry marks one entry rejected.
func (h *Handler) RejectEntry(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, hours.StatusRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, target hours.Status) {
	id := hours.EntryID(chi.URLParam(r, "id"))

	var err error
	if target == hours.StatusApproved {
		err = h.Approvals.Approve(r.Context(), id)
	} else {
		err = h.Approvals.Reject(r.Context(), id)
	}
	if err != nil {
		writeDomainError(w, "Failed to update entry status", err)
		return
	}

	entry, err := h.Store.Get(r.Context(), id)
	if err != nil || entry == nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(*entry))
}

// BulkDecision approves or rejects a set of entries by ID.
func (h *Handler) BulkDecision(w http.ResponseWriter, r *http.Request) {
	var req BulkDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var target hours.Status
	switch req.Action {
	case "approve":
		target = hours.StatusApproved
	case "reject":
		target = hours.StatusRejected
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown action %q", req.Action), nil)
		return
	}

	ids := make([]hours.EntryID, len(req.IDs))
	for i, raw := range req.IDs {
		ids[i] = hours.EntryID(raw)
	}

	result, err := h.Approvals.BulkTransition(r.Context(), ids, target)
	if err != nil {
		writeDomainError(w, "Bulk operation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, BulkResultDTO{
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
	})
}

// ApproveWindow approves every pending, closed entry in a date window,
// optionally restricted to one committee.
func (h *Handler) ApproveWindow(w http.ResponseWriter, r *http.Request) {
	var req WindowApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	window, err := parseWindow(req.Start, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range (use YYYY-MM-DD)", err)
		return
	}

	var committeeID *hours.CommitteeID
	if req.CommitteeID != "" {
		id := hours.CommitteeID(req.CommitteeID)
		committeeID = &id
	}

	result, err := h.Approvals.ApproveAllInWindow(r.Context(), window, committeeID)
	if err != nil {
		writeDomainError(w, "Window approval failed", err)
		return
	}

	writeJSON(w, http.StatusOK, BulkResultDTO{
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
	})
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

// ListVolunteers returns the roster.
func (h *Handler) ListVolunteers(w http.ResponseWriter, r *http.Request) {
	volunteers, err := h.Store.ListVolunteers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list volunteers", err)
		return
	}

	dtos := make([]VolunteerDTO, len(volunteers))
	for i, v := range volunteers {
		dtos[i] = VolunteerDTO{ID: string(v.ID), Name: v.Name, Number: v.Number}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveVolunteer creates or updates a roster record.
func (h *Handler) SaveVolunteer(w http.ResponseWriter, r *http.Request) {
	var req SaveVolunteerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	v := hours.Volunteer{
		ID:     hours.VolunteerID(req.ID),
		Name:   hours.Sanitize(req.Name),
		Number: hours.Sanitize(req.Number),
	}
	if err := h.Store.SaveVolunteer(r.Context(), v); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save volunteer", err)
		return
	}

	writeJSON(w, http.StatusCreated, VolunteerDTO{ID: string(v.ID), Name: v.Name, Number: v.Number})
}

// ImportVolunteers loads volunteers from an uploaded xlsx roster. The
// workbook arrives either as a multipart "file" field or as the raw
// request body. Rows whose member number is already on the roster are
// skipped, not updated.
func (h *Handler) ImportVolunteers(w http.ResponseWriter, r *http.Request) {
	body := io.Reader(r.Body)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file field is required", err)
			return
		}
		defer file.Close()
		body = file
	}

	rows, err := export.ReadRoster(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not parse roster workbook", err)
		return
	}

	existing, err := h.Store.ListVolunteers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list volunteers", err)
		return
	}
	known := make(map[string]bool, len(existing))
	for _, v := range existing {
		known[v.Number] = true
	}

	imported, skipped := 0, 0
	for _, row := range rows {
		number := hours.Sanitize(row.Number)
		if number == "" || known[number] {
			skipped++
			continue
		}

		v := hours.Volunteer{
			ID:     hours.NewVolunteerID(),
			Name:   hours.Sanitize(row.Name),
			Number: number,
		}
		if err := h.Store.SaveVolunteer(r.Context(), v); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save volunteer", err)
			return
		}
		known[number] = true
		imported++
	}

	writeJSON(w, http.StatusOK, ImportResultDTO{Imported: imported, Skipped: skipped})
}

// DeleteVolunteer removes a roster record and all of its entries.
func (h *Handler) DeleteVolunteer(w http.ResponseWriter, r *http.Request) {
	id := hours.VolunteerID(chi.URLParam(r, "id"))

	removed, err := h.Store.DeleteVolunteer(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete volunteer", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"entries_removed": removed})
}

// GetYTD returns fiscal year-to-date approved hours for a volunteer.
// Accepts ?date=YYYY-MM-DD to anchor the fiscal year; defaults to today.
func (h *Handler) GetYTD(w http.ResponseWriter, r *http.Request) {
	id := hours.VolunteerID(chi.URLParam(r, "id"))

	ref := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		ref = t
	}

	total, err := h.Aggregator.YTDApprovedHours(r.Context(), id, ref)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to aggregate hours", err)
		return
	}

	writeJSON(w, http.StatusOK, YTDDTO{
		VolunteerID: string(id),
		FiscalYear:  hours.FiscalYear(ref).String(),
		Hours:       total.StringFixed(2),
	})
}

// GetYTDByNumber is the kiosk-side YTD lookup. Kiosks identify
// volunteers by member number, not by record id.
func (h *Handler) GetYTDByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	ref := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		ref = t
	}

	total, err := h.Aggregator.YTDApprovedHoursByNumber(r.Context(), number, ref)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to aggregate hours", err)
		return
	}

	writeJSON(w, http.StatusOK, YTDDTO{
		VolunteerNumber: number,
		FiscalYear:      hours.FiscalYear(ref).String(),
		Hours:           total.StringFixed(2),
	})
}

// ListCommittees returns all committees.
func (h *Handler) ListCommittees(w http.ResponseWriter, r *http.Request) {
	committees, err := h.Store.ListCommittees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list committees", err)
		return
	}

	dtos := make([]CommitteeDTO, len(committees))
	for i, c := range committees {
		dtos[i] = CommitteeDTO{ID: string(c.ID), Name: c.Name, Chair: c.Chair}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveCommittee creates or updates a committee record.
func (h *Handler) SaveCommittee(w http.ResponseWriter, r *http.Request) {
	var req SaveCommitteeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	c := hours.Committee{
		ID:    hours.CommitteeID(req.ID),
		Name:  hours.Sanitize(req.Name),
		Chair: hours.Sanitize(req.Chair),
	}
	if err := h.Store.SaveCommittee(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save committee", err)
		return
	}

	writeJSON(w, http.StatusCreated, CommitteeDTO{ID: string(c.ID), Name: c.Name, Chair: c.Chair})
}

// DeleteCommittee removes a committee record.
func (h *Handler) DeleteCommittee(w http.ResponseWriter, r *http.Request) {
	id := hours.CommitteeID(chi.URLParam(r, "id"))

	if err := h.Store.DeleteCommittee(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete committee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RangeReport builds a date-range report. The window comes from either
// ?period=week|month|quarter (anchored at ?date=, defaulting to today)
// or explicit ?start= and ?end= bounds. ?format=xlsx downloads a
// workbook; the default is JSON.
func (h *Handler) RangeReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	window, err := reportWindow(q.Get("period"), q.Get("date"), q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range (use YYYY-MM-DD)", err)
		return
	}

	var committeeID *hours.CommitteeID
	if raw := q.Get("committee_id"); raw != "" {
		id := hours.CommitteeID(raw)
		committeeID = &id
	}

	report, err := h.Reports.BuildRange(r.Context(), window, committeeID)
	if err != nil {
		writeDomainError(w, "Failed to build report", err)
		return
	}

	if q.Get("format") == "xlsx" {
		filename := fmt.Sprintf("hours-%s-to-%s.xlsx",
			window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		if err := export.RangeWorkbook(report, w); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to render workbook", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// GrantReport builds a fiscal-year grant report. ?date= anchors the
// fiscal year (defaults to today); ?format=xlsx downloads a workbook.
func (h *Handler) GrantReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ref := time.Now()
	if raw := q.Get("date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		ref = t
	}

	report, err := h.Reports.BuildGrant(r.Context(), ref)
	if err != nil {
		writeDomainError(w, "Failed to build report", err)
		return
	}

	if q.Get("format") == "xlsx" {
		filename := fmt.Sprintf("grant-%d.xlsx", report.FiscalYear.Start.Year())
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		if err := export.GrantWorkbook(report, w); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to render workbook", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// TriggerSweep runs the auto-close sweep immediately.
func (h *Handler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.Sweeper.Sweep(r.Context(), time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Sweep failed", err)
		return
	}

	writeJSON(w, http.StatusOK, SweepResultDTO{
		Scanned: result.Scanned,
		Closed:  result.Closed,
		Failed:  result.Failed,
	})
}

// PauseRefresh suspends the background refresh cycle, typically while
// an admin has an edit dialog open.
func (h *Handler) PauseRefresh(w http.ResponseWriter, r *http.Request) {
	if h.Refresh == nil {
		writeError(w, http.StatusConflict, "Refresh cycle not running", nil)
		return
	}
	h.Refresh.Pause()
	writeJSON(w, http.StatusOK, map[string]bool{"paused": true})
}

// ResumeRefresh resumes the background refresh cycle.
func (h *Handler) ResumeRefresh(w http.ResponseWriter, r *http.Request) {
	if h.Refresh == nil {
		writeError(w, http.StatusConflict, "Refresh cycle not running", nil)
		return
	}
	h.Refresh.Resume()
	writeJSON(w, http.StatusOK, map[string]bool{"paused": false})
}

// =============================================================================
// HELPERS
// =============================================================================

// reportWindow resolves a report window from a named period or explicit
// bounds. A named period wins when both are supplied.
func reportWindow(period, date, start, end string) (hours.Period, error) {
	if period == "" {
		return parseWindow(start, end)
	}

	ref := time.Now()
	if date != "" {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			return hours.Period{}, fmt.Errorf("invalid date: %w", err)
		}
		ref = t
	}

	switch period {
	case "week":
		return hours.Week(ref), nil
	case "month":
		return hours.Month(ref), nil
	case "quarter":
		return hours.Quarter(ref), nil
	case "year":
		return hours.FiscalYear(ref), nil
	default:
		return hours.Period{}, fmt.Errorf("unknown period %q", period)
	}
}

// parseWindow builds a whole-day window from YYYY-MM-DD bounds.
func parseWindow(start, end string) (hours.Period, error) {
	startDay, err := time.Parse("2006-01-02", start)
	if err != nil {
		return hours.Period{}, fmt.Errorf("invalid start date: %w", err)
	}
	endDay, err := time.Parse("2006-01-02", end)
	if err != nil {
		return hours.Period{}, fmt.Errorf("invalid end date: %w", err)
	}

	window := hours.CustomRange(startDay, endDay)
	if !window.Valid() {
		return hours.Period{}, fmt.Errorf("end date before start date")
	}
	return window, nil
}

func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case hours.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, hours.ErrAlreadyClockedIn) || errors.Is(err, hours.ErrNoActiveSession):
		writeError(w, http.StatusConflict, message, err)
	case hours.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case hours.IsRetryable(err):
		writeError(w, http.StatusServiceUnavailable, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
