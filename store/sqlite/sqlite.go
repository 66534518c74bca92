/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements hours.EntryStore and hours.Directory using SQLite, plus the
  roster management (volunteer/committee CRUD) the admin surface needs.
  In production, the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

INTERFACES IMPLEMENTED:
  hours.EntryStore: Time entry persistence
  hours.Directory:  Volunteer and committee lookups

KEY TABLES:
  time_entries: One row per clock-in session
  volunteers:   Roster records (badge number, display name)
  committees:   Committee records

INDEXES:
  - idx_open_entry_per_volunteer: Partial unique index enforcing at most
    one open session per volunteer. This is the database-level half of the
    duplicate clock-in guard; the controller mutex is the other half.
  - idx_entries_volunteer, idx_entries_committee, idx_entries_status,
    idx_entries_clock_in: Filter and report query paths.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/hours.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  clock := &hours.ClockController{Entries: store, Directory: store}

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - hours/store.go: Interface definitions
  - hours/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/clubops/volunteer-hours/hours"
)

// Store implements hours.EntryStore and hours.Directory using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Volunteers (roster)
	CREATE TABLE IF NOT EXISTS volunteers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		number TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_volunteers_number
		ON volunteers(number) WHERE number != '';

	-- Committees
	CREATE TABLE IF NOT EXISTS committees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		chair TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Time entries (one row per clock-in session)
	CREATE TABLE IF NOT EXISTS time_entries (
		id TEXT PRIMARY KEY,
		volunteer_id TEXT NOT NULL,
		volunteer_name TEXT NOT NULL,
		volunteer_number TEXT NOT NULL DEFAULT '',
		committee_id TEXT NOT NULL,
		committee_name TEXT NOT NULL,
		clock_in TEXT NOT NULL,
		clock_out TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		notes TEXT NOT NULL DEFAULT '',
		photo_ref TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: At most one open session per volunteer. The clock
	-- controller checks before inserting; this index closes the race
	-- between concurrent kiosk requests.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_open_entry_per_volunteer
		ON time_entries(volunteer_id) WHERE clock_out IS NULL;

	CREATE INDEX IF NOT EXISTS idx_entries_volunteer
		ON time_entries(volunteer_id);
	CREATE INDEX IF NOT EXISTS idx_entries_committee
		ON time_entries(committee_id);
	CREATE INDEX IF NOT EXISTS idx_entries_status
		ON time_entries(status);

	-- Range reports and fiscal-year queries filter on clock_in
	CREATE INDEX IF NOT EXISTS idx_entries_clock_in
		ON time_entries(clock_in);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ENTRY STORE (hours.EntryStore interface)
// =============================================================================

// Create inserts a new time entry. A second open entry for the same
// volunteer hits the partial unique index and maps to ErrOpenEntryExists.
func (s *Store) Create(ctx context.Context, e hours.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO time_entries
		(id, volunteer_id, volunteer_name, volunteer_number, committee_id, committee_name,
		 clock_in, clock_out, status, notes, photo_ref, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.VolunteerID,
		e.VolunteerName,
		e.VolunteerNumber,
		e.CommitteeID,
		e.CommitteeName,
		e.ClockIn.UTC().Format(time.RFC3339),
		nullTime(e.ClockOut),
		e.Status,
		e.Notes,
		e.PhotoRef,
		timestamp(e.CreatedAt),
		timestamp(e.UpdatedAt),
	)

	if err != nil {
		if isOpenEntryConflict(err) {
			return hours.ErrOpenEntryExists
		}
		return storeErr("insert entry", err)
	}

	return nil
}

// Get returns an entry by ID, or nil if it does not exist.
func (s *Store) Get(ctx context.Context, id hours.EntryID) (*hours.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectEntry+" WHERE id = ?", id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Update applies a partial update. Fields left nil are untouched.
func (s *Store) Update(ctx context.Context, id hours.EntryID, upd hours.EntryUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sets []string
	var args []any

	if upd.ClockIn != nil {
		sets = append(sets, "clock_in = ?")
		args = append(args, upd.ClockIn.UTC().Format(time.RFC3339))
	}
	if upd.ClearClockOut {
		sets = append(sets, "clock_out = NULL")
	} else if upd.ClockOut != nil {
		sets = append(sets, "clock_out = ?")
		args = append(args, upd.ClockOut.UTC().Format(time.RFC3339))
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *upd.Notes)
	}
	if upd.PhotoRef != nil {
		sets = append(sets, "photo_ref = ?")
		args = append(args, *upd.PhotoRef)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339))
	args = append(args, id)

	query := "UPDATE time_entries SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isOpenEntryConflict(err) {
			return hours.ErrOpenEntryExists
		}
		return storeErr("update entry", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("update entry", err)
	}
	if n == 0 {
		return hours.ErrEntryNotFound
	}
	return nil
}

// Delete removes an entry by ID.
func (s *Store) Delete(ctx context.Context, id hours.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM time_entries WHERE id = ?", id)
	if err != nil {
		return storeErr("delete entry", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete entry", err)
	}
	if n == 0 {
		return hours.ErrEntryNotFound
	}
	return nil
}

// DeleteByVolunteer removes all entries for a volunteer and returns the count.
func (s *Store) DeleteByVolunteer(ctx context.Context, id hours.VolunteerID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM time_entries WHERE volunteer_id = ?", id)
	if err != nil {
		return 0, storeErr("delete entries", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("delete entries", err)
	}
	return int(n), nil
}

// List returns entries matching the filter, ordered by clock-in time ascending.
func (s *Store) List(ctx context.Context, f hours.EntryFilter) ([]hours.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any

	if f.VolunteerID != "" {
		where = append(where, "volunteer_id = ?")
		args = append(args, f.VolunteerID)
	}
	if f.VolunteerNumber != "" {
		where = append(where, "volunteer_number = ?")
		args = append(args, f.VolunteerNumber)
	}
	if f.CommitteeID != "" {
		where = append(where, "committee_id = ?")
		args = append(args, f.CommitteeID)
	}
	if f.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *f.Status)
	}
	if f.ClockedOut != nil {
		if *f.ClockedOut {
			where = append(where, "clock_out IS NOT NULL")
		} else {
			where = append(where, "clock_out IS NULL")
		}
	}
	if f.Window != nil {
		where = append(where, "clock_in >= ? AND clock_in <= ?")
		args = append(args,
			f.Window.Start.UTC().Format(time.RFC3339),
			f.Window.End.UTC().Format(time.RFC3339),
		)
	}

	query := selectEntry
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY clock_in ASC, created_at ASC"

	return s.queryEntries(ctx, query, args...)
}

// OpenEntry returns the volunteer's open session, or nil if none.
// The partial unique index guarantees at most one row qualifies.
func (s *Store) OpenEntry(ctx context.Context, id hours.VolunteerID) (*hours.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		selectEntry+" WHERE volunteer_id = ? AND clock_out IS NULL ORDER BY clock_in DESC LIMIT 1",
		id,
	)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListOpen returns all open sessions, ordered by clock-in time ascending.
func (s *Store) ListOpen(ctx context.Context) ([]hours.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEntries(ctx,
		selectEntry+" WHERE clock_out IS NULL ORDER BY clock_in ASC, created_at ASC")
}

const selectEntry = `
	SELECT id, volunteer_id, volunteer_name, volunteer_number, committee_id, committee_name,
	       clock_in, clock_out, status, notes, photo_ref, created_at, updated_at
	FROM time_entries`

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]hours.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("query entries", err)
	}
	defer rows.Close()

	var entries []hours.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (hours.TimeEntry, error) {
	var (
		e         hours.TimeEntry
		clockIn   string
		clockOut  sql.NullString
		createdAt string
		updatedAt string
	)

	err := row.Scan(
		&e.ID, &e.VolunteerID, &e.VolunteerName, &e.VolunteerNumber,
		&e.CommitteeID, &e.CommitteeName,
		&clockIn, &clockOut, &e.Status, &e.Notes, &e.PhotoRef,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return e, err
	}
	if err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}

	e.ClockIn, _ = time.Parse(time.RFC3339, clockIn)
	if clockOut.Valid {
		t, _ := time.Parse(time.RFC3339, clockOut.String)
		e.ClockOut = &t
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return e, nil
}

// =============================================================================
// DIRECTORY (hours.Directory interface)
// =============================================================================

// Volunteer retrieves a roster record by ID, or nil if unknown.
func (s *Store) Volunteer(ctx context.Context, id hours.VolunteerID) (*hours.Volunteer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v hours.Volunteer
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, number FROM volunteers WHERE id = ?",
		id,
	).Scan(&v.ID, &v.Name, &v.Number)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("query volunteer", err)
	}
	return &v, nil
}

// Committee retrieves a committee record by ID, or nil if unknown.
func (s *Store) Committee(ctx context.Context, id hours.CommitteeID) (*hours.Committee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c hours.Committee
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, chair FROM committees WHERE id = ?",
		id,
	).Scan(&c.ID, &c.Name, &c.Chair)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("query committee", err)
	}
	return &c, nil
}

// =============================================================================
// ROSTER MANAGEMENT
// =============================================================================

// SaveVolunteer inserts or updates a roster record.
func (s *Store) SaveVolunteer(ctx context.Context, v hours.Volunteer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO volunteers (id, name, number, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			number = excluded.number
	`

	_, err := s.db.ExecContext(ctx, query,
		v.ID, v.Name, v.Number,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return storeErr("save volunteer", err)
	}
	return nil
}

// ListVolunteers returns all roster records ordered by name.
func (s *Store) ListVolunteers(ctx context.Context) ([]hours.Volunteer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, number FROM volunteers ORDER BY name",
	)
	if err != nil {
		return nil, storeErr("query volunteers", err)
	}
	defer rows.Close()

	var volunteers []hours.Volunteer
	for rows.Next() {
		var v hours.Volunteer
		if err := rows.Scan(&v.ID, &v.Name, &v.Number); err != nil {
			return nil, err
		}
		volunteers = append(volunteers, v)
	}
	return volunteers, rows.Err()
}

// DeleteVolunteer removes a roster record and all of the volunteer's
// time entries. Returns the number of entries removed.
func (s *Store) DeleteVolunteer(ctx context.Context, id hours.VolunteerID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storeErr("begin transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM time_entries WHERE volunteer_id = ?", id)
	if err != nil {
		return 0, storeErr("delete entries", err)
	}
	removed, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx, "DELETE FROM volunteers WHERE id = ?", id); err != nil {
		return 0, storeErr("delete volunteer", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, storeErr("commit", err)
	}
	return int(removed), nil
}

// SaveCommittee inserts or updates a committee record.
func (s *Store) SaveCommittee(ctx context.Context, c hours.Committee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO committees (id, name, chair, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			chair = excluded.chair
	`

	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Chair,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return storeErr("save committee", err)
	}
	return nil
}

// ListCommittees returns all committee records ordered by name.
func (s *Store) ListCommittees(ctx context.Context) ([]hours.Committee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, chair FROM committees ORDER BY name",
	)
	if err != nil {
		return nil, storeErr("query committees", err)
	}
	defer rows.Close()

	var committees []hours.Committee
	for rows.Next() {
		var c hours.Committee
		if err := rows.Scan(&c.ID, &c.Name, &c.Chair); err != nil {
			return nil, err
		}
		committees = append(committees, c)
	}
	return committees, rows.Err()
}

// DeleteCommittee removes a committee record. Existing entries keep
// their committee name snapshot.
func (s *Store) DeleteCommittee(ctx context.Context, id hours.CommitteeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM committees WHERE id = ?", id)
	if err != nil {
		return storeErr("delete committee", err)
	}
	return nil
}

// Helper functions

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339)
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", hours.ErrStoreUnavailable, op, err)
}

func isOpenEntryConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "idx_open_entry_per_volunteer")
}
