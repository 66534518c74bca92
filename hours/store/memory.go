// Package store provides an in-memory EntryStore and Directory for
// tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/clubops/volunteer-hours/hours"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	entries    map[hours.EntryID]hours.TimeEntry
	volunteers map[hours.VolunteerID]hours.Volunteer
	committees map[hours.CommitteeID]hours.Committee
}

func NewMemory() *Memory {
	return &Memory{
		entries:    make(map[hours.EntryID]hours.TimeEntry),
		volunteers: make(map[hours.VolunteerID]hours.Volunteer),
		committees: make(map[hours.CommitteeID]hours.Committee),
	}
}

// =============================================================================
// ENTRY STORE (hours.EntryStore interface)
// =============================================================================

// Create inserts a new entry, enforcing the single-open-session constraint
// the same way the SQLite partial unique index does.
func (m *Memory) Create(_ context.Context, entry hours.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.Open() {
		for _, e := range m.entries {
			if e.VolunteerID == entry.VolunteerID && e.Open() {
				return hours.ErrOpenEntryExists
			}
		}
	}
	m.entries[entry.ID] = entry
	return nil
}

func (m *Memory) Get(_ context.Context, id hours.EntryID) (*hours.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *Memory) Update(_ context.Context, id hours.EntryID, upd hours.EntryUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return hours.ErrEntryNotFound
	}

	if upd.ClockIn != nil {
		e.ClockIn = *upd.ClockIn
	}
	if upd.ClearClockOut {
		e.ClockOut = nil
	} else if upd.ClockOut != nil {
		t := *upd.ClockOut
		e.ClockOut = &t
	}
	if upd.Status != nil {
		e.Status = *upd.Status
	}
	if upd.Notes != nil {
		e.Notes = *upd.Notes
	}
	if upd.PhotoRef != nil {
		e.PhotoRef = *upd.PhotoRef
	}

	m.entries[id] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, id hours.EntryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return hours.ErrEntryNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *Memory) DeleteByVolunteer(_ context.Context, id hours.VolunteerID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for entryID, e := range m.entries {
		if e.VolunteerID == id {
			delete(m.entries, entryID)
			count++
		}
	}
	return count, nil
}

func (m *Memory) List(_ context.Context, f hours.EntryFilter) ([]hours.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []hours.TimeEntry
	for _, e := range m.entries {
		if matches(e, f) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ClockIn.Before(result[j].ClockIn)
	})
	return result, nil
}

func (m *Memory) OpenEntry(_ context.Context, id hours.VolunteerID) (*hours.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *hours.TimeEntry
	for _, e := range m.entries {
		if e.VolunteerID != id || !e.Open() {
			continue
		}
		e := e
		if latest == nil || e.ClockIn.After(latest.ClockIn) {
			latest = &e
		}
	}
	return latest, nil
}

func (m *Memory) ListOpen(_ context.Context) ([]hours.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []hours.TimeEntry
	for _, e := range m.entries {
		if e.Open() {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ClockIn.Before(result[j].ClockIn)
	})
	return result, nil
}

func matches(e hours.TimeEntry, f hours.EntryFilter) bool {
	if f.VolunteerID != "" && e.VolunteerID != f.VolunteerID {
		return false
	}
	if f.VolunteerNumber != "" && e.VolunteerNumber != f.VolunteerNumber {
		return false
	}
	if f.CommitteeID != "" && e.CommitteeID != f.CommitteeID {
		return false
	}
	if f.Status != nil && e.Status != *f.Status {
		return false
	}
	if f.ClockedOut != nil && *f.ClockedOut == e.Open() {
		return false
	}
	if f.Window != nil && !f.Window.Contains(e.ClockIn) {
		return false
	}
	return true
}

// =============================================================================
// DIRECTORY (hours.Directory interface)
// =============================================================================

func (m *Memory) Volunteer(_ context.Context, id hours.VolunteerID) (*hours.Volunteer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.volunteers[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *Memory) Committee(_ context.Context, id hours.CommitteeID) (*hours.Committee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.committees[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// =============================================================================
// ROSTER MANAGEMENT
// =============================================================================

// SaveVolunteer inserts or updates a roster record.
func (m *Memory) SaveVolunteer(_ context.Context, v hours.Volunteer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volunteers[v.ID] = v
	return nil
}

// ListVolunteers returns all roster records ordered by name.
func (m *Memory) ListVolunteers(_ context.Context) ([]hours.Volunteer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []hours.Volunteer
	for _, v := range m.volunteers {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// DeleteVolunteer removes a roster record and all of the volunteer's
// time entries. Returns the number of entries removed.
func (m *Memory) DeleteVolunteer(_ context.Context, id hours.VolunteerID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.volunteers, id)
	count := 0
	for entryID, e := range m.entries {
		if e.VolunteerID == id {
			delete(m.entries, entryID)
			count++
		}
	}
	return count, nil
}

// SaveCommittee inserts or updates a committee record.
func (m *Memory) SaveCommittee(_ context.Context, c hours.Committee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committees[c.ID] = c
	return nil
}

// ListCommittees returns all committee records ordered by name.
func (m *Memory) ListCommittees(_ context.Context) ([]hours.Committee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []hours.Committee
	for _, c := range m.committees {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// DeleteCommittee removes a committee record. Existing entries keep
// their committee name snapshot.
func (m *Memory) DeleteCommittee(_ context.Context, id hours.CommitteeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.committees, id)
	return nil
}
