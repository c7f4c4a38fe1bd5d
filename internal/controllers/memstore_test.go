package controllers_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"taxi_ledger/internal/apperrors"
	"taxi_ledger/internal/models"
	"taxi_ledger/internal/realtime"
	"taxi_ledger/internal/store"
	"taxi_ledger/internal/week"
)

// memStore keeps drivers and entries in maps and follows the same rules as
// the Postgres store: unique phones, one entry per driver and week, writes
// only for active drivers, cascade on delete.
type memStore struct {
	mu      sync.Mutex
	drivers map[string]*models.Driver
	entries map[uint]*models.WeeklyEntry
	nextID  uint
	clock   time.Time
	pingErr error
	// listErr, when set, fails driver listings and histories.
	listErr error
}

func newMemStore() *memStore {
	return &memStore{
		drivers: map[string]*models.Driver{},
		entries: map[uint]*models.WeeklyEntry{},
		clock:   time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) ListDrivers(_ context.Context, f store.DriverFilter) ([]models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}

	out := []models.Driver{}
	for _, d := range m.drivers {
		if f.ActiveOnly && !d.Active() {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.OrderByName && out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		if f.OrderByName {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) GetDriver(_ context.Context, id string) (*models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drivers[id]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "Driver not found")
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) GetDriverWithEntries(ctx context.Context, id string) (*models.Driver, error) {
	d, err := m.GetDriver(ctx, id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d.WeeklyEntries = m.entriesOf(id)
	return d, nil
}

func (m *memStore) CreateDriver(_ context.Context, d *models.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, other := range m.drivers {
		if other.Phone == d.Phone {
			return apperrors.New(apperrors.CodeConflict, "A driver with this phone number already exists.")
		}
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := m.tick()
	d.CreatedAt, d.UpdatedAt = now, now
	cp := *d
	m.drivers[d.ID] = &cp
	return nil
}

func (m *memStore) UpdateDriver(_ context.Context, id string, p models.DriverPatch) (*models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drivers[id]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "Driver not found")
	}
	if p.Phone != nil {
		for _, other := range m.drivers {
			if other.ID != id && other.Phone == *p.Phone {
				return nil, apperrors.New(apperrors.CodeConflict, "A driver with this phone number already exists.")
			}
		}
		d.Phone = *p.Phone
	}
	if p.Name != nil {
		d.Name = *p.Name
	}
	switch {
	case p.ClearLicense:
		d.LicenseNumber = nil
	case p.LicenseNumber != nil:
		d.LicenseNumber = p.LicenseNumber
	}
	switch {
	case p.ClearJoinDate:
		d.JoinDate = nil
	case p.JoinDate != nil:
		d.JoinDate = p.JoinDate
	}
	switch {
	case p.ClearImage:
		d.ProfileImageURL = nil
	case p.ProfileImageURL != nil:
		d.ProfileImageURL = p.ProfileImageURL
	}
	if p.Hidden != nil {
		d.Hidden = *p.Hidden
	}
	if p.Removed != nil {
		if *p.Removed {
			now := m.tick()
			d.RemovedAt = &now
		} else {
			d.RemovedAt = nil
		}
	}
	d.UpdatedAt = m.tick()
	cp := *d
	return &cp, nil
}

func (m *memStore) SetHidden(ctx context.Context, id string, hidden bool) (*models.Driver, error) {
	return m.UpdateDriver(ctx, id, models.DriverPatch{Hidden: &hidden})
}

func (m *memStore) SetRemoved(ctx context.Context, id string, removed bool) (*models.Driver, error) {
	return m.UpdateDriver(ctx, id, models.DriverPatch{Removed: &removed})
}

func (m *memStore) DeleteDriver(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.drivers[id]; !ok {
		return apperrors.New(apperrors.CodeNotFound, "Driver not found")
	}
	delete(m.drivers, id)
	for eid, e := range m.entries {
		if e.DriverID == id {
			delete(m.entries, eid)
		}
	}
	return nil
}

func (m *memStore) DriverHistories(ctx context.Context) ([]models.Driver, error) {
	drivers, err := m.ListDrivers(ctx, store.DriverFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range drivers {
		drivers[i].WeeklyEntries = m.entriesOf(drivers[i].ID)
	}
	return drivers, nil
}

// entriesOf returns a driver's entries latest week end first. Callers hold mu.
func (m *memStore) entriesOf(driverID string) []models.WeeklyEntry {
	out := []models.WeeklyEntry{}
	for _, e := range m.entries {
		if e.DriverID == driverID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WeekEnd.Equal(out[j].WeekEnd) {
			return out[i].WeekEnd.After(out[j].WeekEnd)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *memStore) UpsertWeeklyEntry(_ context.Context, e models.WeeklyEntry) (models.WeeklyEntry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drivers[e.DriverID]
	if !ok || !d.Active() {
		return models.WeeklyEntry{}, false, apperrors.New(apperrors.CodeReference, "Driver is hidden, removed, or does not exist.")
	}
	r := week.Bounds(e.WeekStart)
	e.WeekStart, e.WeekEnd = r.Start, r.End
	now := m.tick()

	for _, existing := range m.entries {
		if existing.DriverID == e.DriverID && existing.WeekStart.Equal(e.WeekStart) {
			existing.WeekEnd = e.WeekEnd
			existing.Earnings = e.Earnings
			existing.Trips = e.Trips
			existing.Notes = e.Notes
			existing.UpdatedAt = now
			return *existing, false, nil
		}
	}

	m.nextID++
	e.ID = m.nextID
	e.CreatedAt, e.UpdatedAt = now, now
	e.Driver = nil
	m.entries[e.ID] = &e
	return e, true, nil
}

func (m *memStore) UpdateWeeklyEntry(_ context.Context, id uint, p models.WeeklyPatch) (models.WeeklyEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return models.WeeklyEntry{}, apperrors.New(apperrors.CodeNotFound, "Weekly entry not found")
	}
	if p.WeekStart != nil {
		r := week.Bounds(*p.WeekStart)
		for _, other := range m.entries {
			if other.ID != id && other.DriverID == e.DriverID && other.WeekStart.Equal(r.Start) {
				return models.WeeklyEntry{}, apperrors.New(apperrors.CodeConflict, "This driver already has an entry for that week.")
			}
		}
		e.WeekStart, e.WeekEnd = r.Start, r.End
	}
	if p.Earnings != nil {
		e.Earnings = *p.Earnings
	}
	if p.Trips != nil {
		e.Trips = *p.Trips
	}
	switch {
	case p.ClearNotes:
		e.Notes = nil
	case p.Notes != nil:
		e.Notes = p.Notes
	}
	e.UpdatedAt = m.tick()
	return *e, nil
}

func (m *memStore) DeleteWeeklyEntry(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return apperrors.New(apperrors.CodeNotFound, "Weekly entry not found")
	}
	delete(m.entries, id)
	return nil
}

func (m *memStore) DeleteWeeklyEntries(_ context.Context, ids []uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, id := range ids {
		if _, ok := m.entries[id]; ok {
			delete(m.entries, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListWeeklyEntries(_ context.Context, f store.WeeklyFilter) ([]models.WeeklyEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.WeeklyEntry{}
	for _, e := range m.entries {
		if f.DriverID != "" && e.DriverID != f.DriverID {
			continue
		}
		if f.WeekStart != nil && !e.WeekStart.Equal(week.Bounds(*f.WeekStart).Start) {
			continue
		}
		if f.WeekEnd != nil && !e.WeekEnd.Equal(week.Bounds(*f.WeekEnd).End) {
			continue
		}
		d := m.drivers[e.DriverID]
		if f.ActiveDriversOnly && (d == nil || !d.Active()) {
			continue
		}
		cp := *e
		if f.WithDriver && d != nil {
			dc := *d
			cp.Driver = &dc
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].WeekStart.Equal(out[j].WeekStart) {
			return out[i].WeekStart.After(out[j].WeekStart)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// recorder captures published change events.
type recorder struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (r *recorder) Publish(ev realtime.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

var errDown = errors.New("connection refused")
