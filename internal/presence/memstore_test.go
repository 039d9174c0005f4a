package presence

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"presence/internal/employee"
)

// memRepo mirrors the Postgres repository, including the partial unique
// index on active (employee, date, action).
type memRepo struct {
	mu      sync.Mutex
	events  []Event
	appends int
}

func (m *memRepo) FindActiveForEmployeeOnDate(_ context.Context, employeeID, date string) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if e.Active && e.EmployeeID != nil && *e.EmployeeID == employeeID && e.Date == date {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (m *memRepo) Append(_ context.Context, evt Event) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if evt.EmployeeID != nil && evt.Active {
		for _, e := range m.events {
			if e.Active && e.EmployeeID != nil && *e.EmployeeID == *evt.EmployeeID &&
				e.Date == evt.Date && e.Action == evt.Action {
				return Event{}, ErrDuplicateAction
			}
		}
	}
	evt.ID = uuid.NewString()
	m.events = append(m.events, evt)
	m.appends++
	return evt, nil
}

func (m *memRepo) Get(_ context.Context, id string) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			return e, nil
		}
	}
	return Event{}, ErrNotFound
}

func (m *memRepo) ListActive(_ context.Context, f Filter) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	q := strings.ToLower(f.Query)
	for _, e := range m.events {
		if !e.Active {
			continue
		}
		if f.Date != "" && e.Date != f.Date {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(e.Name), q) &&
			!strings.Contains(strings.ToLower(e.RegistrationNumber), q) {
			continue
		}
		if f.EmployeeID != "" && (e.EmployeeID == nil || *e.EmployeeID != f.EmployeeID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memRepo) Stats(_ context.Context, today string) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s Stats
	for _, e := range m.events {
		if !e.Active {
			continue
		}
		s.Total++
		if e.Date == today {
			s.Today++
		}
		switch e.Status {
		case StatusSuccess:
			s.Success++
		case StatusFailed:
			s.Failed++
		}
	}
	return s, nil
}

func (m *memRepo) Update(_ context.Context, evt Event) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.events {
		if e.ID == evt.ID {
			m.events[i] = evt
			return evt, nil
		}
	}
	return Event{}, ErrNotFound
}

func (m *memRepo) Deactivate(_ context.Context, ids ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for i, e := range m.events {
		if want[e.ID] {
			m.events[i].Active = false
			n++
		}
	}
	return n, nil
}

func (m *memRepo) snapshot() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

type memDirectory map[string]employee.Employee

func (d memDirectory) FindByRegistrationNumber(_ context.Context, regNo string) (employee.Employee, error) {
	for _, e := range d {
		if e.RegistrationNumber == regNo {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrNotFound
}

func (d memDirectory) Get(_ context.Context, id string) (employee.Employee, error) {
	e, ok := d[id]
	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	return e, nil
}
