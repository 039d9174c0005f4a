package presence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"presence/internal/clock"
	"presence/internal/employee"
)

// Repo is the full event persistence used by Service; *Repository
// satisfies it.
type Repo interface {
	Store
	Get(ctx context.Context, id string) (Event, error)
	ListActive(ctx context.Context, f Filter) ([]Event, error)
	Stats(ctx context.Context, today string) (Stats, error)
	Update(ctx context.Context, evt Event) (Event, error)
	Deactivate(ctx context.Context, ids ...string) (int64, error)
}

// Employees looks employees up by id for manual entries.
type Employees interface {
	Get(ctx context.Context, id string) (employee.Employee, error)
}

// Service exposes queries, stats, manual entry and soft deletion.
type Service struct {
	repo      Repo
	employees Employees
	clock     clock.Clock
}

// NewService creates a service.
func NewService(repo Repo, employees Employees, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System(nil)
	}
	return &Service{repo: repo, employees: employees, clock: clk}
}

// List returns active events matching f.
func (s *Service) List(ctx context.Context, f Filter) ([]Event, error) {
	f.Query = strings.TrimSpace(f.Query)
	if f.Date != "" {
		if _, err := time.Parse(clock.DateLayout, f.Date); err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalid)
		}
	}
	return s.repo.ListActive(ctx, f)
}

// Get returns an event by id.
func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	return s.repo.Get(ctx, id)
}

// Stats aggregates active events, counting "today" by the service clock.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx, clock.Date(s.clock.Now()))
}

// Create records a manual event. Missing date and time default to now,
// origin defaults to MANUAL and status to success.
func (s *Service) Create(ctx context.Context, in Event) (Event, error) {
	evt, err := s.prepare(ctx, in)
	if err != nil {
		return Event{}, err
	}
	evt.ID = ""
	evt.Active = true
	return s.repo.Append(ctx, evt)
}

// Update replaces the editable fields of an existing event.
func (s *Service) Update(ctx context.Context, id string, in Event) (Event, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if in.EmployeeID == nil {
		in.EmployeeID = current.EmployeeID
	}
	evt, err := s.prepare(ctx, in)
	if err != nil {
		return Event{}, err
	}
	evt.ID = current.ID
	evt.Active = current.Active
	return s.repo.Update(ctx, evt)
}

// Delete soft-deletes one event.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	_, err := s.repo.Deactivate(ctx, id)
	return err
}

// DeleteMany soft-deletes every listed event that exists.
func (s *Service) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.Deactivate(ctx, ids...)
}

func (s *Service) prepare(ctx context.Context, in Event) (Event, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.RegistrationNumber = strings.TrimSpace(in.RegistrationNumber)
	in.Action = strings.TrimSpace(in.Action)
	switch {
	case in.Name == "":
		return Event{}, fmt.Errorf("%w: name is required", ErrInvalid)
	case in.RegistrationNumber == "":
		return Event{}, fmt.Errorf("%w: registration number is required", ErrInvalid)
	case in.Action == "":
		return Event{}, fmt.Errorf("%w: action is required", ErrInvalid)
	}

	if in.EmployeeID != nil && *in.EmployeeID != "" {
		if _, err := s.employees.Get(ctx, *in.EmployeeID); err != nil {
			if errors.Is(err, employee.ErrNotFound) {
				return Event{}, employee.ErrNotFound
			}
			return Event{}, err
		}
	} else {
		in.EmployeeID = nil
	}

	now := s.clock.Now()
	if in.Date == "" {
		in.Date = clock.Date(now)
	} else if _, err := time.Parse(clock.DateLayout, in.Date); err != nil {
		return Event{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalid)
	}
	if in.Time == "" {
		in.Time = clock.TimeOfDay(now)
	} else if t, err := parseTimeOfDay(in.Time); err != nil {
		return Event{}, fmt.Errorf("%w: time must be HH:MM or HH:MM:SS", ErrInvalid)
	} else {
		in.Time = t
	}
	if in.Status == "" {
		in.Status = StatusSuccess
	}
	if in.Status != StatusSuccess && in.Status != StatusFailed {
		return Event{}, fmt.Errorf("%w: status must be %q or %q", ErrInvalid, StatusSuccess, StatusFailed)
	}
	if in.OriginMethod == "" {
		in.OriginMethod = OriginManual
	}
	return in, nil
}

func parseTimeOfDay(v string) (string, error) {
	for _, layout := range []string{clock.TimeLayout, "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			return clock.TimeOfDay(t), nil
		}
	}
	return "", fmt.Errorf("invalid time of day %q", v)
}
