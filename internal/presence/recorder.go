package presence

import (
	"context"
	"errors"
	"fmt"

	"presence/internal/clock"
	"presence/internal/employee"
)

// Directory resolves registration numbers to employees.
type Directory interface {
	FindByRegistrationNumber(ctx context.Context, regNo string) (employee.Employee, error)
}

// Store is the event persistence the recorder reads and appends to.
type Store interface {
	// FindActiveForEmployeeOnDate returns active events ordered by time.
	FindActiveForEmployeeOnDate(ctx context.Context, employeeID, date string) ([]Event, error)
	Append(ctx context.Context, evt Event) (Event, error)
}

// Locker serialises work on a key.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Recorder turns scans into presence events.
type Recorder struct {
	directory Directory
	store     Store
	locker    Locker
	clock     clock.Clock
}

// NewRecorder creates a recorder. locker may be nil when the store's
// uniqueness constraint is the only guard wanted.
func NewRecorder(directory Directory, store Store, locker Locker, clk clock.Clock) *Recorder {
	if clk == nil {
		clk = clock.System(nil)
	}
	return &Recorder{directory: directory, store: store, locker: locker, clock: clk}
}

// RecordScan validates a scan against the employee's events for today and
// appends a new event when every rule passes.
func (r *Recorder) RecordScan(ctx context.Context, rawCode, action, reason string) (Event, error) {
	code, err := ParseCode(rawCode)
	if err != nil {
		return Event{}, err
	}

	emp, err := r.directory.FindByRegistrationNumber(ctx, code.RegistrationNumber)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			return Event{}, &ValidationError{
				Code:    CodeEmployeeNotFound,
				Message: fmt.Sprintf("no employee with registration number %q", code.RegistrationNumber),
			}
		}
		return Event{}, fmt.Errorf("resolve employee: %w", err)
	}

	now := r.clock.Now()
	date := clock.Date(now)

	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, "presence:"+emp.ID+":"+date)
		if err != nil {
			return Event{}, fmt.Errorf("lock daily events: %w", err)
		}
		defer unlock()
	}

	day, err := r.store.FindActiveForEmployeeOnDate(ctx, emp.ID, date)
	if err != nil {
		return Event{}, fmt.Errorf("load daily events: %w", err)
	}
	if err := Validate(NewDailyState(day), action, now); err != nil {
		return Event{}, err
	}

	employeeID := emp.ID
	evt := Event{
		EmployeeID:         &employeeID,
		Name:               code.DisplayName(),
		RegistrationNumber: code.RegistrationNumber,
		Date:               date,
		Time:               clock.TimeOfDay(now),
		Action:             action,
		Status:             StatusSuccess,
		Note:               reason,
		OriginMethod:       OriginQRCode,
		Active:             true,
	}
	return r.store.Append(ctx, evt)
}
