package employee

import (
	"context"
	"log"
	"time"

	"presence/internal/clock"
	"presence/internal/metrics"
)

// Store is the persistence the service needs; *Repository satisfies it.
type Store interface {
	Get(ctx context.Context, id string) (Employee, error)
	FindByRegistrationNumber(ctx context.Context, regNo string) (Employee, error)
	ListActive(ctx context.Context, department string) ([]Employee, error)
	ExistsRegistrationNumber(ctx context.Context, regNo, excludeID string) (bool, error)
	ExistsEmail(ctx context.Context, email, excludeID string) (bool, error)
	Insert(ctx context.Context, e Employee) (Employee, error)
	Update(ctx context.Context, e Employee) (Employee, error)
	Deactivate(ctx context.Context, id string) error
	SetQRCodeData(ctx context.Context, id, data string) error
}

// Provisioner runs the secondary step after an employee is created.
type Provisioner interface {
	Provision(ctx context.Context, e Employee) error
}

// Service manages the employee directory.
type Service struct {
	store       Store
	provisioner Provisioner
	clock       clock.Clock
}

// NewService creates a service. provisioner may be nil.
func NewService(store Store, provisioner Provisioner, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System(nil)
	}
	return &Service{store: store, provisioner: provisioner, clock: clk}
}

// List returns active employees, filtered by department when non-empty.
func (s *Service) List(ctx context.Context, department string) ([]Employee, error) {
	return s.store.ListActive(ctx, department)
}

// Get returns an employee by id.
func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	return s.store.Get(ctx, id)
}

// FindByRegistrationNumber resolves a registration number to an active
// employee. Deactivated employees are reported as not found.
func (s *Service) FindByRegistrationNumber(ctx context.Context, regNo string) (Employee, error) {
	e, err := s.store.FindByRegistrationNumber(ctx, regNo)
	if err != nil {
		return Employee{}, err
	}
	if !e.Active {
		return Employee{}, ErrNotFound
	}
	return e, nil
}

// Create registers a new employee and then provisions a login account on a
// best-effort basis.
func (s *Service) Create(ctx context.Context, e Employee) (Employee, error) {
	e.normalize()
	if err := e.validate(); err != nil {
		return Employee{}, err
	}
	if err := s.checkUnique(ctx, e, ""); err != nil {
		return Employee{}, err
	}
	if e.HireDate == nil {
		today := s.today()
		e.HireDate = &today
	}
	e.ID = ""
	e.Active = true
	e.HasUserAccount = false
	created, err := s.store.Insert(ctx, e)
	if err != nil {
		return Employee{}, err
	}
	s.provision(ctx, created)
	return created, nil
}

// Update replaces the editable fields of an existing employee. An employee
// without a login account gets one once an email is set.
func (s *Service) Update(ctx context.Context, id string, in Employee) (Employee, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return Employee{}, err
	}
	if in.RegistrationNumber != current.RegistrationNumber {
		if err := s.checkUnique(ctx, Employee{RegistrationNumber: in.RegistrationNumber}, id); err != nil {
			return Employee{}, err
		}
	}
	if in.Email != nil && (current.Email == nil || *in.Email != *current.Email) {
		if err := s.checkUnique(ctx, Employee{Email: in.Email}, id); err != nil {
			return Employee{}, err
		}
	}

	in.ID = current.ID
	in.Active = current.Active
	in.HasUserAccount = current.HasUserAccount
	in.QRCodeData = current.QRCodeData
	in.CreatedAt = current.CreatedAt
	if in.HireDate == nil {
		in.HireDate = current.HireDate
	}
	updated, err := s.store.Update(ctx, in)
	if err != nil {
		return Employee{}, err
	}
	s.provision(ctx, updated)
	return updated, nil
}

// provision runs after the primary write has succeeded. Failures are logged
// and never reach the caller.
func (s *Service) provision(ctx context.Context, e Employee) {
	if s.provisioner == nil || e.Email == nil || e.HasUserAccount {
		return
	}
	if err := s.provisioner.Provision(ctx, e); err != nil {
		log.Printf("account provisioning for employee %s failed: %v", e.ID, err)
		metrics.ProvisioningFailed()
	}
}

// Delete deactivates an employee. Presence events are left untouched.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Deactivate(ctx, id)
}

// GenerateQR builds the scan payload and caches it on the record.
func (s *Service) GenerateQR(ctx context.Context, id string) (string, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	data := e.QRPayload()
	if data != e.QRCodeData {
		if err := s.store.SetQRCodeData(ctx, id, data); err != nil {
			return "", err
		}
	}
	return data, nil
}

func (s *Service) checkUnique(ctx context.Context, e Employee, excludeID string) error {
	if e.RegistrationNumber != "" {
		taken, err := s.store.ExistsRegistrationNumber(ctx, e.RegistrationNumber, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateRegistrationNumber
		}
	}
	if e.Email != nil {
		taken, err := s.store.ExistsEmail(ctx, *e.Email, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}
	}
	return nil
}

// today is the calendar date in the clock's location, stored as UTC midnight.
func (s *Service) today() time.Time {
	now := s.clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
