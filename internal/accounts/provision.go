package accounts

import (
	"context"
	"fmt"
	"log"

	"presence/internal/employee"
	"presence/internal/metrics"
	"presence/internal/queue"
)

// MessageProvision asks the worker to provision a login for an employee.
const MessageProvision = "account.provision"

// DefaultPassword is used when an employee has no registration number.
const DefaultPassword = "changeme123"

// UserStore is the user persistence needed for provisioning.
type UserStore interface {
	UserExists(ctx context.Context, email string) (bool, error)
	InsertUser(ctx context.Context, a Account) (Account, error)
}

// EmployeeStore reads employees and records that they have a login.
type EmployeeStore interface {
	Get(ctx context.Context, id string) (employee.Employee, error)
	MarkUserAccount(ctx context.Context, id string) error
}

// Provisioner creates a login account for an employee that has an email.
type Provisioner struct {
	users     UserStore
	employees EmployeeStore
}

// NewProvisioner creates a provisioner.
func NewProvisioner(users UserStore, employees EmployeeStore) *Provisioner {
	return &Provisioner{users: users, employees: employees}
}

// Provision is a no-op when the employee has no email. When a user with
// that email already exists only the employee's has-user-account flag is
// set, so a run that failed after inserting the user is repaired on retry.
// The initial password is the registration number.
func (p *Provisioner) Provision(ctx context.Context, e employee.Employee) error {
	email := e.EmailAddress()
	if email == "" {
		return nil
	}
	exists, err := p.users.UserExists(ctx, email)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if exists {
		if e.HasUserAccount {
			return nil
		}
		return p.markEmployee(ctx, e.ID)
	}

	password := e.RegistrationNumber
	if password == "" {
		password = DefaultPassword
	}
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := p.users.InsertUser(ctx, Account{
		Email:        email,
		PasswordHash: hash,
		FullName:     e.FullName(),
		Active:       true,
	}); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if err := p.markEmployee(ctx, e.ID); err != nil {
		return err
	}
	log.Printf("provisioned login account for employee %s", e.ID)
	return nil
}

func (p *Provisioner) markEmployee(ctx context.Context, id string) error {
	if err := p.employees.MarkUserAccount(ctx, id); err != nil {
		return fmt.Errorf("mark employee: %w", err)
	}
	return nil
}

type provisionRequest struct {
	EmployeeID string `json:"employee_id"`
}

// QueuedProvisioner defers provisioning to the worker.
type QueuedProvisioner struct {
	q queue.Queue
}

// NewQueuedProvisioner creates a provisioner that publishes to q.
func NewQueuedProvisioner(q queue.Queue) *QueuedProvisioner {
	return &QueuedProvisioner{q: q}
}

// Provision publishes a provisioning request for e.
func (p *QueuedProvisioner) Provision(ctx context.Context, e employee.Employee) error {
	msg, err := queue.NewMessage(MessageProvision, provisionRequest{EmployeeID: e.ID})
	if err != nil {
		return err
	}
	return p.q.Publish(ctx, msg)
}

// Handle processes one provisioning message. The employee is re-read so the
// worker acts on the stored record rather than the publisher's copy.
func (p *Provisioner) Handle(ctx context.Context, msg queue.Message) error {
	if msg.Type != MessageProvision {
		return nil
	}
	var req provisionRequest
	if err := msg.Decode(&req); err != nil {
		return fmt.Errorf("decode %s: %w", msg.Type, err)
	}
	e, err := p.employees.Get(ctx, req.EmployeeID)
	if err != nil {
		return fmt.Errorf("load employee %s: %w", req.EmployeeID, err)
	}
	if e.HasUserAccount {
		return nil
	}
	return p.Provision(ctx, e)
}

// Run consumes q until ctx is done. Failed messages are logged and counted;
// they are not retried.
func (p *Provisioner) Run(ctx context.Context, q queue.Queue) error {
	messages, err := q.Consume(ctx)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	for msg := range messages {
		if err := p.Handle(ctx, msg); err != nil {
			log.Printf("provisioning message failed: %v", err)
			metrics.ProvisioningFailed()
		}
	}
	return nil
}
