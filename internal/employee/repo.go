package employee

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Unique constraints on employees; see store.Migrate.
const (
	uniqueRegistrationNumber = "employees_registration_number_key"
	uniqueEmail              = "employees_email_uniq"
)

const employeeColumns = `id, last_name, first_name, registration_number, email, phone, department, position,
	hire_date, address, city, postal_code, has_user_account, qr_code_data, active, created_at, updated_at`

// Repository persists employees in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.LastName, &e.FirstName, &e.RegistrationNumber, &e.Email, &e.Phone, &e.Department,
		&e.Position, &e.HireDate, &e.Address, &e.City, &e.PostalCode, &e.HasUserAccount, &e.QRCodeData, &e.Active,
		&e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *Repository) one(ctx context.Context, where string, arg any) (Employee, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE `+where, arg)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return e, err
}

func (r *Repository) many(ctx context.Context, query string, args ...any) ([]Employee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// Get returns an employee by id regardless of its active flag.
func (r *Repository) Get(ctx context.Context, id string) (Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Employee{}, ErrNotFound
	}
	return r.one(ctx, `id = $1`, id)
}

// FindByRegistrationNumber looks up any employee, active or not.
func (r *Repository) FindByRegistrationNumber(ctx context.Context, regNo string) (Employee, error) {
	return r.one(ctx, `registration_number = $1`, regNo)
}

// ListActive returns active employees, optionally narrowed to one department.
func (r *Repository) ListActive(ctx context.Context, department string) ([]Employee, error) {
	if department != "" {
		return r.many(ctx, `SELECT `+employeeColumns+` FROM employees
			WHERE active AND department = $1 ORDER BY last_name, first_name`, department)
	}
	return r.many(ctx, `SELECT `+employeeColumns+` FROM employees WHERE active ORDER BY last_name, first_name`)
}

// ExistsRegistrationNumber checks active and inactive rows alike. excludeID
// skips the employee being updated.
func (r *Repository) ExistsRegistrationNumber(ctx context.Context, regNo, excludeID string) (bool, error) {
	return r.exists(ctx, `registration_number = $1`, regNo, excludeID)
}

// ExistsEmail checks active and inactive rows alike.
func (r *Repository) ExistsEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return r.exists(ctx, `lower(email) = lower($1)`, email, excludeID)
}

func (r *Repository) exists(ctx context.Context, where string, value, excludeID string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE `+where+`
		AND ($2 = '' OR id::text <> $2))`, value, excludeID).Scan(&found)
	return found, err
}

// Insert writes a new employee.
func (r *Repository) Insert(ctx context.Context, e Employee) (Employee, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO employees (id, last_name, first_name, registration_number, email, phone, department, position,
			hire_date, address, city, postal_code, has_user_account, qr_code_data, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at, updated_at
	`, e.ID, e.LastName, e.FirstName, e.RegistrationNumber, e.Email, e.Phone, e.Department, e.Position,
		e.HireDate, e.Address, e.City, e.PostalCode, e.HasUserAccount, e.QRCodeData, e.Active)
	if err := row.Scan(&e.CreatedAt, &e.UpdatedAt); err != nil {
		return Employee{}, mapUniqueViolation(err)
	}
	return e, nil
}

// Update rewrites the editable fields of an employee.
func (r *Repository) Update(ctx context.Context, e Employee) (Employee, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE employees SET last_name = $2, first_name = $3, registration_number = $4, email = $5, phone = $6,
			department = $7, position = $8, hire_date = $9, address = $10, city = $11, postal_code = $12,
			has_user_account = $13, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, e.ID, e.LastName, e.FirstName, e.RegistrationNumber, e.Email, e.Phone, e.Department, e.Position,
		e.HireDate, e.Address, e.City, e.PostalCode, e.HasUserAccount)
	if err := row.Scan(&e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Employee{}, ErrNotFound
		}
		return Employee{}, mapUniqueViolation(err)
	}
	return e, nil
}

// mapUniqueViolation turns a lost race past the service's uniqueness
// pre-check into the same error the pre-check would have returned.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch pgErr.ConstraintName {
	case uniqueRegistrationNumber:
		return ErrDuplicateRegistrationNumber
	case uniqueEmail:
		return ErrDuplicateEmail
	}
	return err
}

// Deactivate clears the active flag.
func (r *Repository) Deactivate(ctx context.Context, id string) error {
	return r.setField(ctx, `active = FALSE`, id)
}

// SetQRCodeData caches the scan payload on the record.
func (r *Repository) SetQRCodeData(ctx context.Context, id, data string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE employees SET qr_code_data = $2, updated_at = NOW() WHERE id = $1`, id, data)
	return affected(res, err)
}

// MarkUserAccount flags that a login account exists for the employee.
func (r *Repository) MarkUserAccount(ctx context.Context, id string) error {
	return r.setField(ctx, `has_user_account = TRUE`, id)
}

func (r *Repository) setField(ctx context.Context, set, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE employees SET `+set+`, updated_at = $2 WHERE id = $1`, id, time.Now().UTC())
	return affected(res, err)
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
