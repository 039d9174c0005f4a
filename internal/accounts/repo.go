package accounts

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("account not found")

// Account is a login identity: a user provisioned for an employee or an admin.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Active       bool
	CreatedAt    time.Time
}

// Repository persists users and admins. Both tables share one shape.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// UserExists reports whether a user account uses email.
func (r *Repository) UserExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "users", email)
}

// InsertUser creates a user account.
func (r *Repository) InsertUser(ctx context.Context, a Account) (Account, error) {
	return r.insert(ctx, "users", a)
}

// AdminByEmail returns the admin registered under email.
func (r *Repository) AdminByEmail(ctx context.Context, email string) (Account, error) {
	var a Account
	err := r.db.QueryRowContext(ctx, `
		SELECT id::text, email, password_hash, full_name, active, created_at
		FROM admins WHERE lower(email) = lower($1)
	`, email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.Active, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	return a, err
}

// CountAdmins returns how many admins exist.
func (r *Repository) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n)
	return n, err
}

// InsertAdmin creates an admin account.
func (r *Repository) InsertAdmin(ctx context.Context, a Account) (Account, error) {
	return r.insert(ctx, "admins", a)
}

func (r *Repository) exists(ctx context.Context, table, email string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE lower(email) = lower($1))`, email).Scan(&found)
	return found, err
}

func (r *Repository) insert(ctx context.Context, table string, a Account) (Account, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO `+table+` (id, email, password_hash, full_name, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, a.ID, a.Email, a.PasswordHash, a.FullName, a.Active)
	if err := row.Scan(&a.CreatedAt); err != nil {
		return Account{}, err
	}
	return a, nil
}
