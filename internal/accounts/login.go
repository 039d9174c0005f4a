package accounts

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"presence/internal/auth"
)

// ErrInvalidCredentials hides whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AdminStore is the admin persistence needed for login.
type AdminStore interface {
	AdminByEmail(ctx context.Context, email string) (Account, error)
	CountAdmins(ctx context.Context) (int64, error)
	InsertAdmin(ctx context.Context, a Account) (Account, error)
}

// TokenConfig carries the JWT settings used for issued tokens.
type TokenConfig struct {
	Issuer     string
	SigningKey string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Session is the result of a successful login.
type Session struct {
	Tokens   auth.TokenPair
	Email    string
	FullName string
}

// Authenticator logs admins in.
type Authenticator struct {
	admins AdminStore
	tokens TokenConfig
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(admins AdminStore, tokens TokenConfig) *Authenticator {
	return &Authenticator{admins: admins, tokens: tokens}
}

// Login checks the credentials of an active admin and issues tokens.
func (a *Authenticator) Login(ctx context.Context, email, password string) (Session, error) {
	admin, err := a.admins.AdminByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if !admin.Active || !CheckPassword(admin.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}
	tokens, err := auth.Issue(admin.ID, auth.RoleAdmin, a.tokens.Issuer, a.tokens.SigningKey, a.tokens.AccessTTL, a.tokens.RefreshTTL)
	if err != nil {
		return Session{}, err
	}
	return Session{Tokens: tokens, Email: admin.Email, FullName: admin.FullName}, nil
}

// EnsureDefaultAdmin seeds one admin when none exists.
func (a *Authenticator) EnsureDefaultAdmin(ctx context.Context, email, password string) error {
	n, err := a.admins.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := a.admins.InsertAdmin(ctx, Account{
		Email:        email,
		PasswordHash: hash,
		FullName:     "Super Admin",
		Active:       true,
	}); err != nil {
		return err
	}
	log.Printf("default admin created: %s", email)
	return nil
}
