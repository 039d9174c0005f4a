package employee

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound                    = errors.New("employee not found")
	ErrDuplicateRegistrationNumber = errors.New("registration number already exists")
	ErrDuplicateEmail              = errors.New("email already exists")
	ErrInvalid                     = errors.New("invalid employee")
)

// QRPrefix marks payloads produced by GenerateQR.
const QRPrefix = "EMP"

// Employee represents a registered employee. Employees are never removed,
// only deactivated, so presence history keeps resolving.
type Employee struct {
	ID                 string     `json:"id"`
	LastName           string     `json:"lastName"`
	FirstName          string     `json:"firstName"`
	RegistrationNumber string     `json:"registrationNumber"`
	Email              *string    `json:"email,omitempty"`
	Phone              string     `json:"phone"`
	Department         string     `json:"department"`
	Position           string     `json:"position"`
	HireDate           *time.Time `json:"hireDate,omitempty"`
	Address            string     `json:"address"`
	City               string     `json:"city"`
	PostalCode         string     `json:"postalCode"`
	HasUserAccount     bool       `json:"hasUserAccount"`
	QRCodeData         string     `json:"-"`
	Active             bool       `json:"isActive"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// FullName is "First Last", as used for login accounts.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// EmailAddress returns the email or "" when none is set.
func (e Employee) EmailAddress() string {
	if e.Email == nil {
		return ""
	}
	return *e.Email
}

// QRPayload formats the scan payload for e.
func (e Employee) QRPayload() string {
	return fmt.Sprintf("%s:%s:%s:%s", QRPrefix, e.RegistrationNumber, e.LastName, e.FirstName)
}

func (e *Employee) normalize() {
	e.LastName = strings.TrimSpace(e.LastName)
	e.FirstName = strings.TrimSpace(e.FirstName)
	e.RegistrationNumber = strings.TrimSpace(e.RegistrationNumber)
	if e.Email != nil {
		trimmed := strings.TrimSpace(*e.Email)
		if trimmed == "" {
			e.Email = nil
		} else {
			e.Email = &trimmed
		}
	}
}

func (e Employee) validate() error {
	switch {
	case e.LastName == "":
		return fmt.Errorf("%w: last name is required", ErrInvalid)
	case e.FirstName == "":
		return fmt.Errorf("%w: first name is required", ErrInvalid)
	case e.RegistrationNumber == "":
		return fmt.Errorf("%w: registration number is required", ErrInvalid)
	case strings.Contains(e.RegistrationNumber, ":"):
		return fmt.Errorf("%w: registration number must not contain ':'", ErrInvalid)
	}
	return nil
}
