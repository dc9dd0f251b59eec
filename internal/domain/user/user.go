package user

import (
	"net/mail"
	"time"

	apperrors "github.com/campuspool/carpool/pkg/errors"
)

// Role is the role a user authenticates under. Profiles are created lazily
// on first login under each role.
type Role string

const (
	RoleDriver    Role = "driver"
	RolePassenger Role = "passenger"
)

// IsValid validates the role
func (r Role) IsValid() bool {
	return r == RoleDriver || r == RolePassenger
}

// User represents a registered account
type User struct {
	ID              int64     `json:"user_id"`
	FullName        string    `json:"full_name"`
	UniversityEmail string    `json:"university_email"`
	PasswordHash    string    `json:"-"`
	PhoneNumber     string    `json:"phone_number"`
	CreatedAt       time.Time `json:"created_at"`
}

// Driver is the driver-side profile of a user (1:1, optional)
type Driver struct {
	ID     int64 `json:"driver_id"`
	UserID int64 `json:"user_id"`
}

// Passenger is the passenger-side profile of a user (1:1, optional)
type Passenger struct {
	ID     int64 `json:"passenger_id"`
	UserID int64 `json:"user_id"`
}

const maxFullNameLen = 100

// ValidateRegistration checks the fields a new account is created with.
func ValidateRegistration(fullName, email, phone string) error {
	if fullName == "" || len(fullName) > maxFullNameLen {
		return apperrors.Validation("Full name is required and cannot exceed 100 characters", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperrors.Validation("Invalid email format", err)
	}
	if phone == "" {
		return apperrors.Validation("Phone number is required", nil)
	}
	return nil
}
