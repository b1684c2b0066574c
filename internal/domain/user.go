package domain

import "time"

// Role enumerates account roles recognized by the service.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User is the domain model for an account. PasswordHash and the reset fields
// must never leave the service layer.
type User struct {
	ID              string
	Email           string
	PasswordHash    string
	FirstName       string
	LastName        string
	Phone           string
	Role            Role
	IsActive        bool
	IsEmailVerified bool
	IsPhoneVerified bool
	LastLogin       *time.Time
	ResetToken      *string
	ResetExpiry     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
