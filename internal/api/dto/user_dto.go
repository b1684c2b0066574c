package dto

import (
	"time"

	"github.com/spec-kit/auth-service/internal/domain"
)

// UserResponse is the sanitized projection of a user record. Password and
// reset fields are stripped by construction.
type UserResponse struct {
	ID              string      `json:"id"`
	Email           string      `json:"email"`
	FirstName       string      `json:"firstName"`
	LastName        string      `json:"lastName"`
	Phone           string      `json:"phone,omitempty"`
	Role            domain.Role `json:"role"`
	IsActive        bool        `json:"isActive"`
	IsEmailVerified bool        `json:"isEmailVerified"`
	IsPhoneVerified bool        `json:"isPhoneVerified"`
	LastLogin       *time.Time  `json:"lastLogin,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// NewUserResponse projects a domain user into its public shape.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Phone:           user.Phone,
		Role:            user.Role,
		IsActive:        user.IsActive,
		IsEmailVerified: user.IsEmailVerified,
		IsPhoneVerified: user.IsPhoneVerified,
		LastLogin:       user.LastLogin,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

// UpdateUserRequest is the admin patch payload. Absent fields stay unchanged.
type UpdateUserRequest struct {
	FirstName       *string      `json:"firstName"`
	LastName        *string      `json:"lastName"`
	Phone           *string      `json:"phone"`
	Role            *domain.Role `json:"role"`
	IsEmailVerified *bool        `json:"isEmailVerified"`
	IsPhoneVerified *bool        `json:"isPhoneVerified"`
}

// Pagination describes a page of results.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// UserListData is the admin listing payload.
type UserListData struct {
	Users      []UserResponse `json:"users"`
	Pagination Pagination     `json:"pagination"`
}
