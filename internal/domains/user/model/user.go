package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// Role is the single typed role enumeration for the whole system.
// Every capability check goes through Can; there is no other role probing.
type Role string

const (
	RoleReader    Role = "reader"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleReader, RoleLibrarian, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Permission names one gated operation
type Permission string

const (
	PermRequestBook     Permission = "request-book"
	PermBorrowSelf      Permission = "borrow-self"
	PermReturnOwn       Permission = "return-own"
	PermRenewOwn        Permission = "renew-own"
	PermApproveRequests Permission = "approve-requests"
	PermBorrowAssisted  Permission = "borrow-assisted"
	PermReturnAny       Permission = "return-any"
	PermViewActiveLoans Permission = "view-active-loans"
	PermManageCatalog   Permission = "manage-catalog"
	PermManageUsers     Permission = "manage-users"
	PermViewReports     Permission = "view-reports"
)

var rolePermissions = map[Role][]Permission{
	// Readers borrow for themselves; staff roles cannot submit requests
	RoleReader: {
		PermRequestBook,
		PermBorrowSelf,
		PermReturnOwn,
		PermRenewOwn,
	},
	RoleLibrarian: {
		PermApproveRequests,
		PermBorrowAssisted,
		PermReturnAny,
		PermViewActiveLoans,
	},
	// Admin additions; librarian permissions are inherited in Can
	RoleAdmin: {
		PermManageCatalog,
		PermManageUsers,
		PermViewReports,
	},
}

// Can is a total function from role to permitted operations.
// Admin inherits every librarian permission.
func (r Role) Can(p Permission) bool {
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	if r == RoleAdmin {
		for _, granted := range rolePermissions[RoleLibrarian] {
			if granted == p {
				return true
			}
		}
	}
	return false
}

// User represents an account in the library system
type User struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Email    string    `json:"email" db:"email"`
	Password string    `json:"-" db:"password_hash"` // Never expose in JSON
	FullName string    `json:"full_name" db:"full_name"`
	Phone    *string   `json:"phone" db:"phone"`
	Role     Role      `json:"role" db:"role"`
	IsActive bool      `json:"is_active" db:"is_active"`

	LastLoginAt *time.Time `json:"last_login_at" db:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// DTOs (Data Transfer Objects)
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Phone, validation.Length(0, 15)),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Phone, validation.Length(0, 15)),
	)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 72)),
	)
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

func (r ChangeRoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.Required, validation.In(
			string(RoleReader), string(RoleLibrarian), string(RoleAdmin),
		)),
	)
}
